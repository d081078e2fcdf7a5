// Package geo builds the airport and city-population reference tables used to
// resolve flight destinations to cities.
package geo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeKey lower-cases and trims a city or country name so that names
// from different datasets compare equal.
func NormalizeKey(s string) string {
	// Casers are stateful and must not be shared between goroutines.
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// PopulationKey is the normalized (city, country) join key.
type PopulationKey struct {
	City    string
	Country string
}

// NewPopulationKey normalizes city and country into a join key.
func NewPopulationKey(city, country string) PopulationKey {
	return PopulationKey{City: NormalizeKey(city), Country: NormalizeKey(country)}
}
