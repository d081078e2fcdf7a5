package estimate

import "strings"

// Load factors and tourist probabilities for the two airline classes.
const (
	LeisureLoadFactor         = 0.95
	LeisureTouristProbability = 90
	DefaultLoadFactor         = 0.82
	DefaultTouristProbability = 40
)

// leisureCarriers holds the ICAO codes of leisure and low-cost airlines.
var leisureCarriers = map[string]struct{}{
	"RYR": {}, // Ryanair
	"WZZ": {}, // Wizz Air
	"EZY": {}, // easyJet
	"TOM": {}, // TUI Airways
	"CFG": {}, // Condor
	"NAX": {}, // Norwegian
	"NKS": {}, // Spirit
	"VLG": {}, // Vueling
	"ENT": {}, // Enter Air
	"LS":  {},
}

// IsLeisureCarrier reports whether the airline code belongs to a leisure or low-cost carrier.
func IsLeisureCarrier(airlineCode string) bool {
	_, ok := leisureCarriers[strings.ToUpper(airlineCode)]
	return ok
}

// Classify returns the assumed load factor and tourist probability (percent)
// for an airline. Unknown and empty codes fall into the default class.
func Classify(airlineCode string) (float64, int) {
	if IsLeisureCarrier(airlineCode) {
		return LeisureLoadFactor, LeisureTouristProbability
	}
	return DefaultLoadFactor, DefaultTouristProbability
}
