// Package estimate provides passenger and tourism estimation heuristics for observed flights.
package estimate

import "strings"

// DefaultCapacity is the seat count used when no capacity rule matches.
const DefaultCapacity = 150

// CapacityRule maps a set of aircraft type substrings to a seat count.
type CapacityRule struct {
	Patterns []string
	Seats    int
}

// Matches reports whether the upper-cased aircraft code contains any pattern.
func (r CapacityRule) Matches(code string) bool {
	for _, p := range r.Patterns {
		if strings.Contains(code, p) {
			return true
		}
	}
	return false
}

// CapacityRules is evaluated in order and the first match wins. Narrower
// patterns must precede broader ones they contain ("A321" before "A32").
var CapacityRules = []CapacityRule{
	{Patterns: []string{"A38"}, Seats: 525},
	{Patterns: []string{"B74"}, Seats: 416},
	{Patterns: []string{"B77", "A35"}, Seats: 350},
	{Patterns: []string{"B78", "A33"}, Seats: 290},
	{Patterns: []string{"A321", "B739"}, Seats: 220},
	{Patterns: []string{"A32", "B73"}, Seats: 180},
	{Patterns: []string{"E19", "CRJ"}, Seats: 100},
}

// EstimateCapacity returns the estimated seat count for an aircraft type code.
func EstimateCapacity(aircraftCode string) int {
	if aircraftCode == "" {
		return DefaultCapacity
	}
	code := strings.ToUpper(aircraftCode)
	for _, rule := range CapacityRules {
		if rule.Matches(code) {
			return rule.Seats
		}
	}
	return DefaultCapacity
}
