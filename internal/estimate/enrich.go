package estimate

import (
	"math"

	"github.com/sells-group/tourism-cli/internal/model"
)

// PassengersFor returns floor(seats * loadFactor), never negative.
func PassengersFor(seats int, loadFactor float64) int {
	pax := int(math.Floor(float64(seats) * loadFactor))
	if pax < 0 {
		return 0
	}
	return pax
}

// Enrich computes the passenger and tourism estimates for a single flight.
func Enrich(f model.FlightRecord) model.EnrichedFlightRecord {
	seats := EstimateCapacity(f.AircraftCode)
	loadFactor, touristProb := Classify(f.AirlineCode)

	return model.EnrichedFlightRecord{
		FlightRecord:        f,
		EstimatedPassengers: PassengersFor(seats, loadFactor),
		TouristProbability:  touristProb,
	}
}
