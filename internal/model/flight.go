package model

import "time"

// FlightRecord is one observed aircraft with a known destination.
type FlightRecord struct {
	FlightNumber string    `json:"flight_number"`
	AirlineCode  string    `json:"airline_icao"`
	AircraftCode string    `json:"aircraft_code"`
	OriginCode   string    `json:"origin_iata,omitempty"`
	DestCode     string    `json:"dest_iata"`
	Altitude     int       `json:"altitude"`
	GroundSpeed  int       `json:"ground_speed"`
	SnapshotTime time.Time `json:"snapshot_utc"`
}

// EnrichedFlightRecord adds passenger and tourism estimates to a flight.
type EnrichedFlightRecord struct {
	FlightRecord
	EstimatedPassengers int `json:"est_passengers"`
	TouristProbability  int `json:"tourist_probability"` // percent, 0-100
}

// AirportGeoRecord is one row of the airport reference table, keyed by IATA code.
type AirportGeoRecord struct {
	IATA        string  `json:"iata"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	AirportName string  `json:"airport_name"`
}

// CityPopulationRecord is one row of the population reference table.
// Population is nil when the source value could not be parsed.
type CityPopulationRecord struct {
	CityKey    string `json:"city_key"`
	CountryKey string `json:"country_key"`
	Population *int64 `json:"population,omitempty"`
}

// JoinedRecord is an enriched flight resolved to its destination city.
// CityPopulation is nil when no population data matched.
type JoinedRecord struct {
	EnrichedFlightRecord
	City           string  `json:"city"`
	Country        string  `json:"country"`
	AirportName    string  `json:"airport_name"`
	Latitude       float64 `json:"lat"`
	Longitude      float64 `json:"lon"`
	CityPopulation *int64  `json:"city_population,omitempty"`
}

// DestinationRank is one row of a ranked destination aggregate.
type DestinationRank struct {
	City                string   `json:"city" yaml:"city"`
	Country             string   `json:"country" yaml:"country"`
	FlightCount         int64    `json:"flight_count" yaml:"flight_count"`
	TotalPassengers     int64    `json:"total_estimated_passengers" yaml:"total_estimated_passengers"`
	Population          *int64   `json:"population,omitempty" yaml:"population,omitempty"`
	PassengersPerCapita *float64 `json:"passengers_per_capita,omitempty" yaml:"passengers_per_capita,omitempty"`
}
