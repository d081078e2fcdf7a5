// Package store persists flight snapshots and pipeline runs and answers the
// destination ranking queries.
package store

import (
	"context"
	"time"

	"github.com/sells-group/tourism-cli/internal/model"
)

// DefaultRankLimit is the number of destinations returned when no limit is given.
const DefaultRankLimit = 10

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store defines the persistence interface for the pipeline.
type Store interface {
	// AppendRun writes the run record and its joined rows in one transaction.
	// rows may be empty. run.RowsAppended is set to the number of rows written.
	AppendRun(ctx context.Context, run *model.Run, rows []model.JoinedRecord) (int64, error)
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// TopByFlightVolume ranks destinations by number of snapshot rows.
	TopByFlightVolume(ctx context.Context, limit int) ([]model.DestinationRank, error)
	// TopByPassengersPerCapita ranks destinations with a known, positive
	// population by estimated passengers per resident.
	TopByPassengersPerCapita(ctx context.Context, limit int) ([]model.DestinationRank, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// snapshotColumns is the column order of flight_snapshots inserts.
var snapshotColumns = []string{
	"run_id", "snapshot_utc", "flight_number", "airline_icao", "aircraft_code",
	"origin_iata", "city", "country", "airport_name", "dest_iata", "lat", "lon",
	"est_passengers", "tourist_probability", "city_population",
}

// snapshotValues flattens r in snapshotColumns order.
func snapshotValues(runID string, r model.JoinedRecord) []any {
	var pop any
	if r.CityPopulation != nil {
		pop = *r.CityPopulation
	}
	return []any{
		runID, r.SnapshotTime.UTC(), r.FlightNumber, r.AirlineCode, r.AircraftCode,
		r.OriginCode, r.City, r.Country, r.AirportName, r.DestCode, r.Latitude, r.Longitude,
		r.EstimatedPassengers, r.TouristProbability, pop,
	}
}

func rankLimit(limit int) int {
	if limit <= 0 {
		return DefaultRankLimit
	}
	return limit
}

func runLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func finish(run *model.Run, n int64) {
	run.RowsAppended = n
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
}
