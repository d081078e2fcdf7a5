package model

import "time"

// RunStatus represents the outcome of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusNoData   RunStatus = "no_data"
)

// Run records one execution of the enrichment pipeline.
type Run struct {
	ID                string     `json:"id" yaml:"id"`
	Status            RunStatus  `json:"status" yaml:"status"`
	StartedAt         time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	FlightsObserved   int        `json:"flights_observed" yaml:"flights_observed"`
	GeoMatched        int        `json:"geo_matched" yaml:"geo_matched"`
	RowsAppended      int64      `json:"rows_appended" yaml:"rows_appended"`
	AirportRefRows    int        `json:"airport_ref_rows" yaml:"airport_ref_rows"`
	PopulationRefRows int        `json:"population_ref_rows" yaml:"population_ref_rows"`
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}
