// Package pipeline runs one flight snapshot through enrichment, both
// reference joins and persistence.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/tourism-cli/internal/geo"
	"github.com/sells-group/tourism-cli/internal/model"
	"github.com/sells-group/tourism-cli/internal/store"
	"github.com/sells-group/tourism-cli/internal/telemetry"
)

// ReferenceLoader builds the airport and population tables. *geo.Loader
// satisfies it.
type ReferenceLoader interface {
	LoadAirports(ctx context.Context, source string) (geo.AirportTable, error)
	LoadPopulations(ctx context.Context, source string) (geo.PopulationTable, error)
}

// Sources names where the reference datasets are read from.
type Sources struct {
	AirportsURL string
	CitiesURL   string
}

// Result summarizes one pipeline run.
type Result struct {
	Run *model.Run
	// Rows are the records appended to the snapshot table.
	Rows []model.JoinedRecord
	// Unmatched counts flights dropped because their destination had no
	// airport entry.
	Unmatched int
}

// Pipeline orchestrates acquisition, enrichment, joins and persistence.
type Pipeline struct {
	flights telemetry.Source
	refs    ReferenceLoader
	store   store.Store
	sources Sources

	now   func() time.Time
	newID func() string
}

// New creates a Pipeline with all dependencies.
func New(flights telemetry.Source, refs ReferenceLoader, st store.Store, sources Sources) *Pipeline {
	return &Pipeline{
		flights: flights,
		refs:    refs,
		store:   st,
		sources: sources,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Run executes one snapshot. Unavailable reference data degrades to empty
// tables and an unavailable or empty feed ends the run with status no_data.
// Only cancellation and persistence failures are returned as errors.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	run := &model.Run{
		ID:        p.newID(),
		Status:    model.RunStatusRunning,
		StartedAt: p.now().UTC(),
	}
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("run_id", run.ID))
	log.Info("pipeline: starting run")

	var (
		airports    geo.AirportTable
		populations geo.PopulationTable
		flights     []model.FlightRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := p.refs.LoadAirports(gctx, p.sources.AirportsURL)
		if err != nil {
			log.Warn("pipeline: airport reference unavailable, continuing with empty table", zap.Error(err))
			t = geo.AirportTable{}
		}
		airports = t
		return nil
	})
	g.Go(func() error {
		t, err := p.refs.LoadPopulations(gctx, p.sources.CitiesURL)
		if err != nil {
			log.Warn("pipeline: population reference unavailable, continuing with empty table", zap.Error(err))
			t = geo.PopulationTable{}
		}
		populations = t
		return nil
	})
	g.Go(func() error {
		f, err := p.flights.Flights(gctx)
		if err != nil {
			log.Warn("pipeline: flight telemetry unavailable", zap.Error(err))
		}
		flights = f
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run cancelled")
	}

	run.AirportRefRows = airports.Len()
	run.PopulationRefRows = populations.Len()
	run.FlightsObserved = len(flights)

	if len(flights) == 0 {
		log.Warn("pipeline: no flight data this run")
		run.Status = model.RunStatusNoData
		if _, err := p.store.AppendRun(ctx, run, nil); err != nil {
			return nil, eris.Wrap(err, "pipeline: record empty run")
		}
		return &Result{Run: run}, nil
	}

	if airports.Len() == 0 {
		log.Warn("pipeline: airport table is empty, no flight can be resolved to a city")
	}

	joined := GeoJoin(EnrichAll(flights), airports)
	run.GeoMatched = len(joined)
	unmatched := len(flights) - len(joined)
	if len(joined) == 0 {
		log.Warn("pipeline: no flight destination matched the airport table",
			zap.Int("flights", len(flights)),
		)
	}

	rows := PopulationJoin(joined, populations)

	run.Status = model.RunStatusComplete
	n, err := p.store.AppendRun(ctx, run, rows)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: append snapshot")
	}

	log.Info("pipeline: run complete",
		zap.Int("flights", len(flights)),
		zap.Int("geo_matched", len(joined)),
		zap.Int("unmatched", unmatched),
		zap.Int64("rows_appended", n),
	)
	return &Result{Run: run, Rows: rows, Unmatched: unmatched}, nil
}
