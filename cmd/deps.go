package main

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tourism-cli/internal/fetcher"
	"github.com/sells-group/tourism-cli/internal/geo"
	"github.com/sells-group/tourism-cli/internal/pipeline"
	"github.com/sells-group/tourism-cli/internal/resilience"
	"github.com/sells-group/tourism-cli/internal/store"
	"github.com/sells-group/tourism-cli/internal/telemetry"
	"github.com/sells-group/tourism-cli/pkg/fr24"
)

func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Sources.UserAgent,
		Timeout:      cfg.Sources.Timeout(),
		Attempts:     cfg.Sources.MaxRetries + 1,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// newFlightSource prefers a saved feed file over the live feed.
func newFlightSource(f fetcher.Fetcher) telemetry.Source {
	if cfg.Sources.FeedFile != "" {
		zap.L().Info("reading flights from saved feed", zap.String("source", cfg.Sources.FeedFile))
		return telemetry.NewFileSource(f, cfg.Sources.FeedFile)
	}
	client := fr24.NewClient(
		fr24.WithBaseURL(cfg.Sources.FeedURL),
		fr24.WithHTTPClient(&http.Client{Timeout: cfg.Sources.Timeout()}),
	)
	return telemetry.NewLiveSource(client,
		fr24.FeedOptions{Bounds: cfg.Feed.Bounds, Limit: cfg.Feed.Limit},
		resilience.FeedPolicy(cfg.Sources.MaxRetries),
	)
}

func initPipeline(st store.Store) *pipeline.Pipeline {
	f := newFetcher()
	return pipeline.New(newFlightSource(f), geo.NewLoader(f), st, pipeline.Sources{
		AirportsURL: cfg.Sources.AirportsURL,
		CitiesURL:   cfg.Sources.CitiesURL,
	})
}
