package geo

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tourism-cli/internal/fetcher"
)

// Loader reads the reference datasets from HTTP URLs or local files.
type Loader struct {
	fetcher fetcher.Fetcher
}

// NewLoader creates a Loader. f may be nil when every source is a local path.
func NewLoader(f fetcher.Fetcher) *Loader {
	return &Loader{fetcher: f}
}

// LoadAirports reads an OpenFlights airports.dat file and builds the airport table.
func (l *Loader) LoadAirports(ctx context.Context, source string) (AirportTable, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("source", source))
	log.Info("loading airport reference")

	body, err := fetcher.Open(ctx, l.fetcher, source)
	if err != nil {
		return AirportTable{}, eris.Wrap(err, "geo: open airports")
	}
	defer body.Close() //nolint:errcheck

	rows, err := fetcher.ReadAllCSV(ctx, body, fetcher.CSVOptions{LazyQuotes: true})
	if err != nil {
		return AirportTable{}, eris.Wrap(err, "geo: parse airports")
	}

	table := BuildAirportTable(rows)
	log.Info("airport reference loaded",
		zap.Int("rows", len(rows)),
		zap.Int("airports", table.Len()),
		zap.Int("skipped", table.Skipped()),
	)
	return table, nil
}

// LoadPopulations reads a worldcities.csv file and builds the population table.
func (l *Loader) LoadPopulations(ctx context.Context, source string) (PopulationTable, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("source", source))
	log.Info("loading population reference")

	body, err := fetcher.Open(ctx, l.fetcher, source)
	if err != nil {
		return PopulationTable{}, eris.Wrap(err, "geo: open populations")
	}
	defer body.Close() //nolint:errcheck

	rows, err := DecodePopulationRows(body)
	if err != nil {
		return PopulationTable{}, err
	}

	table := BuildPopulationTable(rows)
	log.Info("population reference loaded",
		zap.Int("rows", table.Len()),
		zap.Int("keys", table.Keys()),
	)
	return table, nil
}
