package pipeline

import (
	"github.com/sells-group/tourism-cli/internal/estimate"
	"github.com/sells-group/tourism-cli/internal/geo"
	"github.com/sells-group/tourism-cli/internal/model"
)

// EnrichAll applies estimate.Enrich to every flight, preserving order.
func EnrichAll(flights []model.FlightRecord) []model.EnrichedFlightRecord {
	out := make([]model.EnrichedFlightRecord, len(flights))
	for i, f := range flights {
		out[i] = estimate.Enrich(f)
	}
	return out
}

// GeoJoin resolves each flight's destination against the airport table.
// Flights whose destination is not in the table are dropped, so the output is
// never longer than the input. Order is preserved.
func GeoJoin(flights []model.EnrichedFlightRecord, airports geo.AirportTable) []model.JoinedRecord {
	out := make([]model.JoinedRecord, 0, len(flights))
	for _, f := range flights {
		a, ok := airports.Lookup(f.DestCode)
		if !ok {
			continue
		}
		out = append(out, model.JoinedRecord{
			EnrichedFlightRecord: f,
			City:                 a.City,
			Country:              a.Country,
			AirportName:          a.AirportName,
			Latitude:             a.Latitude,
			Longitude:            a.Longitude,
		})
	}
	return out
}

// PopulationJoin attaches city population to each row on the normalized
// (city, country) key. Rows without a match are kept with a nil population.
// A key with several population entries yields one output row per entry.
func PopulationJoin(rows []model.JoinedRecord, populations geo.PopulationTable) []model.JoinedRecord {
	out := make([]model.JoinedRecord, 0, len(rows))
	for _, r := range rows {
		r.CityPopulation = nil
		matches := populations.Lookup(r.City, r.Country)
		if len(matches) == 0 {
			out = append(out, r)
			continue
		}
		for _, m := range matches {
			joined := r
			if m.Population != nil {
				joined.CityPopulation = model.Int64Ptr(*m.Population)
			}
			out = append(out, joined)
		}
	}
	return out
}
