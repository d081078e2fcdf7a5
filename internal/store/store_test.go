package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tourism-cli/internal/model"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "tourism.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func joined(city, country string, pax int, pop *int64) model.JoinedRecord {
	return model.JoinedRecord{
		EnrichedFlightRecord: model.EnrichedFlightRecord{
			FlightRecord: model.FlightRecord{
				FlightNumber: "TST1",
				AirlineCode:  "TST",
				AircraftCode: "A320",
				DestCode:     "XXX",
				SnapshotTime: t0,
			},
			EstimatedPassengers: pax,
			TouristProbability:  40,
		},
		City:           city,
		Country:        country,
		AirportName:    city + " Intl",
		CityPopulation: pop,
	}
}

func newRun(id string, started time.Time) *model.Run {
	return &model.Run{ID: id, Status: model.RunStatusComplete, StartedAt: started}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("TopByFlightVolume", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rows := []model.JoinedRecord{
			joined("Paris", "France", 171, nil),
			joined("Paris", "France", 160, nil),
			joined("Rome", "Italy", 150, nil),
		}
		n, err := s.AppendRun(ctx, newRun("run-1", t0), rows)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		ranks, err := s.TopByFlightVolume(ctx, 10)
		require.NoError(t, err)
		require.Len(t, ranks, 2)
		assert.Equal(t, model.DestinationRank{City: "Paris", Country: "France", FlightCount: 2, TotalPassengers: 331}, ranks[0])
		assert.Equal(t, model.DestinationRank{City: "Rome", Country: "Italy", FlightCount: 1, TotalPassengers: 150}, ranks[1])
	})

	t.Run("VolumeTieBreak", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rows := []model.JoinedRecord{
			joined("Vienna", "Austria", 100, nil),
			joined("Athens", "Greece", 100, nil),
			joined("Paris", "United States", 100, nil),
			joined("Paris", "France", 100, nil),
		}
		_, err := s.AppendRun(ctx, newRun("run-1", t0), rows)
		require.NoError(t, err)

		ranks, err := s.TopByFlightVolume(ctx, 3)
		require.NoError(t, err)
		require.Len(t, ranks, 3)
		assert.Equal(t, "Athens", ranks[0].City)
		assert.Equal(t, "France", ranks[1].Country)
		assert.Equal(t, "United States", ranks[2].Country)
	})

	t.Run("AppendOnlyAcrossRuns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.AppendRun(ctx, newRun("run-1", t0), []model.JoinedRecord{joined("Rome", "Italy", 150, nil)})
		require.NoError(t, err)
		_, err = s.AppendRun(ctx, newRun("run-2", t0.Add(time.Minute)), []model.JoinedRecord{joined("Rome", "Italy", 150, nil)})
		require.NoError(t, err)

		ranks, err := s.TopByFlightVolume(ctx, 0)
		require.NoError(t, err)
		require.Len(t, ranks, 1)
		assert.Equal(t, int64(2), ranks[0].FlightCount)
		assert.Equal(t, int64(300), ranks[0].TotalPassengers)
	})

	t.Run("TopByPassengersPerCapita", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		rows := []model.JoinedRecord{
			joined("London", "United Kingdom", 171, model.Int64Ptr(9000000)),
			joined("Reykjavik", "Iceland", 147, model.Int64Ptr(135688)),
			joined("Reykjavik", "Iceland", 171, model.Int64Ptr(135688)),
			joined("Nowhere", "Atlantis", 500, nil),
			joined("Ghost", "Town", 500, model.Int64Ptr(0)),
		}
		_, err := s.AppendRun(ctx, newRun("run-1", t0), rows)
		require.NoError(t, err)

		ranks, err := s.TopByPassengersPerCapita(ctx, 10)
		require.NoError(t, err)
		require.Len(t, ranks, 2)

		assert.Equal(t, "Reykjavik", ranks[0].City)
		assert.Equal(t, int64(318), ranks[0].TotalPassengers)
		require.NotNil(t, ranks[0].Population)
		assert.Equal(t, int64(135688), *ranks[0].Population)
		require.NotNil(t, ranks[0].PassengersPerCapita)
		assert.InDelta(t, 0.002344, *ranks[0].PassengersPerCapita, 1e-9)

		assert.Equal(t, "London", ranks[1].City)
		assert.InDelta(t, 0.000019, *ranks[1].PassengersPerCapita, 1e-9)
	})

	t.Run("EmptyTable", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		vol, err := s.TopByFlightVolume(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, vol)

		pc, err := s.TopByPassengersPerCapita(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pc)
	})

	t.Run("RunBookkeeping", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run := newRun("run-1", t0)
		run.FlightsObserved = 5
		run.GeoMatched = 2
		run.AirportRefRows = 7000
		run.PopulationRefRows = 40000
		_, err := s.AppendRun(ctx, run, []model.JoinedRecord{joined("Rome", "Italy", 150, nil), joined("Rome", "Italy", 150, nil)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), run.RowsAppended)
		require.NotNil(t, run.FinishedAt)

		empty := &model.Run{ID: "run-2", Status: model.RunStatusNoData, StartedAt: t0.Add(time.Hour)}
		n, err := s.AppendRun(ctx, empty, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := s.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		assert.Equal(t, 5, got.FlightsObserved)
		assert.Equal(t, 2, got.GeoMatched)
		assert.Equal(t, int64(2), got.RowsAppended)
		assert.Equal(t, 7000, got.AirportRefRows)
		assert.Equal(t, 40000, got.PopulationRefRows)
		assert.True(t, t0.Equal(got.StartedAt))
		require.NotNil(t, got.FinishedAt)

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "run-2", all[0].ID)

		noData, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusNoData})
		require.NoError(t, err)
		require.Len(t, noData, 1)
		assert.Equal(t, "run-2", noData[0].ID)

		limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		_, err = s.GetRun(ctx, "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run not found")
	})

	t.Run("DuplicateRunIDRollsBack", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.AppendRun(ctx, newRun("run-1", t0), []model.JoinedRecord{joined("Rome", "Italy", 150, nil)})
		require.NoError(t, err)

		_, err = s.AppendRun(ctx, newRun("run-1", t0), []model.JoinedRecord{joined("Paris", "France", 171, nil)})
		require.Error(t, err)

		ranks, err := s.TopByFlightVolume(ctx, 10)
		require.NoError(t, err)
		require.Len(t, ranks, 1)
		assert.Equal(t, "Rome", ranks[0].City)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, func(t *testing.T) Store { return newTestSQLite(t) })
}

func TestSnapshotValues(t *testing.T) {
	r := joined("London", "United Kingdom", 171, model.Int64Ptr(9000000))
	r.OriginCode = "DUB"
	r.Latitude, r.Longitude = 51.885, 0.235
	r.SnapshotTime = time.Date(2024, 5, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	v := snapshotValues("run-9", r)
	require.Len(t, v, len(snapshotColumns))
	assert.Equal(t, "run-9", v[0])
	assert.Equal(t, t0, v[1])
	assert.Equal(t, "DUB", v[5])
	assert.Equal(t, "London", v[6])
	assert.Equal(t, 171, v[12])
	assert.Equal(t, int64(9000000), v[14])

	assert.Nil(t, snapshotValues("run-9", joined("Rome", "Italy", 1, nil))[14])
}

func TestRankLimit(t *testing.T) {
	assert.Equal(t, DefaultRankLimit, rankLimit(0))
	assert.Equal(t, DefaultRankLimit, rankLimit(-3))
	assert.Equal(t, 5, rankLimit(5))
}
