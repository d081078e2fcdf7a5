package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/tourism-cli/internal/geo"
	"github.com/sells-group/tourism-cli/internal/model"
	"github.com/sells-group/tourism-cli/internal/store"
)

// --- Flight source mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Flights(ctx context.Context) ([]model.FlightRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FlightRecord), args.Error(1)
}

// --- Reference loader mock ---

type mockRefs struct {
	mock.Mock
}

func (m *mockRefs) LoadAirports(ctx context.Context, source string) (geo.AirportTable, error) {
	args := m.Called(ctx, source)
	return args.Get(0).(geo.AirportTable), args.Error(1)
}

func (m *mockRefs) LoadPopulations(ctx context.Context, source string) (geo.PopulationTable, error) {
	args := m.Called(ctx, source)
	return args.Get(0).(geo.PopulationTable), args.Error(1)
}

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) AppendRun(ctx context.Context, run *model.Run, rows []model.JoinedRecord) (int64, error) {
	args := m.Called(ctx, run, rows)
	run.RowsAppended = int64(len(rows))
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) TopByFlightVolume(ctx context.Context, limit int) ([]model.DestinationRank, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DestinationRank), args.Error(1)
}

func (m *mockStore) TopByPassengersPerCapita(ctx context.Context, limit int) ([]model.DestinationRank, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DestinationRank), args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
