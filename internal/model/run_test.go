package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatusValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status RunStatus
		want   string
	}{
		{RunStatusRunning, "running"},
		{RunStatusComplete, "complete"},
		{RunStatusNoData, "no_data"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(tt.status))
	}
}

func TestJoinedRecord_JSONFlattensEmbedded(t *testing.T) {
	t.Parallel()

	rec := JoinedRecord{
		EnrichedFlightRecord: EnrichedFlightRecord{
			FlightRecord:        FlightRecord{FlightNumber: "RYR12", DestCode: "STN"},
			EstimatedPassengers: 171,
			TouristProbability:  90,
		},
		City:           "London",
		CityPopulation: Int64Ptr(9000000),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "RYR12", m["flight_number"])
	assert.Equal(t, "STN", m["dest_iata"])
	assert.EqualValues(t, 171, m["est_passengers"])
	assert.EqualValues(t, 9000000, m["city_population"])
}

func TestJoinedRecord_AbsentPopulationOmitted(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(JoinedRecord{City: "Nowhere"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "city_population")
}
