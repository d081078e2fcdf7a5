package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/tourism-cli/internal/model"
)

func ratio(v float64) *float64 { return &v }

func sampleRankings() []ranking {
	return []ranking{
		{Name: rankingVolume, Destinations: []model.DestinationRank{
			{City: "London", Country: "United Kingdom", FlightCount: 3, TotalPassengers: 513},
			{City: "Paris", Country: "France", FlightCount: 1, TotalPassengers: 180},
		}},
		{Name: rankingPerCapita, Destinations: []model.DestinationRank{
			{City: "Reykjavik", Country: "Iceland", FlightCount: 2, TotalPassengers: 318,
				Population: model.Int64Ptr(135688), PassengersPerCapita: ratio(0.002344)},
		}},
	}
}

func TestWriteRankings_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRankings(&buf, sampleRankings(), "table"))

	out := buf.String()
	assert.Contains(t, out, "Top destinations by flight volume")
	assert.Contains(t, out, "Top destinations by passengers per capita")
	assert.Contains(t, out, "PASSENGERS")
	assert.Contains(t, out, "PER CAPITA")
	assert.Contains(t, out, "London")
	assert.Contains(t, out, "513")
	assert.Contains(t, out, "135688")
	assert.Contains(t, out, "0.002344")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("London")), bytes.Index(buf.Bytes(), []byte("Paris")))
}

func TestWriteRankings_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRankings(&buf, []ranking{{Name: rankingPerCapita}}, "table"))
	assert.Contains(t, buf.String(), "(no destinations)")
	assert.NotContains(t, buf.String(), "CITY")
}

func TestWriteRankings_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRankings(&buf, sampleRankings(), "json"))

	var got []ranking
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, rankingVolume, got[0].Name)
	assert.Equal(t, int64(513), got[0].Destinations[0].TotalPassengers)
	assert.Nil(t, got[0].Destinations[0].PassengersPerCapita)
	require.NotNil(t, got[1].Destinations[0].PassengersPerCapita)
	assert.InDelta(t, 0.002344, *got[1].Destinations[0].PassengersPerCapita, 1e-9)
}

func TestWriteRankings_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRankings(&buf, sampleRankings(), "yaml"))

	out := buf.String()
	assert.Contains(t, out, "ranking: per-capita")
	assert.Contains(t, out, "total_estimated_passengers: 318")

	var got []ranking
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Reykjavik", got[1].Destinations[0].City)
}

func TestWriteRankings_UnsupportedFormat(t *testing.T) {
	err := writeRankings(&bytes.Buffer{}, sampleRankings(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestFormatRunsList(t *testing.T) {
	started := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:              "abc12345-6789-0000-0000-000000000000",
			Status:          model.RunStatusComplete,
			StartedAt:       started,
			FlightsObserved: 812,
			GeoMatched:      790,
			RowsAppended:    803,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Status:    model.RunStatusNoData,
			StartedAt: started.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "abc12345")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "no_data")
	assert.Contains(t, out, "2025-06-15 10:30:00")
	assert.Contains(t, out, "803")
}

func TestFormatRunsList_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatRunsList(&buf, nil)
	assert.Equal(t, "No runs found.\n", buf.String())
}

func TestOptFormatting(t *testing.T) {
	assert.Equal(t, "-", optInt(nil))
	assert.Equal(t, "42", optInt(model.Int64Ptr(42)))
	assert.Equal(t, "-", optRatio(nil))
	assert.Equal(t, "0.000019", optRatio(ratio(0.000019)))
}
