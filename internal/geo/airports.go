package geo

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/tourism-cli/internal/model"
)

// NoCode is the marker OpenFlights uses for a missing IATA code.
const NoCode = `\N`

// Column positions in the OpenFlights airports.dat layout:
// ID, Name, City, Country, IATA, ICAO, Lat, Lon, Alt, Tz, Dst, TzDb, Type, Source.
const (
	colName    = 1
	colCity    = 2
	colCountry = 3
	colIATA    = 4
	colLat     = 6
	colLon     = 7

	minAirportCols = colLon + 1
)

// AirportTable maps IATA codes to airport geography. The zero value is an
// empty table. It is not modified after construction.
type AirportTable struct {
	airports map[string]model.AirportGeoRecord
	skipped  int
}

// BuildAirportTable builds the lookup from raw airports.dat rows. Rows without
// an IATA code are excluded. When a code repeats, the first row wins. Rows that
// are too short or carry unparseable coordinates are skipped and counted.
func BuildAirportTable(rows [][]string) AirportTable {
	t := AirportTable{airports: make(map[string]model.AirportGeoRecord, len(rows))}

	for _, row := range rows {
		if len(row) < minAirportCols {
			t.skipped++
			continue
		}

		iata := strings.TrimSpace(row[colIATA])
		if iata == "" || iata == NoCode {
			continue
		}
		if _, dup := t.airports[iata]; dup {
			continue
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[colLat]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(row[colLon]), 64)
		if latErr != nil || lonErr != nil {
			t.skipped++
			continue
		}

		t.airports[iata] = model.AirportGeoRecord{
			IATA:        iata,
			City:        row[colCity],
			Country:     row[colCountry],
			Latitude:    lat,
			Longitude:   lon,
			AirportName: row[colName],
		}
	}

	return t
}

// Lookup returns the airport for an IATA code.
func (t AirportTable) Lookup(iata string) (model.AirportGeoRecord, bool) {
	a, ok := t.airports[iata]
	return a, ok
}

// Len returns the number of airports in the table.
func (t AirportTable) Len() int {
	return len(t.airports)
}

// Skipped returns the number of malformed rows dropped during the build.
func (t AirportTable) Skipped() int {
	return t.skipped
}

// Records returns all airports ordered by IATA code.
func (t AirportTable) Records() []model.AirportGeoRecord {
	out := make([]model.AirportGeoRecord, 0, len(t.airports))
	for _, a := range t.airports {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IATA < out[j].IATA })
	return out
}
