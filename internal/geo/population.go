package geo

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/tourism-cli/internal/model"
)

// PopulationRow is one raw worldcities.csv row. Columns other than these are ignored.
type PopulationRow struct {
	CityASCII  string `csv:"city_ascii"`
	Country    string `csv:"country"`
	Population string `csv:"population"`
}

// PopulationTable maps normalized (city, country) keys to population entries.
// Duplicate keys keep every entry. The zero value is an empty table.
type PopulationTable struct {
	entries map[PopulationKey][]model.CityPopulationRecord
	rows    int
}

// BuildPopulationTable normalizes and indexes raw population rows.
func BuildPopulationTable(rows []PopulationRow) PopulationTable {
	t := PopulationTable{entries: make(map[PopulationKey][]model.CityPopulationRecord, len(rows))}

	for _, row := range rows {
		key := NewPopulationKey(row.CityASCII, row.Country)
		t.entries[key] = append(t.entries[key], model.CityPopulationRecord{
			CityKey:    key.City,
			CountryKey: key.Country,
			Population: ParsePopulation(row.Population),
		})
		t.rows++
	}

	return t
}

// ParsePopulation parses a numeric population value. Values that are empty,
// non-numeric, non-finite or negative yield nil. Fractions are truncated.
func ParsePopulation(raw string) *int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt64 {
		return nil
	}
	p := int64(v)
	return &p
}

// Lookup returns every population entry for a city and country. Inputs are
// normalized before lookup.
func (t PopulationTable) Lookup(city, country string) []model.CityPopulationRecord {
	return t.entries[NewPopulationKey(city, country)]
}

// Len returns the number of source rows indexed.
func (t PopulationTable) Len() int {
	return t.rows
}

// Keys returns the number of distinct (city, country) keys.
func (t PopulationTable) Keys() int {
	return len(t.entries)
}

// DecodePopulationRows decodes worldcities.csv content. The first line must
// be a header naming at least city_ascii, country and population.
func DecodePopulationRows(r io.Reader) ([]PopulationRow, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "geo: read population header")
	}

	var rows []PopulationRow
	for {
		var row PopulationRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "geo: decode population row %d", len(rows)+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
