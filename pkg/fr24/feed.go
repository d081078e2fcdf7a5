package fr24

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/rotisserie/eris"
)

// NotAvailable replaces empty string fields in parsed flights.
const NotAvailable = "N/A"

// Feed is one parsed zone feed response.
type Feed struct {
	FullCount int
	Version   int
	Flights   []Flight
}

// Flight is one aircraft entry from the zone feed.
type Flight struct {
	ID            string
	ICAO24        string
	Latitude      float64
	Longitude     float64
	Heading       int
	Altitude      int
	GroundSpeed   int
	Squawk        string
	Radar         string
	AircraftCode  string
	Registration  string
	Time          time.Time
	OriginIATA    string
	DestIATA      string
	Number        string
	OnGround      bool
	VerticalSpeed int
	Callsign      string
	AirlineICAO   string
}

// Entries are positional arrays:
//
//	["3c6752", 50.0312, 8.5711, 250, 0, 12, "1000", "F-EDDF1", "A321", "D-AISX",
//	 1714560000, "FRA", "BCN", "LH1132", 1, 0, "DLH1132", 0, "DLH"]
const (
	idxICAO24 = iota
	idxLat
	idxLon
	idxHeading
	idxAltitude
	idxGroundSpeed
	idxSquawk
	idxRadar
	idxAircraftCode
	idxRegistration
	idxTime
	idxOrigin
	idxDest
	idxNumber
	idxOnGround
	idxVerticalSpeed
	idxCallsign
	idxReserved
	idxAirlineICAO

	entryLen
)

// ParseFeed decodes a zone feed body. Non-flight keys (full_count, version,
// stats) are read or ignored; entries shorter than expected are skipped.
// Flights are returned ordered by ID.
func ParseFeed(data []byte) (*Feed, error) {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "fr24: decode feed")
	}

	feed := &Feed{}
	for key, msg := range raw {
		switch key {
		case "full_count":
			_ = json.Unmarshal(msg, &feed.FullCount)
			continue
		case "version":
			_ = json.Unmarshal(msg, &feed.Version)
			continue
		}

		var entry []any
		if err := json.Unmarshal(msg, &entry); err != nil || len(entry) < entryLen {
			continue
		}
		feed.Flights = append(feed.Flights, parseEntry(key, entry))
	}

	sort.Slice(feed.Flights, func(i, j int) bool { return feed.Flights[i].ID < feed.Flights[j].ID })
	return feed, nil
}

func parseEntry(id string, v []any) Flight {
	return Flight{
		ID:            id,
		ICAO24:        str(v[idxICAO24]),
		Latitude:      num(v[idxLat]),
		Longitude:     num(v[idxLon]),
		Heading:       int(num(v[idxHeading])),
		Altitude:      int(num(v[idxAltitude])),
		GroundSpeed:   int(num(v[idxGroundSpeed])),
		Squawk:        str(v[idxSquawk]),
		Radar:         str(v[idxRadar]),
		AircraftCode:  str(v[idxAircraftCode]),
		Registration:  str(v[idxRegistration]),
		Time:          time.Unix(int64(num(v[idxTime])), 0).UTC(),
		OriginIATA:    str(v[idxOrigin]),
		DestIATA:      str(v[idxDest]),
		Number:        str(v[idxNumber]),
		OnGround:      num(v[idxOnGround]) != 0,
		VerticalSpeed: int(num(v[idxVerticalSpeed])),
		Callsign:      str(v[idxCallsign]),
		AirlineICAO:   str(v[idxAirlineICAO]),
	}
}

func str(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return NotAvailable
}

func num(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
