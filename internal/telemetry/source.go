// Package telemetry acquires live flight observations and converts them into
// model.FlightRecord values for the pipeline.
package telemetry

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tourism-cli/internal/fetcher"
	"github.com/sells-group/tourism-cli/internal/model"
	"github.com/sells-group/tourism-cli/internal/resilience"
	"github.com/sells-group/tourism-cli/pkg/fr24"
)

// Source yields one snapshot of in-flight aircraft.
type Source interface {
	Flights(ctx context.Context) ([]model.FlightRecord, error)
}

// LiveSource reads the FlightRadar24 zone feed.
type LiveSource struct {
	client fr24.Client
	opts   fr24.FeedOptions
	policy resilience.Policy
	now    func() time.Time
}

// NewLiveSource creates a LiveSource that retries transient feed failures
// according to policy.
func NewLiveSource(client fr24.Client, opts fr24.FeedOptions, policy resilience.Policy) *LiveSource {
	return &LiveSource{client: client, opts: opts, policy: policy, now: time.Now}
}

// Flights fetches the feed and keeps only aircraft with a known destination.
func (s *LiveSource) Flights(ctx context.Context) ([]model.FlightRecord, error) {
	log := zap.L().With(zap.String("component", "telemetry.live"))

	feed, err := resilience.DoVal(ctx, s.policy, func(ctx context.Context) (*fr24.Feed, error) {
		feed, err := s.client.LiveFeed(ctx, s.opts)
		var se *fr24.StatusError
		if errors.As(err, &se) && resilience.IsTransientHTTPStatus(se.Code) {
			return nil, resilience.NewTransientError(err, se.Code)
		}
		return feed, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "telemetry: live feed")
	}

	flights := FromFeed(feed, s.now())
	log.Info("live feed fetched",
		zap.Int("aircraft", len(feed.Flights)),
		zap.Int("full_count", feed.FullCount),
		zap.Int("with_destination", len(flights)),
	)
	return flights, nil
}

// FileSource reads a saved zone feed body from a local path or URL.
type FileSource struct {
	fetcher fetcher.Fetcher
	source  string
	now     func() time.Time
}

// NewFileSource creates a FileSource. f may be nil when source is a local path.
func NewFileSource(f fetcher.Fetcher, source string) *FileSource {
	return &FileSource{fetcher: f, source: source, now: time.Now}
}

// Flights parses the saved feed. Records are stamped with the read time.
func (s *FileSource) Flights(ctx context.Context) ([]model.FlightRecord, error) {
	body, err := fetcher.Open(ctx, s.fetcher, s.source)
	if err != nil {
		return nil, eris.Wrap(err, "telemetry: open feed file")
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "telemetry: read feed file")
	}
	feed, err := fr24.ParseFeed(data)
	if err != nil {
		return nil, eris.Wrap(err, "telemetry: parse feed file")
	}
	return FromFeed(feed, s.now()), nil
}

// FromFeed converts feed entries into flight records stamped at at (UTC).
// Entries without a destination are dropped. Unknown optional fields become
// empty strings.
func FromFeed(feed *fr24.Feed, at time.Time) []model.FlightRecord {
	if feed == nil {
		return nil
	}
	at = at.UTC()

	out := make([]model.FlightRecord, 0, len(feed.Flights))
	for _, f := range feed.Flights {
		dest := known(f.DestIATA)
		if dest == "" {
			continue
		}
		out = append(out, model.FlightRecord{
			FlightNumber: known(f.Callsign),
			AirlineCode:  known(f.AirlineICAO),
			AircraftCode: known(f.AircraftCode),
			OriginCode:   known(f.OriginIATA),
			DestCode:     dest,
			Altitude:     f.Altitude,
			GroundSpeed:  f.GroundSpeed,
			SnapshotTime: at,
		})
	}
	return out
}

func known(s string) string {
	if s == fr24.NotAvailable {
		return ""
	}
	return s
}
