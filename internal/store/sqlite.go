package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/tourism-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id                  TEXT PRIMARY KEY,
	status              TEXT NOT NULL,
	started_at          DATETIME NOT NULL,
	finished_at         DATETIME,
	flights_observed    INTEGER NOT NULL DEFAULT 0,
	geo_matched         INTEGER NOT NULL DEFAULT 0,
	rows_appended       INTEGER NOT NULL DEFAULT 0,
	airport_ref_rows    INTEGER NOT NULL DEFAULT 0,
	population_ref_rows INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS flight_snapshots (
	run_id              TEXT NOT NULL,
	snapshot_utc        DATETIME NOT NULL,
	flight_number       TEXT NOT NULL DEFAULT '',
	airline_icao        TEXT NOT NULL DEFAULT '',
	aircraft_code       TEXT NOT NULL DEFAULT '',
	origin_iata         TEXT NOT NULL DEFAULT '',
	city                TEXT NOT NULL,
	country             TEXT NOT NULL,
	airport_name        TEXT NOT NULL DEFAULT '',
	dest_iata           TEXT NOT NULL,
	lat                 REAL NOT NULL,
	lon                 REAL NOT NULL,
	est_passengers      INTEGER NOT NULL,
	tourist_probability INTEGER NOT NULL,
	city_population     INTEGER
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_status ON pipeline_runs(status);
CREATE INDEX IF NOT EXISTS idx_flight_snapshots_run_id ON flight_snapshots(run_id);
CREATE INDEX IF NOT EXISTS idx_flight_snapshots_city ON flight_snapshots(city, country);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendRun(ctx context.Context, run *model.Run, rows []model.JoinedRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin append")
	}
	defer tx.Rollback() //nolint:errcheck

	var n int64
	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, sqliteInsertSnapshot)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: prepare snapshot insert")
		}
		defer stmt.Close() //nolint:errcheck

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, snapshotValues(run.ID, r)...); err != nil {
				return 0, eris.Wrapf(err, "sqlite: insert snapshot for run %s", run.ID)
			}
			n++
		}
	}

	finish(run, n)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, status, started_at, finished_at, flights_observed, geo_matched, rows_appended, airport_ref_rows, population_ref_rows)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.FlightsObserved, run.GeoMatched, run.RowsAppended, run.AirportRefRows, run.PopulationRefRows,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit append")
	}
	return n, nil
}

var sqliteInsertSnapshot = `INSERT INTO flight_snapshots (` + strings.Join(snapshotColumns, ", ") +
	`) VALUES (` + strings.TrimSuffix(strings.Repeat("?, ", len(snapshotColumns)), ", ") + `)`

const runColumns = `id, status, started_at, finished_at, flights_observed, geo_matched, rows_appended, airport_ref_rows, population_ref_rows`

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC, id LIMIT ?`
	args = append(args, runLimit(filter.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

const sqliteTopByVolume = `
SELECT city, country, COUNT(*) AS flight_count, SUM(est_passengers) AS total_passengers
FROM flight_snapshots
GROUP BY city, country
ORDER BY flight_count DESC, city ASC, country ASC
LIMIT ?`

const sqliteTopPerCapita = `
SELECT city, country, COUNT(*) AS flight_count, SUM(est_passengers) AS total_passengers,
       MAX(city_population) AS population,
       ROUND(1.0 * SUM(est_passengers) / MAX(city_population), 6) AS per_capita
FROM flight_snapshots
WHERE city_population IS NOT NULL AND city_population > 0
GROUP BY city, country
ORDER BY per_capita DESC, city ASC, country ASC
LIMIT ?`

func (s *SQLiteStore) TopByFlightVolume(ctx context.Context, limit int) ([]model.DestinationRank, error) {
	rows, err := s.db.QueryContext(ctx, sqliteTopByVolume, rankLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: top by volume")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.DestinationRank
	for rows.Next() {
		var d model.DestinationRank
		if err := rows.Scan(&d.City, &d.Country, &d.FlightCount, &d.TotalPassengers); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan volume rank")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate volume ranks")
}

func (s *SQLiteStore) TopByPassengersPerCapita(ctx context.Context, limit int) ([]model.DestinationRank, error) {
	rows, err := s.db.QueryContext(ctx, sqliteTopPerCapita, rankLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: top per capita")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.DestinationRank
	for rows.Next() {
		var d model.DestinationRank
		var pop int64
		var ratio float64
		if err := rows.Scan(&d.City, &d.Country, &d.FlightCount, &d.TotalPassengers, &pop, &ratio); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan per-capita rank")
		}
		d.Population = &pop
		d.PassengersPerCapita = &ratio
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate per-capita ranks")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var finished sql.NullTime
	err := row.Scan(&r.ID, &r.Status, &r.StartedAt, &finished,
		&r.FlightsObserved, &r.GeoMatched, &r.RowsAppended, &r.AirportRefRows, &r.PopulationRefRows)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time.UTC()
		r.FinishedAt = &t
	}
	r.StartedAt = r.StartedAt.UTC()
	return &r, nil
}
