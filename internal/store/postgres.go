package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/tourism-cli/internal/db"
	"github.com/sells-group/tourism-cli/internal/model"
)

// PostgresStore implements Store using pgxpool. Snapshot rows are written
// with COPY.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			pgxCfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			pgxCfg.MinConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id                  TEXT PRIMARY KEY,
	status              TEXT NOT NULL,
	started_at          TIMESTAMPTZ NOT NULL,
	finished_at         TIMESTAMPTZ,
	flights_observed    INTEGER NOT NULL DEFAULT 0,
	geo_matched         INTEGER NOT NULL DEFAULT 0,
	rows_appended       BIGINT NOT NULL DEFAULT 0,
	airport_ref_rows    INTEGER NOT NULL DEFAULT 0,
	population_ref_rows INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS flight_snapshots (
	run_id              TEXT NOT NULL,
	snapshot_utc        TIMESTAMPTZ NOT NULL,
	flight_number       TEXT NOT NULL DEFAULT '',
	airline_icao        TEXT NOT NULL DEFAULT '',
	aircraft_code       TEXT NOT NULL DEFAULT '',
	origin_iata         TEXT NOT NULL DEFAULT '',
	city                TEXT NOT NULL,
	country             TEXT NOT NULL,
	airport_name        TEXT NOT NULL DEFAULT '',
	dest_iata           TEXT NOT NULL,
	lat                 DOUBLE PRECISION NOT NULL,
	lon                 DOUBLE PRECISION NOT NULL,
	est_passengers      INTEGER NOT NULL,
	tourist_probability INTEGER NOT NULL,
	city_population     BIGINT
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_status ON pipeline_runs(status);
CREATE INDEX IF NOT EXISTS idx_flight_snapshots_run_id ON flight_snapshots(run_id);
CREATE INDEX IF NOT EXISTS idx_flight_snapshots_city ON flight_snapshots(city, country);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AppendRun(ctx context.Context, run *model.Run, rows []model.JoinedRecord) (int64, error) {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = snapshotValues(run.ID, r)
	}

	var n int64
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		n, err = db.CopyFrom(ctx, tx, "flight_snapshots", snapshotColumns, values)
		if err != nil {
			return err
		}

		finish(run, n)
		_, err = tx.Exec(ctx,
			`INSERT INTO pipeline_runs (id, status, started_at, finished_at, flights_observed, geo_matched, rows_appended, airport_ref_rows, population_ref_rows)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			run.ID, string(run.Status), run.StartedAt.UTC(), run.FinishedAt.UTC(),
			run.FlightsObserved, run.GeoMatched, run.RowsAppended, run.AirportRefRows, run.PopulationRefRows,
		)
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	})
	if err != nil {
		return 0, eris.Wrap(err, "postgres: append run")
	}
	return n, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, runID)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	args = append(args, runLimit(filter.Limit))
	if len(args) == 1 {
		query += ` ORDER BY started_at DESC, id LIMIT $1`
	} else {
		query += ` ORDER BY started_at DESC, id LIMIT $2`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

const postgresTopByVolume = `
SELECT city, country, COUNT(*) AS flight_count, SUM(est_passengers) AS total_passengers
FROM flight_snapshots
GROUP BY city, country
ORDER BY flight_count DESC, city ASC, country ASC
LIMIT $1`

const postgresTopPerCapita = `
SELECT city, country, COUNT(*) AS flight_count, SUM(est_passengers) AS total_passengers,
       MAX(city_population) AS population,
       ROUND(SUM(est_passengers)::numeric / MAX(city_population), 6)::double precision AS per_capita
FROM flight_snapshots
WHERE city_population IS NOT NULL AND city_population > 0
GROUP BY city, country
ORDER BY per_capita DESC, city ASC, country ASC
LIMIT $1`

func (s *PostgresStore) TopByFlightVolume(ctx context.Context, limit int) ([]model.DestinationRank, error) {
	rows, err := s.pool.Query(ctx, postgresTopByVolume, rankLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: top by volume")
	}
	defer rows.Close()

	var out []model.DestinationRank
	for rows.Next() {
		var d model.DestinationRank
		if err := rows.Scan(&d.City, &d.Country, &d.FlightCount, &d.TotalPassengers); err != nil {
			return nil, eris.Wrap(err, "postgres: scan volume rank")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate volume ranks")
}

func (s *PostgresStore) TopByPassengersPerCapita(ctx context.Context, limit int) ([]model.DestinationRank, error) {
	rows, err := s.pool.Query(ctx, postgresTopPerCapita, rankLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: top per capita")
	}
	defer rows.Close()

	var out []model.DestinationRank
	for rows.Next() {
		var d model.DestinationRank
		if err := rows.Scan(&d.City, &d.Country, &d.FlightCount, &d.TotalPassengers, &d.Population, &d.PassengersPerCapita); err != nil {
			return nil, eris.Wrap(err, "postgres: scan per-capita rank")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate per-capita ranks")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.Status, &r.StartedAt, &r.FinishedAt,
		&r.FlightsObserved, &r.GeoMatched, &r.RowsAppended, &r.AirportRefRows, &r.PopulationRefRows)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
