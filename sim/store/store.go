// Package store persists simulation runs and their event logs in Postgres.
//
// A run is one row in the runs table (config stored as jsonb) plus one row
// per event log record in the events table, keyed by a UUIDv7 run id. The
// store works over a pgx pool or an sqlx handle through the DBAdapter
// interface; SQL is built with goqu's postgres dialect.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/trace"
)

var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrEmptyTableName        = errors.New("table name must not be empty")
	ErrInvalidTableName      = errors.New("table name must be an identifier, optionally schema-qualified")
	ErrBuildingQueryFailed   = errors.New("building SQL query failed")
	ErrAppendFailed          = errors.New("appending run to the store failed")
	ErrQueryFailed           = errors.New("querying the store failed")
	ErrScanningRowFailed     = errors.New("scanning a database row failed")
	ErrRunNotFound           = errors.New("run not found")
)

const (
	dialectPostgres    = "postgres"
	defaultRunsTable   = "sim_runs"
	defaultEventsTable = "sim_events"
	defaultBatchSize   = 500

	colRunID       = "run_id"
	colLabel       = "label"
	colSeed        = "seed"
	colNumTasks    = "num_tasks"
	colNumServers  = "num_servers"
	colEndClock    = "end_clock"
	colRecordCount = "record_count"
	colConfig      = "config"
	colCreatedAt   = "created_at"

	colSeq       = "seq"
	colClock     = "clock"
	colSubject   = "subject"
	colSubjectID = "subject_id"
	colEvent     = "event"
	colRef       = "ref"

	castJsonb = "?::jsonb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RunMeta describes a persisted run.
type RunMeta struct {
	Label     string
	Config    sim.Config
	Seed      int64
	EndClock  float64
	CreatedAt time.Time
}

// Store reads and writes runs.
type Store struct {
	db          DBAdapter
	runsTable   string
	eventsTable string
	batchSize   int
	logger      logrus.FieldLogger
}

// NewStoreFromPGXPool creates a Store over a pgx pool.
func NewStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Store, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}
	return NewStore(&pgxAdapter{pool: pool}, options...)
}

// NewStoreFromSQLX creates a Store over an sqlx handle, typically opened
// with the "postgres" driver from lib/pq.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return NewStore(&sqlxAdapter{db: db}, options...)
}

// NewStore creates a Store over any DBAdapter.
func NewStore(db DBAdapter, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	s := &Store{
		db:          db,
		runsTable:   defaultRunsTable,
		eventsTable: defaultEventsTable,
		batchSize:   defaultBatchSize,
		logger:      logrus.StandardLogger(),
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CreateSchemaSQL returns the DDL for the store's tables.
func (s *Store) CreateSchemaSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	run_id       uuid PRIMARY KEY,
	label        text NOT NULL DEFAULT '',
	seed         bigint NOT NULL,
	num_tasks    integer NOT NULL,
	num_servers  integer NOT NULL,
	end_clock    double precision NOT NULL,
	record_count integer NOT NULL,
	config       jsonb NOT NULL,
	created_at   timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS %[2]s (
	run_id     uuid NOT NULL REFERENCES %[1]s (run_id) ON DELETE CASCADE,
	seq        integer NOT NULL,
	clock      double precision NOT NULL,
	subject    text NOT NULL,
	subject_id integer NOT NULL,
	event      text NOT NULL,
	ref        integer NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`, quoteIdent(s.runsTable), quoteIdent(s.eventsTable))
}

// quoteIdent quotes each dot-separated part of name the way goqu's postgres
// dialect does, so the DDL names the same tables the DML targets.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// CreateSchema executes CreateSchemaSQL.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, s.CreateSchemaSQL()); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun stores meta and every record of log under a fresh run id.
// Events are inserted in batches; if any batch fails the partial run is
// deleted again.
func (s *Store) SaveRun(ctx context.Context, meta RunMeta, log trace.Reader) (uuid.UUID, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate run id: %w", err)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	runSQL, err := s.buildInsertRun(runID, meta, log.Len())
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.exec(ctx, runSQL); err != nil {
		return uuid.Nil, err
	}

	batch := make([]trace.Record, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		eventsSQL, err := s.buildInsertEvents(runID, batch)
		if err != nil {
			return err
		}
		batch = batch[:0]
		return s.exec(ctx, eventsSQL)
	}
	for _, rec := range log.All() {
		batch = append(batch, rec)
		if len(batch) == s.batchSize {
			if err := flush(); err != nil {
				s.cleanup(ctx, runID)
				return uuid.Nil, err
			}
		}
	}
	if err := flush(); err != nil {
		s.cleanup(ctx, runID)
		return uuid.Nil, err
	}

	s.logger.Infof("Saved run %s: %d records", runID, log.Len())
	return runID, nil
}

// LoadEvents returns the records of runID in emission order.
func (s *Store) LoadEvents(ctx context.Context, runID uuid.UUID) ([]trace.Record, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(s.eventsTable).
		Select(colSeq, colClock, colSubject, colSubjectID, colEvent, colRef).
		Where(goqu.C(colRunID).Eq(runID.String())).
		Order(goqu.I(colSeq).Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var records []trace.Record
	for rows.Next() {
		var (
			seq, id, ref   int64
			clock          float64
			subject, event string
		)
		if err := rows.Scan(&seq, &clock, &subject, &id, &event, &ref); err != nil {
			return nil, errors.Join(ErrScanningRowFailed, err)
		}
		records = append(records, trace.Record{
			Seq:     int(seq),
			Clock:   clock,
			Subject: trace.SubjectKind(subject),
			ID:      int(id),
			Event:   trace.EventKind(event),
			Ref:     int(ref),
		})
	}
	if err := rows.Close(); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	s.logger.Infof("Loaded run %s: %d records", runID, len(records))
	return records, nil
}

// LoadRun returns the metadata of runID.
func (s *Store) LoadRun(ctx context.Context, runID uuid.UUID) (RunMeta, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(s.runsTable).
		Select(colLabel, colSeed, colEndClock, colConfig, colCreatedAt).
		Where(goqu.C(colRunID).Eq(runID.String())).
		ToSQL()
	if err != nil {
		return RunMeta{}, errors.Join(ErrBuildingQueryFailed, err)
	}

	rows, err := s.query(ctx, query)
	if err != nil {
		return RunMeta{}, err
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		if err := rows.Close(); err != nil {
			return RunMeta{}, errors.Join(ErrQueryFailed, err)
		}
		return RunMeta{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	var (
		meta    RunMeta
		cfgJSON []byte
	)
	if err := rows.Scan(&meta.Label, &meta.Seed, &meta.EndClock, &cfgJSON, &meta.CreatedAt); err != nil {
		return RunMeta{}, errors.Join(ErrScanningRowFailed, err)
	}
	if err := json.Unmarshal(cfgJSON, &meta.Config); err != nil {
		return RunMeta{}, fmt.Errorf("decode config of run %s: %w", runID, err)
	}
	return meta, nil
}

func (s *Store) buildInsertRun(runID uuid.UUID, meta RunMeta, records int) (string, error) {
	cfgJSON, err := json.Marshal(meta.Config)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	query, _, err := goqu.Dialect(dialectPostgres).
		Insert(s.runsTable).
		Rows(goqu.Record{
			colRunID:       runID.String(),
			colLabel:       meta.Label,
			colSeed:        meta.Seed,
			colNumTasks:    meta.Config.NumTasks,
			colNumServers:  meta.Config.NumServers,
			colEndClock:    meta.EndClock,
			colRecordCount: records,
			colConfig:      goqu.L(castJsonb, string(cfgJSON)),
			colCreatedAt:   meta.CreatedAt,
		}).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}
	return query, nil
}

func (s *Store) buildInsertEvents(runID uuid.UUID, batch []trace.Record) (string, error) {
	id := runID.String()
	vals := make([][]any, len(batch))
	for i, rec := range batch {
		vals[i] = []any{id, rec.Seq, rec.Clock, string(rec.Subject), rec.ID, string(rec.Event), rec.Ref}
	}
	query, _, err := goqu.Dialect(dialectPostgres).
		Insert(s.eventsTable).
		Cols(colRunID, colSeq, colClock, colSubject, colSubjectID, colEvent, colRef).
		Vals(vals...).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}
	return query, nil
}

func (s *Store) exec(ctx context.Context, query string) error {
	s.logger.Debugf("exec: %s", query)
	if _, err := s.db.Exec(ctx, query); err != nil {
		s.logger.Errorf("exec failed: %v", err)
		return errors.Join(ErrAppendFailed, err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, query string) (DBRows, error) {
	s.logger.Debugf("query: %s", query)
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		s.logger.Errorf("query failed: %v", err)
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return rows, nil
}

func (s *Store) closeRows(rows DBRows) {
	if err := rows.Close(); err != nil {
		s.logger.Warnf("closing rows failed: %v", err)
	}
}

// cleanup removes a partially written run; events go with it via the
// cascading foreign key.
func (s *Store) cleanup(ctx context.Context, runID uuid.UUID) {
	query, _, err := goqu.Dialect(dialectPostgres).
		Delete(s.runsTable).
		Where(goqu.C(colRunID).Eq(runID.String())).
		ToSQL()
	if err == nil {
		_, err = s.db.Exec(ctx, query)
	}
	if err != nil {
		s.logger.Warnf("cleanup of run %s failed: %v", runID, err)
	}
}
