package store

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// DBAdapter is the narrow database surface the store needs. Statements are
// fully rendered SQL strings.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows iterates query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// DBResult reports the outcome of an Exec.
type DBResult interface {
	RowsAffected() (int64, error)
}

// pgxAdapter implements DBAdapter for pgxpool.Pool.
type pgxAdapter struct {
	pool *pgxpool.Pool
}

func (p *pgxAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (p *pgxAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	tag, err := p.pool.Exec(ctx, query)
	if err != nil {
		return nil, err
	}
	return &pgxResult{tag: tag}, nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Close releases the rows and surfaces any error met while iterating.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return p.rows.Err()
}

type pgxResult struct {
	tag pgconn.CommandTag
}

func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}

// sqlxAdapter implements DBAdapter for sqlx.DB.
type sqlxAdapter struct {
	db *sqlx.DB
}

func (s *sqlxAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &stdRows{rows: rows}, nil
}

func (s *sqlxAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return result, nil
}

type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Close() error {
	if err := s.rows.Err(); err != nil {
		_ = s.rows.Close()
		return err
	}
	return s.rows.Close()
}
