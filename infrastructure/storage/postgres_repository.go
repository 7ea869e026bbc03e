// Package storage provides the persistence, locking, and caching backends
// behind the ports used by the comparative service.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

const backendPostgres = "postgres"

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate primary key.
const uniqueViolation = "23505"

// PostgresSchema creates the comparatives table. Criteria and items are
// stored as JSONB documents next to the scalar settings.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS comparatives (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL DEFAULT '',
	scoring_method   TEXT NOT NULL,
	highlight_winner BOOLEAN NOT NULL DEFAULT FALSE,
	winner_id        TEXT NOT NULL DEFAULT '',
	criteria         JSONB NOT NULL,
	items            JSONB NOT NULL,
	version          BIGINT NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const (
	selectComparativeSQL = `SELECT id, title, scoring_method, highlight_winner, winner_id, criteria, items, version
FROM comparatives WHERE id = $1`

	insertComparativeSQL = `INSERT INTO comparatives
(id, title, scoring_method, highlight_winner, winner_id, criteria, items, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1)`

	updateComparativeSQL = `UPDATE comparatives
SET title = $3, scoring_method = $4, highlight_winner = $5, winner_id = $6,
    criteria = $7, items = $8, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $2`

	existsComparativeSQL = `SELECT EXISTS(SELECT 1 FROM comparatives WHERE id = $1)`

	listComparativesSQL = `SELECT id FROM comparatives ORDER BY id`
)

// PostgresOptions configures the connection pool.
type PostgresOptions struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresRepository implements ports.ComparativeRepository on PostgreSQL.
// Version checks happen inside the UPDATE statement so concurrent writers
// cannot both succeed against the same version.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ComparativeRepository = (*PostgresRepository)(nil)

// OpenPostgres opens a pooled connection using the lib/pq driver.
func OpenPostgres(opts PostgresOptions) (*sql.DB, error) {
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	lifetime := opts.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(lifetime)

	return db, nil
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the comparatives table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, PostgresSchema); err != nil {
		return ports.NewStoreError(backendPostgres, "migrate", "comparatives", classify(err))
	}
	return nil
}

// Ping tests the database connection.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return ports.NewStoreError(backendPostgres, "ping", "", classify(err))
	}
	return nil
}

// Close closes the database connection.
func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements ports.ComparativeRepository.
func (r *PostgresRepository) Get(ctx context.Context, id string) (domain.Comparative, error) {
	var (
		c                     domain.Comparative
		method                string
		criteriaDoc, itemsDoc []byte
	)
	err := r.db.QueryRowContext(ctx, selectComparativeSQL, id).Scan(
		&c.ID, &c.Title, &method, &c.HighlightWinner, &c.WinnerID, &criteriaDoc, &itemsDoc, &c.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "get", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "get", id, classify(err))
	}

	c.ScoringMethod = domain.ScoringMethod(method)
	if err := json.Unmarshal(criteriaDoc, &c.Criteria); err != nil {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "get", id,
			fmt.Errorf("decode criteria: %w", err))
	}
	if err := json.Unmarshal(itemsDoc, &c.Items); err != nil {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "get", id,
			fmt.Errorf("decode items: %w", err))
	}
	return c, nil
}

// Create implements ports.ComparativeRepository.
func (r *PostgresRepository) Create(ctx context.Context, c domain.Comparative) (domain.Comparative, error) {
	criteriaDoc, itemsDoc, err := encodeDocuments(c)
	if err != nil {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "create", c.ID, err)
	}

	_, err = r.db.ExecContext(ctx, insertComparativeSQL,
		c.ID, c.Title, string(c.ScoringMethod), c.HighlightWinner, c.WinnerID, criteriaDoc, itemsDoc,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.Comparative{}, ports.NewStoreError(backendPostgres, "create", c.ID, domain.ErrAlreadyExists)
		}
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "create", c.ID, classify(err))
	}

	out := c.Clone()
	out.Version = 1
	return out, nil
}

// Save implements ports.ComparativeRepository. When no row matches the
// (id, version) pair, a follow-up existence check tells a stale version
// apart from a missing comparative.
func (r *PostgresRepository) Save(ctx context.Context, c domain.Comparative) (domain.Comparative, error) {
	criteriaDoc, itemsDoc, err := encodeDocuments(c)
	if err != nil {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "save", c.ID, err)
	}

	res, err := r.db.ExecContext(ctx, updateComparativeSQL,
		c.ID, c.Version, c.Title, string(c.ScoringMethod), c.HighlightWinner, c.WinnerID, criteriaDoc, itemsDoc,
	)
	if err != nil {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "save", c.ID, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "save", c.ID, classify(err))
	}

	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, existsComparativeSQL, c.ID).Scan(&exists); err != nil {
			return domain.Comparative{}, ports.NewStoreError(backendPostgres, "save", c.ID, classify(err))
		}
		if !exists {
			return domain.Comparative{}, ports.NewStoreError(backendPostgres, "save", c.ID, domain.ErrNotFound)
		}
		return domain.Comparative{}, ports.NewStoreError(backendPostgres, "save", c.ID,
			fmt.Errorf("%w: expected version %d", domain.ErrVersionConflict, c.Version))
	}

	out := c.Clone()
	out.Version = c.Version + 1
	return out, nil
}

// List implements ports.ComparativeRepository.
func (r *PostgresRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listComparativesSQL)
	if err != nil {
		return nil, ports.NewStoreError(backendPostgres, "list", "", classify(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, ports.NewStoreError(backendPostgres, "list", "", classify(err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError(backendPostgres, "list", "", classify(err))
	}
	return ids, nil
}

func encodeDocuments(c domain.Comparative) (criteria, items []byte, err error) {
	criteria, err = json.Marshal(nonNil(c.Criteria))
	if err != nil {
		return nil, nil, fmt.Errorf("encode criteria: %w", err)
	}
	items, err = json.Marshal(nonNil(c.Items))
	if err != nil {
		return nil, nil, fmt.Errorf("encode items: %w", err)
	}
	return criteria, items, nil
}

// nonNil keeps JSONB columns as [] rather than null.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
