package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	_ "modernc.org/sqlite"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

const backendSQLite = "sqlite"

// MemoryDSN opens a private in-memory template database.
const MemoryDSN = ":memory:"

const sqliteTemplateSchema = `
CREATE TABLE IF NOT EXISTS templates (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	criteria    TEXT NOT NULL
)`

// SQLiteTemplateStore implements ports.TemplateStore on an embedded SQLite
// database. Names are case-folded into the primary key, so "Laptops" and
// "LAPTOPS" address the same template while the stored name keeps the
// spelling of the last save.
type SQLiteTemplateStore struct {
	db *sql.DB
}

var _ ports.TemplateStore = (*SQLiteTemplateStore)(nil)

// OpenSQLiteTemplateStore opens (or creates) the database at path and
// ensures the schema exists. Use MemoryDSN for a throwaway store.
func OpenSQLiteTemplateStore(ctx context.Context, path string) (*SQLiteTemplateStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Each connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteTemplateSchema); err != nil {
		_ = db.Close()
		return nil, ports.NewStoreError(backendSQLite, "migrate", "templates", err)
	}
	return &SQLiteTemplateStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteTemplateStore) Close() error { return s.db.Close() }

// key folds name into its lookup key. A cases.Caser carries state, so a
// fresh one is used per call.
func (s *SQLiteTemplateStore) key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Get implements ports.TemplateStore. A miss reports the closest stored name
// when one is near enough to be a likely typo.
func (s *SQLiteTemplateStore) Get(ctx context.Context, name string) (domain.Template, error) {
	var (
		t   domain.Template
		doc string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, description, criteria FROM templates WHERE key = ?`, s.key(name),
	).Scan(&t.Name, &t.Description, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Template{}, ports.NewStoreError(backendSQLite, "get", name, s.notFound(ctx, name))
	}
	if err != nil {
		return domain.Template{}, ports.NewStoreError(backendSQLite, "get", name, err)
	}
	if err := json.Unmarshal([]byte(doc), &t.Criteria); err != nil {
		return domain.Template{}, ports.NewStoreError(backendSQLite, "get", name,
			fmt.Errorf("decode criteria: %w", err))
	}
	return t, nil
}

// Save implements ports.TemplateStore.
func (s *SQLiteTemplateStore) Save(ctx context.Context, t domain.Template) error {
	key := s.key(t.Name)
	if key == "" {
		return ports.NewStoreError(backendSQLite, "save", t.Name, errors.New("template name is required"))
	}
	doc, err := json.Marshal(nonNil(t.Criteria))
	if err != nil {
		return ports.NewStoreError(backendSQLite, "save", t.Name, fmt.Errorf("encode criteria: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO templates (key, name, description, criteria) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET name = excluded.name, description = excluded.description, criteria = excluded.criteria`,
		key, strings.TrimSpace(t.Name), t.Description, string(doc),
	)
	if err != nil {
		return ports.NewStoreError(backendSQLite, "save", t.Name, err)
	}
	return nil
}

// List implements ports.TemplateStore.
func (s *SQLiteTemplateStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM templates ORDER BY key`)
	if err != nil {
		return nil, ports.NewStoreError(backendSQLite, "list", "", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ports.NewStoreError(backendSQLite, "list", "", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError(backendSQLite, "list", "", err)
	}
	return names, nil
}

// Delete implements ports.TemplateStore.
func (s *SQLiteTemplateStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE key = ?`, s.key(name)); err != nil {
		return ports.NewStoreError(backendSQLite, "delete", name, err)
	}
	return nil
}

func (s *SQLiteTemplateStore) notFound(ctx context.Context, name string) error {
	names, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
	}
	return templateNotFound(name, names, s.key)
}

// templateNotFound builds an ErrTemplateNotFound error, suggesting the
// candidate with the smallest edit distance when it is within a third of
// the requested name's length.
func templateNotFound(name string, candidates []string, fold func(string) string) error {
	want := fold(name)
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(want, fold(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	limit := len([]rune(want)) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist >= 0 && bestDist <= limit {
		return fmt.Errorf("%w: %q (did you mean %q?)", domain.ErrTemplateNotFound, name, best)
	}
	return fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
}
