package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
	"github.com/ahrav/go-compare/internal/testutils"
)

var comparativeColumns = []string{
	"id", "title", "scoring_method", "highlight_winner", "winner_id", "criteria", "items", "version",
}

func newMockRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes documents", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(`SELECT id, title, scoring_method, .* FROM comparatives WHERE id = \$1`).
			WithArgs("cmp-1").
			WillReturnRows(sqlmock.NewRows(comparativeColumns).AddRow(
				"cmp-1", "Routers", "weighted_average", true, "router-a",
				[]byte(`[{"id":"price","name":"Price","type":"price","weight":100,"order":0,"is_visible":true}]`),
				[]byte(`[{"id":"router-a","name":"A","order":0,"values":{"price":{"criterion_id":"price","value":129}}}]`),
				int64(4),
			))

		c, err := repo.Get(ctx, "cmp-1")
		require.NoError(t, err)
		assert.Equal(t, "Routers", c.Title)
		assert.Equal(t, domain.ScoringWeightedAverage, c.ScoringMethod)
		assert.Equal(t, int64(4), c.Version)
		require.Len(t, c.Criteria, 1)
		assert.Equal(t, domain.CriterionPrice, c.Criteria[0].Type)
		require.Len(t, c.Items, 1)
		assert.Equal(t, 129.0, c.Items[0].Values["price"].Value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(`SELECT .* FROM comparatives WHERE id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		var storeErr *ports.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "postgres", storeErr.Backend)
		assert.Equal(t, "get", storeErr.Operation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt document", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(`SELECT .* FROM comparatives WHERE id = \$1`).
			WithArgs("cmp-1").
			WillReturnRows(sqlmock.NewRows(comparativeColumns).AddRow(
				"cmp-1", "", "sum", false, "", []byte(`{`), []byte(`[]`), int64(1),
			))

		_, err := repo.Get(ctx, "cmp-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode criteria")
	})
}

func TestPostgresRepository_Create(t *testing.T) {
	ctx := context.Background()
	c := testutils.ProductComparison()

	t.Run("stores version one", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(`INSERT INTO comparatives`).
			WithArgs(c.ID, c.Title, "weighted_average", true, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		created, err := repo.Create(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.Version)
		assert.Equal(t, int64(0), c.Version, "input must not be modified")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(`INSERT INTO comparatives`).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Create(ctx, c)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})
}

func TestPostgresRepository_Save(t *testing.T) {
	ctx := context.Background()
	c := testutils.ProductComparison()
	c.Version = 3

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "version matches",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comparatives .* WHERE id = \$1 AND version = \$2`).
					WithArgs(c.ID, int64(3), c.Title, "weighted_average", true, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "stale version",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comparatives`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).WithArgs(c.ID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrVersionConflict,
		},
		{
			name: "missing comparative",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comparatives`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).WithArgs(c.ID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "driver failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comparatives`).WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setup(mock)

			saved, err := repo.Save(ctx, c)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, int64(4), saved.Version)
			} else {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrVersionConflict) || errors.Is(tt.wantErr, domain.ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT id FROM comparatives ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	ids, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Migrate(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS comparatives`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_TransportErrorsAreRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      error
		retryable bool
	}{
		{
			name:      "server starting up",
			err:       &pq.Error{Code: "57P03"},
			want:      ports.ErrServiceUnavailable,
			retryable: true,
		},
		{
			name:      "connection failure class",
			err:       &pq.Error{Code: "08006"},
			want:      ports.ErrServiceUnavailable,
			retryable: true,
		},
		{
			name:      "deadline",
			err:       context.DeadlineExceeded,
			want:      ports.ErrTimeout,
			retryable: true,
		},
		{
			name:      "syntax error",
			err:       &pq.Error{Code: "42601"},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectQuery(`SELECT .* FROM comparatives WHERE id = \$1`).
				WithArgs("cmp-1").
				WillReturnError(tt.err)

			_, err := repo.Get(context.Background(), "cmp-1")
			require.Error(t, err)

			var storeErr *ports.StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, tt.retryable, storeErr.IsRetryable())
			assert.Equal(t, tt.retryable, ports.IsRetryable(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.ErrorIs(t, err, tt.err, "the driver error stays in the chain")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
