package items

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{"id", "user_id", "name", "description", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+items\s*\(user_id,\s*name,\s*description\).*RETURNING\s+id,\s*created_at,\s*updated_at`).
		WithArgs("u1", "book", "blue").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("i1", now, now))

	got, err := repo.Create(context.Background(), &models.Item{UserID: "u1", Name: "book", Description: "blue"})
	require.NoError(t, err)
	assert.Equal(t, "i1", got.ID)
	assert.Equal(t, "book", got.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListByOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+items\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("i2", "u1", "b", "", now, now).
			AddRow("i1", "u1", "a", "d", now, now))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "i2", got[0].ID)
	assert.Equal(t, "d", got[1].Description)
}

func TestPostgresRepository_ListByOwner_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+items`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(itemColumns))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgresRepository_Get(t *testing.T) {
	q := `(?s)SELECT.*FROM\s+items\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("i1", "u1").
			WillReturnRows(sqlmock.NewRows(itemColumns).AddRow("i1", "u1", "a", "", time.Now(), time.Now()))

		got, err := repo.Get(context.Background(), "i1", "u1")
		require.NoError(t, err)
		assert.Equal(t, "a", got.Name)
	})

	t.Run("foreign or missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("i1", "u2").WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), "i1", "u2")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("i1", "u1").WillReturnError(errors.New("db down"))

		_, err := repo.Get(context.Background(), "i1", "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db error: db down")
	})
}

func TestPostgresRepository_Update(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	name := "renamed"

	mock.ExpectQuery(`(?s)UPDATE\s+items\s+SET.*COALESCE\(NULLIF\(\$3,\s*''\),\s*name\).*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs("i1", "u1", "renamed", "").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow("i1", "u1", "renamed", "old", time.Now(), time.Now()))

	got, err := repo.Update(context.Background(), "i1", "u1", Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "old", got.Description)
}

func TestPostgresRepository_Delete(t *testing.T) {
	q := `(?s)DELETE\s+FROM\s+items\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`

	t.Run("deleted", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("i1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(context.Background(), "i1", "u1"))
	})

	t.Run("nothing deleted", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("i1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(context.Background(), "i1", "u2"), common.ErrorNotFound)
	})
}
