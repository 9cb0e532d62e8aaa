package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const testUserID = "6f1c2d3e-0000-4000-8000-000000000001"

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "refresh_token", "refresh_token_expires_at",
	"reset_token", "reset_token_expires_at", "created_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(testUserID, created)
	mock.ExpectQuery(q).
		WithArgs("alice", "a@x.com", "hash").
		WillReturnRows(rows)

	u := &models.User{UserName: "alice", Email: "a@x.com", PasswordHash: "hash"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != testUserID || got.UserName != "alice" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "a@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "a@x.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "a@x.com", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "a@x.com", PasswordHash: "hash"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,\s*email,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

	exp := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(testUserID, "alice", "a@x.com", "hash", "rt", exp, nil, nil, time.Now())
	mock.ExpectQuery(q).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != testUserID || got.RefreshToken != "rt" || !got.RefreshTokenExpiresAt.Equal(exp) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.ResetToken != "" || !got.ResetTokenExpiresAt.IsZero() {
		t.Fatalf("NULL reset columns must map to zero values: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+email\s*=\s*\$1`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_InvalidUUIDSkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1`).
		WithArgs(testUserID).
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), testUserID)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByRefreshToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userRowColumns).
		AddRow(testUserID, "alice", "a@x.com", "hash", "rt", time.Now(), nil, nil, time.Now())
	mock.ExpectQuery(`WHERE\s+refresh_token\s*=\s*\$1`).
		WithArgs("rt").
		WillReturnRows(rows)

	got, err := repo.GetByRefreshToken(context.Background(), "rt")
	if err != nil {
		t.Fatalf("GetByRefreshToken error: %v", err)
	}
	if got.ID != testUserID {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestSetRefreshToken(t *testing.T) {
	exp := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	q := `(?s)^UPDATE\s+users\s+SET\s+refresh_token\s*=\s*\$2,\s*refresh_token_expires_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s*$`

	tests := []struct {
		name    string
		result  sql.Result
		wantErr error
	}{
		{"updated", sqlmock.NewResult(0, 1), nil},
		{"no such user", sqlmock.NewResult(0, 0), common.ErrorNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(q).WithArgs(testUserID, "rt", exp).WillReturnResult(tc.result)

			err := repo.SetRefreshToken(context.Background(), testUserID, "rt", exp)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestClearRefreshToken(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+refresh_token\s*=\s*NULL,.*WHERE\s+id\s*=\s*\$1\s+AND\s+refresh_token\s*=\s*\$2\s*$`

	tests := []struct {
		name   string
		result sql.Result
		want   bool
	}{
		{"cleared", sqlmock.NewResult(0, 1), true},
		{"token already replaced", sqlmock.NewResult(0, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(q).WithArgs(testUserID, "rt").WillReturnResult(tc.result)

			got, err := repo.ClearRefreshToken(context.Background(), testUserID, "rt")
			if err != nil {
				t.Fatalf("ClearRefreshToken error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestSetResetToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE\s+users\s+SET\s+reset_token\s*=\s*\$2`).
		WithArgs(testUserID, "reset", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetResetToken(context.Background(), testUserID, "reset", exp); err != nil {
		t.Fatalf("SetResetToken error: %v", err)
	}
}

func TestConsumeResetToken(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*reset_token\s*=\s*NULL,.*WHERE\s+reset_token\s*=\s*\$1\s+AND\s+reset_token_expires_at\s*>\s*\$3\s*$`

	t.Run("consumed", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("reset", "newhash", now).WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ConsumeResetToken(context.Background(), "reset", "newhash", now)
		if err != nil || !ok {
			t.Fatalf("got %v, %v", ok, err)
		}
	})

	t.Run("unknown or expired", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("reset", "newhash", now).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ConsumeResetToken(context.Background(), "reset", "newhash", now)
		if err != nil || ok {
			t.Fatalf("got %v, %v", ok, err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("reset", "newhash", now).WillReturnError(errors.New("db err"))

		_, err := repo.ConsumeResetToken(context.Background(), "reset", "newhash", now)
		if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
			t.Fatalf("expected wrapped db error, got %v", err)
		}
	})
}
