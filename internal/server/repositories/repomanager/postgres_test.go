package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/itemkeeper/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var _ RepositoryManager = m
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{db: db}

	if _, ok := m.Users().(*users.PostgresRepository); !ok {
		t.Fatalf("Users() = %T", m.Users())
	}
	if _, ok := m.Items().(*items.PostgresRepository); !ok {
		t.Fatalf("Items() = %T", m.Items())
	}
}

func TestInMemoryManager_SharesRepositories(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	var _ RepositoryManager = m

	if m.Users() != m.Users() {
		t.Fatal("Users() must return the same store on every call")
	}
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{db: db}
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{db: db}
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestClose_ClosesPool(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectClose()

	m := &PostgresRepositoryManager{db: db}
	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenPostgres_GivesUpAfterRetries(t *testing.T) {
	orig := connectBackoff
	connectBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(1, retry.NewConstant(time.Millisecond))
	}
	defer func() { connectBackoff = orig }()

	_, err := OpenPostgres(context.Background(), "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	if err == nil {
		t.Fatal("expected ping error")
	}
}
