package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPostgresStoreWithQuerier(mock), mock
}

func TestPostgresStoreGet(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(pgxmock.PgxPoolIface)
		wantValue string
		wantOK    bool
		wantErr   bool
	}{
		{
			name: "present",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM phrase_state")).
					WithArgs("k").
					WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`["api"]`))
			},
			wantValue: `["api"]`,
			wantOK:    true,
		},
		{
			name: "absent",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM phrase_state")).
					WithArgs("k").
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM phrase_state")).
					WithArgs("k").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.mockSetup(mock)

			v, ok, err := store.Get(context.Background(), "k")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get() error = %v, wantErr %v", err, tt.wantErr)
			}
			if v != tt.wantValue || ok != tt.wantOK {
				t.Errorf("Get() = %q, %v; want %q, %v", v, ok, tt.wantValue, tt.wantOK)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestPostgresStoreSet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO phrase_state")).
		WithArgs("durable", "v", (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO phrase_state")).
		WithArgs("session", "v", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := context.Background()
	if err := store.Set(ctx, "durable", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "session", "v", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStoreDelete(t *testing.T) {
	store, mock := newMockStore(t)

	keys := []string{"sphinx_highlight_phrases", "sphinx_highlight_terms"}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM phrase_state WHERE key = ANY($1)")).
		WithArgs(keys).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	if err := store.Delete(context.Background(), keys...); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// No keys issues no statement
	if err := store.Delete(context.Background()); err != nil {
		t.Fatalf("empty Delete failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS phrase_state")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
