package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/dashka/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var entryColumns = []string{"key", "value", "created_at", "updated_at"}

// openTestStore opens a file-backed store under t.TempDir.
func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "dashka.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestQueryGet(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT key, value, created_at, updated_at FROM kv WHERE key = \\?").
		WithArgs("dashka-layouts").
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow("dashka-layouts", `{"lg":[]}`, int64(1_700_000_000_000), int64(1_700_000_060_000)))

	e, err := queryGet(context.Background(), db, "dashka-layouts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(e.Value) != `{"lg":[]}` {
		t.Errorf("Value = %s", e.Value)
	}
	if e.UpdatedAt.Sub(e.CreatedAt) != time.Minute {
		t.Errorf("UpdatedAt - CreatedAt = %v, want 1m", e.UpdatedAt.Sub(e.CreatedAt))
	}
}

func TestQueryGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM kv WHERE key = \\?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	if _, err := queryGet(context.Background(), db, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want store.ErrNotFound", err)
	}
}

func TestQuerySet(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.UnixMilli(1_700_000_000_123)
	mock.ExpectExec("INSERT INTO kv .+ ON CONFLICT \\(key\\) DO UPDATE").
		WithArgs("k", `[1]`, now.UnixMilli(), now.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := querySet(context.Background(), db, "k", []byte(`[1]`), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuerySet_Error(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO kv").WillReturnError(errors.New("disk I/O error"))

	err := querySet(context.Background(), db, "k", []byte(`1`), time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestQueryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM kv WHERE key = \\?").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDelete(context.Background(), db, "gone"); err != nil {
		t.Fatalf("deleting an absent key should succeed: %v", err)
	}
}

func TestQueryList(t *testing.T) {
	db, mock := newMockDB(t)
	prefix := "backlog-widget-"
	mock.ExpectQuery("SELECT .+ FROM kv WHERE substr\\(key, 1, \\?\\) = \\? ORDER BY key").
		WithArgs(len(prefix), prefix).
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow("backlog-widget-a", `[]`, int64(1), int64(1)).
			AddRow("backlog-widget-b", `[]`, int64(2), int64(2)))

	got, err := queryList(context.Background(), db, prefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Key != "backlog-widget-b" {
		t.Errorf("queryList = %+v", got)
	}
}

func TestStore_RoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	if err := s.Set(ctx, "dashka-analytics-widgets", []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "dashka-analytics-widgets", []byte(`[{"id":"x"}]`)); err != nil {
		t.Fatalf("Set (replace): %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	e, err := reopened.Get(ctx, "dashka-analytics-widgets")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(e.Value) != `[{"id":"x"}]` {
		t.Errorf("Value = %s", e.Value)
	}
	if e.UpdatedAt.Before(e.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", e.UpdatedAt, e.CreatedAt)
	}
}

func TestStore_PrivateFile(t *testing.T) {
	_, path := openTestStore(t)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("database file mode = %v, want no group/other access", perm)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	for _, k := range []string{"backlog-widget-2", "backlog-widget-1", "dashka-layouts"} {
		if err := s.Set(ctx, k, []byte(`[]`)); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	got, err := s.List(ctx, "backlog-widget-")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Key != "backlog-widget-1" {
		t.Fatalf("List = %+v", got)
	}

	if err := s.Delete(ctx, "backlog-widget-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "backlog-widget-1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := s.Get(ctx, "backlog-widget-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	if err := s.Set(ctx, "dashka-layouts", []byte(`"before"`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.Set(ctx, "dashka-layouts", []byte(`"after"`)); err != nil {
			return err
		}
		if err := tx.Set(ctx, "dashka-analytics-widgets", []byte(`[]`)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTransaction error = %v, want boom", err)
	}

	e, err := s.Get(ctx, "dashka-layouts")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(e.Value) != `"before"` {
		t.Errorf("layouts = %s, want the pre-transaction value", e.Value)
	}
	if _, err := s.Get(ctx, "dashka-analytics-widgets"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rolled back insert is visible: %v", err)
	}
}

func TestStore_TransactionCommit(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.Set(ctx, "a", []byte(`1`)); err != nil {
			return err
		}
		return tx.RunInTransaction(ctx, func(inner store.Store) error {
			return inner.Set(ctx, "b", []byte(`2`))
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List returned %d entries, want 2", len(all))
	}
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	defer s.Close()
	if err := s.Set(ctx, "k", []byte(`true`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}
