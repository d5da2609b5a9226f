package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/artistsite/feed"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "data", "site.db"), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(context.Background(), "site", "content"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPutBumpsVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		v, err := s.Put(ctx, "site", "content", []byte(`{"n":1}`))
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		if v != want {
			t.Fatalf("version = %d, want %d", v, want)
		}
	}
	doc, err := s.Get(ctx, "site", "content")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Version != 3 || string(doc.Body) != `{"n":1}` {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.UpdatedAt.IsZero() || time.Since(doc.UpdatedAt) > time.Minute {
		t.Errorf("updated_at = %v", doc.UpdatedAt)
	}
}

func TestPutIfVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v, err := s.PutIfVersion(ctx, "site", "content", []byte(`{"a":1}`), 0)
	if err != nil || v != 1 {
		t.Fatalf("create: v=%d err=%v", v, err)
	}
	if _, err := s.PutIfVersion(ctx, "site", "content", []byte(`{"a":2}`), 0); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("second create err = %v, want ErrStaleVersion", err)
	}
	if _, err := s.PutIfVersion(ctx, "site", "content", []byte(`{"a":2}`), 1); err != nil {
		t.Fatalf("update at base 1: %v", err)
	}
	if _, err := s.PutIfVersion(ctx, "site", "content", []byte(`{"a":3}`), 1); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("stale update err = %v, want ErrStaleVersion", err)
	}
	doc, _ := s.Get(ctx, "site", "content")
	if string(doc.Body) != `{"a":2}` || doc.Version != 2 {
		t.Fatalf("doc = %s v%d", doc.Body, doc.Version)
	}
}

func TestUpdateSkipsNilBody(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "site", "content", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	v, err := s.Update(ctx, "site", "content", func(cur []byte, exists bool) ([]byte, error) {
		if !exists || string(cur) != `{}` {
			t.Errorf("fn got %q exists=%v", cur, exists)
		}
		return nil, nil
	})
	if err != nil || v != 1 {
		t.Fatalf("Update: v=%d err=%v", v, err)
	}

	boom := errors.New("boom")
	if _, err := s.Update(ctx, "site", "content", func([]byte, bool) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestWritesArePublished(t *testing.T) {
	bus := feed.NewLocalBus()
	defer bus.Close()
	s := openTestStore(t, WithFeed(bus))

	got := make(chan feed.Change, 4)
	sub := s.Subscribe("site", "content", func(c feed.Change) { got <- c })
	defer sub.Cancel()

	if _, err := s.Put(context.Background(), "site", "content", []byte(`{"x":1}`)); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-got:
		if c.Version != 1 || string(c.Body) != `{"x":1}` || !c.Exists {
			t.Fatalf("change = %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change published")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	if got := pg.rebind(`SELECT a FROM t WHERE x = ? AND y = ?`); got != `SELECT a FROM t WHERE x = $1 AND y = $2` {
		t.Fatalf("rebind = %q", got)
	}
	lite := &Store{driver: DriverSQLite}
	if got := lite.rebind(`x = ?`); got != `x = ?` {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
