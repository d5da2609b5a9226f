// Package store persists JSON documents in SQLite or PostgreSQL and exposes
// the site content document through Client.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/eringen/artistsite/feed"
	"github.com/eringen/artistsite/logging"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Document is one stored row.
type Document struct {
	Collection string
	ID         string
	Body       []byte
	Version    int64
	UpdatedAt  time.Time
}

// Store wraps a SQL database holding versioned JSON documents. Every
// successful write is published on the store's feed.
type Store struct {
	db      *sql.DB
	driver  string
	bus     feed.Bus
	ownsBus bool
	log     *logging.Logger
	now     func() time.Time
}

type Option func(*Store)

// WithFeed publishes writes on bus instead of a private in-process bus.
// The store does not close a bus passed this way.
func WithFeed(bus feed.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

func WithLogger(log *logging.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Key returns the feed key of a document.
func Key(collection, id string) string {
	return collection + "/" + id
}

// Open connects to the database named by driver and dsn and runs the schema
// migration. For SQLite, dsn is a file path whose directory is created if
// missing.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		db, err = openSQLite(dsn)
	case DriverPostgres, "pgx":
		driver = DriverPostgres
		db, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, db, driver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database.
func New(ctx context.Context, db *sql.DB, driver string, opts ...Option) (*Store, error) {
	s := &Store{db: db, driver: driver, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.bus == nil {
		s.bus = feed.NewLocalBus()
		s.ownsBus = true
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the public site read while the admin writes; busy_timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		_ = db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Close closes the database and, when the store created it, the feed.
func (s *Store) Close() error {
	if s.ownsBus {
		_ = s.bus.Close()
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	versionType := "INTEGER"
	if s.driver == DriverPostgres {
		versionType = "BIGINT"
	}
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    body TEXT NOT NULL,
    version `+versionType+` NOT NULL DEFAULT 1,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (collection, id)
)`)
	if err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) get(ctx context.Context, q queryer, collection, id string, lock bool) (Document, error) {
	query := `SELECT body, version, updated_at FROM documents WHERE collection = ? AND id = ?`
	if lock && s.driver == DriverPostgres {
		query += ` FOR UPDATE`
	}
	var (
		body    string
		version int64
		updated string
	)
	err := q.QueryRowContext(ctx, s.rebind(query), collection, id).Scan(&body, &version, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	ts, _ := time.Parse(time.RFC3339Nano, updated)
	return Document{Collection: collection, ID: id, Body: []byte(body), Version: version, UpdatedAt: ts}, nil
}

// Get returns the document or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	return s.get(ctx, s.db, collection, id, false)
}

const upsertQuery = `INSERT INTO documents (collection, id, body, version, updated_at) VALUES (?, ?, ?, 1, ?)
ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, version = documents.version + 1, updated_at = excluded.updated_at
RETURNING version`

// Put overwrites the document with body and returns the new version.
func (s *Store) Put(ctx context.Context, collection, id string, body []byte) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, s.rebind(upsertQuery), collection, id, string(body), s.stamp()).Scan(&version)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, collection, id, body, version)
	return version, nil
}

// PutIfVersion overwrites the document only if its version still equals
// base. A base of 0 means the document must not exist yet.
func (s *Store) PutIfVersion(ctx context.Context, collection, id string, body []byte, base int64) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if base == 0 {
		res, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO documents (collection, id, body, version, updated_at) VALUES (?, ?, ?, 1, ?)
ON CONFLICT (collection, id) DO NOTHING`), collection, id, string(body), s.stamp())
	} else {
		res, err = s.db.ExecContext(ctx, s.rebind(`UPDATE documents SET body = ?, version = version + 1, updated_at = ?
WHERE collection = ? AND id = ? AND version = ?`), string(body), s.stamp(), collection, id, base)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrStaleVersion
	}
	s.publish(ctx, collection, id, body, base+1)
	return base + 1, nil
}

// UpdateFunc computes a new body from the current one. Returning a nil body
// leaves the document untouched.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Update runs fn against the current document inside a transaction and
// writes its result. It returns the version after the call.
func (s *Store) Update(ctx context.Context, collection, id string, fn UpdateFunc) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	doc, err := s.get(ctx, tx, collection, id, true)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	next, err := fn(doc.Body, exists)
	if err != nil {
		return 0, err
	}
	if next == nil {
		return doc.Version, tx.Commit()
	}
	var version int64
	if err := tx.QueryRowContext(ctx, s.rebind(upsertQuery), collection, id, string(next), s.stamp()).Scan(&version); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.publish(ctx, collection, id, next, version)
	return version, nil
}

// Subscribe registers h for changes of one document. Changes start with
// the next write; callers that need the current state read it after
// subscribing and Offer it to the returned subscription.
func (s *Store) Subscribe(collection, id string, h feed.Handler) *feed.Subscription {
	return s.bus.Subscribe(Key(collection, id), h)
}

func (s *Store) publish(ctx context.Context, collection, id string, body []byte, version int64) {
	c := feed.Change{Key: Key(collection, id), Body: body, Exists: true, Version: version}
	if err := s.bus.Publish(ctx, c); err != nil {
		s.log.Warn("publish document change", "key", c.Key, "version", version, "error", err)
	}
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
