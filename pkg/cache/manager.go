// Package cache keeps upstream HTTP responses in an sqlite database inside the
// configured cache directory.
package cache

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type entry struct {
	body      []byte
	fetchedAt time.Time
}

type Manager struct {
	db  *sql.DB
	mu  sync.Mutex
	enc *zstd.Encoder
	dec *zstd.Decoder
	now func() time.Time
}

// Open creates the parent directory when needed and initialises the schema.
func Open(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "error creating cache directory")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening cache database")
	}
	if _, err := db.Exec(buildCreateResponsesTable()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error init cache database")
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error creating zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error creating zstd decoder")
	}

	return &Manager{
		db:  db,
		enc: enc,
		dec: dec,
		now: time.Now,
	}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dec.Close()
	if err := m.enc.Close(); err != nil {
		m.db.Close()
		return err
	}
	return m.db.Close()
}

// Get returns the body stored for url. Entries older than ttl are reported as
// missing; a zero ttl never expires.
func (m *Manager) Get(ctx context.Context, url string, ttl time.Duration) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	query, read := buildSelectResponseCommand()
	rows, err := m.db.QueryContext(ctx, query, url)
	if err != nil {
		return nil, false, errors.Wrap(err, "error reading cache")
	}
	e, found, err := read(rows)
	if err != nil {
		return nil, false, errors.Wrap(err, "error reading cache")
	}
	if !found {
		return nil, false, nil
	}
	if ttl > 0 && m.now().Sub(e.fetchedAt) > ttl {
		return nil, false, nil
	}

	body, err := m.dec.DecodeAll(e.body, nil)
	if err != nil {
		return nil, false, errors.Wrapf(err, "error decoding cached response for %s", url)
	}
	return body, true, nil
}

func (m *Manager) Put(ctx context.Context, url string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	compressed := m.enc.EncodeAll(body, nil)
	_, err := m.db.ExecContext(ctx, buildUpsertResponseCommand(), url, compressed, m.now().UnixNano())
	if err != nil {
		return errors.Wrap(err, "error updating cache")
	}
	return nil
}
