// Package store keeps the library of named maps in a SQLite file.
//
// Each saved map occupies one slot keyed map_<unix nanos>. The built-in
// default map is an implicit extra slot that is never written.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/metrics"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// ErrMapNotFound is returned for an unknown slot key.
var ErrMapNotFound = errors.New("map not found")

// DefaultKey addresses the built-in map.
const DefaultKey = "default"

// KeyPrefix starts every saved slot key.
const KeyPrefix = "map_"

// Entry describes one slot in the library.
type Entry struct {
	Key     string
	Name    string
	SavedAt time.Time // zero for the default slot
}

// Store is an open map library.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
	last int64
}

// Open opens or creates the library at path. ":memory:" gives a private
// in-memory library.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// A single connection keeps ":memory:" coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	debug.Log("store: opened %s", path)
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) nextKey() (string, time.Time) {
	now := s.now()
	n := now.UnixNano()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return fmt.Sprintf("%s%d", KeyPrefix, n), now
}

// Save writes the map into a new slot under name.
func (s *Store) Save(ctx context.Context, name string, m *model.Map) (Entry, error) {
	defer metrics.Timer(metrics.StoreQuery)()
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, errors.New("map name is required")
	}
	if err := m.Validate(); err != nil {
		return Entry{}, fmt.Errorf("save %q: %w", name, err)
	}

	doc := &model.Map{Name: name, Stages: m.Stages}
	data, err := model.Encode(doc)
	if err != nil {
		return Entry{}, err
	}

	key, at := s.nextKey()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO maps (key, name, data, saved_at) VALUES (?, ?, ?, ?)`,
		key, name, string(data), at.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("save %q: %w", name, err)
	}
	debug.Log("store: saved %s (%q, %d bytes)", key, name, len(data))
	return Entry{Key: key, Name: name, SavedAt: at}, nil
}

// List returns the default slot followed by saved maps, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	defer metrics.Timer(metrics.StoreQuery)()
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, name, saved_at FROM maps ORDER BY saved_at DESC, key DESC`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	entries := []Entry{{Key: DefaultKey, Name: model.DefaultMapName}}
	for rows.Next() {
		var e Entry
		var savedAt int64
		if err := rows.Scan(&e.Key, &e.Name, &savedAt); err != nil {
			return nil, fmt.Errorf("list maps: %w", err)
		}
		e.SavedAt = time.Unix(0, savedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return entries, nil
}

// Raw returns the stored document of a slot without decoding it.
func (s *Store) Raw(ctx context.Context, key string) ([]byte, error) {
	if key == DefaultKey {
		return model.Encode(model.DefaultMap())
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM maps WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", key, ErrMapNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return []byte(data), nil
}

// Load decodes a slot. A slot whose document no longer parses yields an
// error wrapping model.ErrMalformedMap and no map.
func (s *Store) Load(ctx context.Context, key string) (*model.Map, error) {
	defer metrics.Timer(metrics.StoreQuery)()
	if key == DefaultKey {
		return model.DefaultMap(), nil
	}
	data, err := s.Raw(ctx, key)
	if err != nil {
		return nil, err
	}
	m, err := model.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return m, nil
}

// Import stores a raw document after checking it decodes.
func (s *Store) Import(ctx context.Context, name string, data []byte) (Entry, error) {
	m, err := model.Decode(data)
	if err != nil {
		return Entry{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = m.Name
	}
	return s.Save(ctx, name, m)
}

// Delete removes a saved slot. The default slot cannot be deleted.
func (s *Store) Delete(ctx context.Context, key string) error {
	defer metrics.Timer(metrics.StoreQuery)()
	if key == DefaultKey {
		return errors.New("the default map cannot be deleted")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM maps WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %q: %w", key, ErrMapNotFound)
	}
	return nil
}
