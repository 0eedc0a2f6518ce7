// Package cache stores compiled definition tables in a sqlite database,
// keyed by the hash of the source text together with the extra builtin
// names it was compiled against.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/asc/internal/ir"
)

const schema = `CREATE TABLE IF NOT EXISTS units (
	hash       TEXT PRIMARY KEY,
	build_id   TEXT NOT NULL,
	ir         BLOB NOT NULL,
	created_at INTEGER NOT NULL
)`

// Entry is one cached compilation.
type Entry struct {
	Hash      string
	BuildID   string
	IR        ir.Defs
	CreatedAt time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	// One writer at a time; sqlite locks the whole file anyway
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising cache %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// Hash is the key a compilation of source under the extra root-scope names
// builtins is stored under. The order of builtins and repeated names do not
// matter; the resolved names do.
func Hash(source string, builtins []string) string {
	names := slices.Clone(builtins)
	slices.Sort(names)
	names = slices.Compact(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	// Names never contain NUL, so a second one ends the list
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up the compilation of source under builtins.
func (c *Cache) Get(ctx context.Context, source string, builtins []string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.db == nil {
		return Entry{}, false, fmt.Errorf("cache is closed")
	}

	e := Entry{Hash: Hash(source, builtins)}
	var blob []byte
	var created int64
	row := c.db.QueryRowContext(ctx, `SELECT build_id, ir, created_at FROM units WHERE hash = ?`, e.Hash)
	if err := row.Scan(&e.BuildID, &blob, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("reading cache: %w", err)
	}

	defs, err := ir.DecodeProto(blob)
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache entry %s: %w", e.Hash, err)
	}
	e.IR = defs
	e.CreatedAt = time.Unix(created, 0)
	return e, true, nil
}

// Put stores defs as the compilation of source under builtins with a fresh
// build id, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, source string, builtins []string, defs ir.Defs) (Entry, error) {
	blob, err := ir.EncodeProto(defs)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return Entry{}, fmt.Errorf("cache is closed")
	}

	e := Entry{
		Hash:      Hash(source, builtins),
		BuildID:   uuid.NewString(),
		IR:        defs,
		CreatedAt: time.Unix(time.Now().Unix(), 0),
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO units (hash, build_id, ir, created_at) VALUES (?, ?, ?, ?)`,
		e.Hash, e.BuildID, blob, e.CreatedAt.Unix())
	if err != nil {
		return Entry{}, fmt.Errorf("writing cache: %w", err)
	}
	return e, nil
}

// Len returns the number of cached units.
func (c *Cache) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.db == nil {
		return 0, fmt.Errorf("cache is closed")
	}
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
