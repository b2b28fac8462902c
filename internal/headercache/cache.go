// Package headercache memoizes parsed plugin header results in SQLite,
// keyed by file identity, so repeated is-master/masters queries against
// unchanged files avoid re-parsing.
package headercache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loadctl/internal/domain"

	_ "modernc.org/sqlite"
)

// Cache is a SQLite-backed domain.HeaderCache.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the header cache database at path and ensures its
// schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening header cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS header_cache (
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			mod_time INTEGER NOT NULL,
			is_master INTEGER NOT NULL,
			masters TEXT NOT NULL,
			parsed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY(path, size, mod_time)
		)
	`)
	return err
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

type entry struct {
	isMaster bool
	masters  []string
}

func (e entry) IsMaster() bool    { return e.isMaster }
func (e entry) Masters() []string { return e.masters }

var _ domain.HeaderCache = (*Cache)(nil)

// Lookup returns the cached header for (path, size, modTime), if present.
func (c *Cache) Lookup(path string, size int64, modTime int64) (domain.Header, bool, error) {
	var isMaster int
	var mastersJSON string
	err := c.db.QueryRow(`
		SELECT is_master, masters FROM header_cache
		WHERE path = ? AND size = ? AND mod_time = ?
	`, path, size, modTime).Scan(&isMaster, &mastersJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying header cache: %w", err)
	}

	var masters []string
	if err := json.Unmarshal([]byte(mastersJSON), &masters); err != nil {
		return nil, false, fmt.Errorf("decoding cached masters: %w", err)
	}

	return entry{isMaster: isMaster != 0, masters: masters}, true, nil
}

// Store records a parsed header for (path, size, modTime), replacing any
// prior entry for that key.
func (c *Cache) Store(path string, size int64, modTime int64, h domain.Header) error {
	mastersJSON, err := json.Marshal(h.Masters())
	if err != nil {
		return fmt.Errorf("encoding masters: %w", err)
	}

	isMaster := 0
	if h.IsMaster() {
		isMaster = 1
	}

	_, err = c.db.Exec(`
		INSERT INTO header_cache (path, size, mod_time, is_master, masters, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path, size, mod_time) DO UPDATE SET
			is_master = excluded.is_master,
			masters = excluded.masters,
			parsed_at = excluded.parsed_at
	`, path, size, modTime, isMaster, string(mastersJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing header cache entry: %w", err)
	}
	return nil
}
