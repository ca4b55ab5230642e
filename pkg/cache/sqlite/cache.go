package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeeves-ai/jeeves/pkg/models"
)

// Cache is an exact-match response cache backed by SQLite. Entries past
// their TTL are treated as absent on lookup and overwritten on the next
// write to the same key; there is no background sweeper.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	request_hash TEXT NOT NULL,
	model TEXT NOT NULL,
	response BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER NOT NULL,
	PRIMARY KEY (request_hash, model)
);
`

// New creates a Cache with the given database path and default TTL.
func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// HashRequest computes a SHA-256 digest over the normalized prompt, model,
// and generation parameters. Requests that differ only in whitespace around
// the prompt share a key; requests with different parameters never do.
func HashRequest(req models.Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", req.Model, req.NormalizedPrompt())
	if req.MaxTokens != nil {
		fmt.Fprintf(h, "max_tokens=%d\x00", *req.MaxTokens)
	}
	if req.Temperature != nil {
		fmt.Fprintf(h, "temperature=%g\x00", *req.Temperature)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get retrieves a cached response. Returns false if not found or expired.
func (c *Cache) Get(requestHash, model string) ([]byte, bool) {
	var response []byte
	var createdAt time.Time
	var ttlSeconds int64

	err := c.db.QueryRow(
		`SELECT response, created_at, ttl_seconds FROM cache_entries WHERE request_hash = ? AND model = ?`,
		requestHash, model,
	).Scan(&response, &createdAt, &ttlSeconds)

	if err != nil {
		c.misses.Add(1)
		return nil, false
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if time.Since(createdAt) > ttl {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return response, true
}

// Put stores a response in the cache, replacing any previous entry for the
// same key.
func (c *Cache) Put(requestHash, model string, response []byte) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (request_hash, model, response, created_at, ttl_seconds)
		 VALUES (?, ?, ?, ?, ?)`,
		requestHash, model, response, time.Now().UTC(), int64(c.ttl.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Stats returns cache performance metrics.
func (c *Cache) Stats() (models.CacheStats, error) {
	var count int64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{
		Entries: count,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}, nil
}

// Clear removes cache entries. If expiredOnly is true, only expired entries
// are removed.
func (c *Cache) Clear(expiredOnly bool) error {
	var query string
	if expiredOnly {
		query = `DELETE FROM cache_entries WHERE (julianday('now') - julianday(created_at)) * 86400 > ttl_seconds`
	} else {
		query = `DELETE FROM cache_entries`
	}
	_, err := c.db.Exec(query)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
