package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"rbformat/internal/record"
	"rbformat/internal/textutil"
)

const schema = `CREATE TABLE IF NOT EXISTS format_cache (
	hash       TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	output     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// OutputCache keeps formatted outputs keyed by a hash of the request. It is
// always backed by memory and, when a pool is given, by PostgreSQL.
type OutputCache struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string]string // key → formatted output
}

// NewOutputCache creates a cache. A nil pool keeps everything in memory.
func NewOutputCache(pool *pgxpool.Pool) *OutputCache {
	return &OutputCache{
		pool:   pool,
		memory: make(map[string]string),
	}
}

// Connect opens and pings a PostgreSQL pool.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// Key identifies one formatting request. Any change to the tab, language,
// line length or input gives a different key.
func Key(kind record.Kind, opts record.Options, input string) string {
	return textutil.Hash(string(kind) + "\x00" + string(opts.Language) + "\x00" +
		strconv.Itoa(opts.MaxLineLength) + "\x00" + input)
}

// EnsureSchema creates the cache table if it does not exist.
func (c *OutputCache) EnsureSchema(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	if _, err := c.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Get returns a cached output.
func (c *OutputCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	if v, ok := c.memory[key]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.pool == nil {
		return "", false
	}
	var out string
	err := c.pool.QueryRow(ctx, `SELECT output FROM format_cache WHERE hash = $1`, key).Scan(&out)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Err(err).Msg("Cache lookup failed")
		}
		return "", false
	}

	c.mu.Lock()
	c.memory[key] = out
	c.mu.Unlock()
	return out, true
}

// Set stores an output in memory and, if configured, in PostgreSQL.
func (c *OutputCache) Set(ctx context.Context, key string, kind record.Kind, output string) error {
	c.mu.Lock()
	c.memory[key] = output
	c.mu.Unlock()

	if c.pool == nil {
		return nil
	}
	_, err := c.pool.Exec(ctx, `INSERT INTO format_cache (hash, kind, output) VALUES ($1, $2, $3)
		ON CONFLICT (hash) DO UPDATE SET output = EXCLUDED.output, updated_at = now()`,
		key, string(kind), output)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Preload loads every stored output into memory.
func (c *OutputCache) Preload(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	rows, err := c.pool.Query(ctx, `SELECT hash, output FROM format_cache`)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	var hash, out string
	loaded := make(map[string]string)
	if _, err := pgx.ForEachRow(rows, []any{&hash, &out}, func() error {
		loaded[hash] = out
		return nil
	}); err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	for k, v := range loaded {
		c.memory[k] = v
	}
	c.mu.Unlock()

	log.Info().Int("count", len(loaded)).Msg("Preloaded output cache")
	return nil
}

// Len reports the number of outputs held in memory.
func (c *OutputCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
