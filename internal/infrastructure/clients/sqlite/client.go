package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/dermatologica/assistant/pkg/config"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// Client owns the single embedded database handle shared by every adapter.
// Open is idempotent and safe to call concurrently: the first caller opens
// the file, later callers observe the same handle (or the same failure).
type Client struct {
	cfg *config.DatabaseConfig

	mu     sync.Mutex
	opened bool
	db     *sql.DB
	err    error
}

// NewClient creates a client without touching the filesystem. Open performs
// the actual work.
func NewClient(cfg *config.DatabaseConfig) *Client {
	return &Client{cfg: cfg}
}

// Open opens the database file, creating parent directories as needed.
// Single-flight: concurrent callers serialize on the guard and reuse the
// first outcome.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return c.err
	}
	c.opened = true
	c.err = c.open(ctx)
	return c.err
}

func (c *Client) open(ctx context.Context) error {
	if dir := filepath.Dir(c.cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewStorageUnavailableError("failed to create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+c.cfg.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return apperrors.NewStorageUnavailableError("failed to open database", err)
	}

	// modernc sqlite is a single-writer store; one connection avoids
	// SQLITE_BUSY under interleaved writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return apperrors.NewStorageUnavailableError("failed to verify database connection", err)
	}

	c.db = db
	return nil
}

// DB returns the underlying database connection. Open must have succeeded.
func (c *Client) DB() *sql.DB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
