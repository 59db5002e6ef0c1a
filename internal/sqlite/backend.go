// Package sqlite implements the SQLite storage backend for patches. One
// database file holds any number of stored patches; payloads are encoded
// by codec.go.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// databaseFile is the SQLite file name inside the data directory.
const databaseFile = "atlas.db"

// Compile-time interface check: Backend must implement patch.Store.
var _ patch.Store = (*Backend)(nil)

// Backend implements the Store interface on a single SQLite database. A
// backend starts detached; Attach opens or creates the database and
// Detach closes it. All operations between the two are safe for
// concurrent use.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   patch.Config
	db       *sql.DB
	log      *zap.Logger
}

// NewBackend creates a detached backend. A nil logger disables logging.
func NewBackend(log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{log: log}
}

// Attach opens the database under config.DataDir, creating the directory
// and schema as needed. Returns ErrAlreadyAttached if called while
// attached.
func (b *Backend) Attach(config patch.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return patch.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, databaseFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	for _, ddl := range append(append([]string(nil), schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("initializing schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	b.log.Info("attached sqlite store", zap.String("path", dbPath))
	return nil
}

// Detach closes the database. Idempotent; after Detach all operations
// return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.log.Info("detached sqlite store")
	return nil
}

// generateUUID generates a new UUID v7 for patch IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
