// Package sqlite provides the public API for the SQLite patch store.
// It exposes the factory function while keeping the implementation
// internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/terrapatch/internal/sqlite"
	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// NewBackend creates a new SQLite store instance. The store is not
// attached; call Attach with a Config to initialize. A nil logger
// disables logging.
//
// Example:
//
//	store := sqlite.NewBackend(nil)
//	err := store.Attach(patch.Config{
//	    Backend: patch.BackendSQLite,
//	    DataDir: ".terrapatch",
//	})
//	defer store.Detach()
func NewBackend(log *zap.Logger) patch.Store {
	return sqlite.NewBackend(log)
}
