// Shared helpers for atlas CLI commands.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
	"github.com/mesh-intelligence/terrapatch/pkg/sqlite"
)

// attachStore resolves the data directory, creates a SQLite store, and
// attaches it. The caller must defer store.Detach().
func attachStore() (patch.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	store := sqlite.NewBackend(newLogger())
	cfg := patch.Config{
		Backend: patch.BackendSQLite,
		DataDir: dataDir,
	}
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return store, nil
}

// printJSON writes v to the command's stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
