// Init command for the atlas CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize atlas storage",
		Long:  "Create configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	// PersistentPreRunE already created the config directory and wrote a
	// default config.yaml if one was missing. What remains is bringing up
	// the backend once so the data directory and schema exist.
	store, err := attachStore()
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := store.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Atlas initialized successfully")
	return nil
}
