// Delete command for the atlas CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <patch-id>",
		Short: "Delete a stored patch",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	patchID := args[0]

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	if err := store.Delete(patchID); err != nil {
		return fmt.Errorf("delete patch %s: %w", patchID, err)
	}

	if flags.jsonMode {
		return printJSON(cmd, map[string]string{"deleted": patchID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted patch: %s\n", patchID)
	return nil
}
