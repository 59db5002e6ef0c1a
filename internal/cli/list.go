// List command for the atlas CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored patch IDs",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	ids, err := store.List()
	if err != nil {
		return fmt.Errorf("list patches: %w", err)
	}

	if flags.jsonMode {
		if ids == nil {
			ids = []string{}
		}
		return printJSON(cmd, ids)
	}

	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No patches stored")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
