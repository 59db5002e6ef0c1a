// Version command for the atlas CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/terrapatch/pkg/terrapatch"
)

const modulePath = "github.com/mesh-intelligence/terrapatch"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the atlas version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return printJSON(cmd, map[string]string{
					"version": terrapatch.Version,
					"module":  modulePath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "atlas %s\nmodule: %s\n", terrapatch.Version, modulePath)
			return nil
		},
	}
}
