// Package cli implements the atlas command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/terrapatch/internal/paths"
	"github.com/mesh-intelligence/terrapatch/pkg/terrapatch"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

var flags rootFlags

// configDataDir holds the data_dir value loaded from config.yaml. Set by
// the root PersistentPreRunE so all subcommands can use it.
var configDataDir string

// NewRootCmd creates the top-level "atlas" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "atlas",
		Short:   "Atlas manages stored spatio-temporal patches",
		Long:    "Atlas creates, inspects, and deletes patches held in a local\nSQLite store. A patch bundles raster features, geometry collections,\ntimestamps, a footprint, and free-form metadata under one ID.",
		Version: terrapatch.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := resolveConfigDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			configDataDir = cfg.GetString(cfgKeyDataDir)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.terrapatch-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCreateCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newDeleteCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

// resolveConfigDir returns the configuration directory following the
// precedence chain flag > TERRAPATCH_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flags.configDir)
}

// resolveDataDir returns the data directory following the precedence
// chain flag > config.yaml data_dir > TERRAPATCH_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flags.dataDir, configDataDir)
}

// newLogger builds the CLI logger. Structured output goes to stderr and
// stays quiet unless something is wrong.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
