// Package paths locates the configuration and data directories the atlas
// CLI works with.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "terrapatch"

// DefaultDataDirName is the directory created under the working
// directory when nothing else names a data location.
const DefaultDataDirName = ".terrapatch-db"

// Directory override variables.
const (
	EnvConfigDir = "TERRAPATCH_CONFIG_DIR"
	EnvDataDir   = "TERRAPATCH_DATA_DIR"
)

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/terrapatch (or ~/.config/terrapatch) on Linux, the
// platform configuration root elsewhere.
func DefaultConfigDir() (string, error) {
	return userAppDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory:
// $XDG_DATA_HOME/terrapatch (or ~/.local/share/terrapatch) on Linux, the
// platform configuration root elsewhere.
func DefaultDataDir() (string, error) {
	return userAppDir("XDG_DATA_HOME", ".local", "share")
}

// userAppDir appends the application directory to the base named by the
// given XDG variable, falling back to homeFallback under the home
// directory when the variable is unset. Off Linux both defaults collapse
// into os.UserConfigDir, which is ~/Library/Application Support on macOS
// and %AppData% on Windows.
func userAppDir(xdgVar string, homeFallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appDirName), nil
	}
	if base := os.Getenv(xdgVar); base != "" {
		return filepath.Join(base, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	parts := append(append([]string{home}, homeFallback...), appDirName)
	return filepath.Join(parts...), nil
}

// ResolveConfigDir picks the configuration directory. An explicit flag
// wins, then TERRAPATCH_CONFIG_DIR, then the platform default; explicit
// choices are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	for _, dir := range []string{flag, os.Getenv(EnvConfigDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory. An explicit flag wins, then
// the config file value, then TERRAPATCH_DATA_DIR; with no override the
// store lives in .terrapatch-db under the working directory.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
