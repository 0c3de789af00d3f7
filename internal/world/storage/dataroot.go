package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
)

// ErrNoDataDir is returned when no platform data directory can be determined.
var ErrNoDataDir = errors.New("no platform data directory available")

// DataRoot resolves the per-user data directory:
// $XDG_DATA_HOME, %APPDATA% on Windows, ~/Library/Application Support on
// macOS, and ~/.local/share elsewhere.
func DataRoot() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d, nil
	}
	if runtime.GOOS == "windows" {
		if d := os.Getenv("APPDATA"); d != "" {
			return d, nil
		}
		return "", ErrNoDataDir
	}

	home, err := homedir.Dir()
	if err != nil || home == "" {
		return "", ErrNoDataDir
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	return filepath.Join(home, ".local", "share"), nil
}
