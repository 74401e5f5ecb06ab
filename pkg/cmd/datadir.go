package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
)

// defaultDataDirName is the directory created under the platform's user
// data directory to hold the persistent index.
const defaultDataDirName = "sgrep"

// dataDir resolves the sgrep data directory: configured explicitly, or
// "sgrep" under the platform's user data directory otherwise
// (~/.local/share, ~/Library/Application Support on macOS,
// ~/AppData/Roaming on Windows). The directory and its "index"
// subdirectory are created if absent.
func dataDir(configured string) (string, error) {
	dir := configured

	if dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}

		base := filepath.Join(home, ".local", "share")

		switch runtime.GOOS {
		case "darwin":
			base = filepath.Join(home, "Library", "Application Support")
		case "windows":
			base = filepath.Join(home, "AppData", "Roaming")
		}

		dir = filepath.Join(base, defaultDataDirName)
	} else {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return "", fmt.Errorf("expand data directory %q: %w", dir, err)
		}

		dir = expanded
	}

	if err := ensureDir(dir); err != nil {
		return "", err
	}

	if err := ensureDir(indexDir(dir)); err != nil {
		return "", err
	}

	return dir, nil
}

// indexDir returns the index store's path within a data directory.
func indexDir(dataDir string) string {
	return filepath.Join(dataDir, "index")
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(path, 0o750)
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	case !info.IsDir():
		return fmt.Errorf("%s exists and is not a directory", path)
	default:
		return nil
	}
}
