package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName = "sslyze"

	// dataDirEnvVar overrides the platform data directory.
	dataDirEnvVar = "SSLYZE_DATA_DIR"
)

// getDataDir returns the data directory for the current OS, following the
// XDG Base Directory specification on Linux/Unix. It does not create it.
func getDataDir() (string, error) {
	if dir := os.Getenv(dataDirEnvVar); dir != "" {
		return filepath.Abs(dir)
	}

	switch runtime.GOOS {
	case "windows":
		// %LOCALAPPDATA%\sslyze
		baseDir := os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			baseDir = os.Getenv("APPDATA")
		}
		if baseDir == "" {
			return "", fmt.Errorf("could not determine Windows data directory")
		}
		return filepath.Join(baseDir, appDirName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		return filepath.Join(homeDir, "Library", "Application Support", appDirName), nil

	default:
		// $XDG_DATA_HOME/sslyze > ~/.local/share/sslyze
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, appDirName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".local", "share", appDirName), nil
	}
}

// resolveResultsDir picks the results directory: the configured value when
// set, otherwise <data dir>/results. The result is absolute.
func resolveResultsDir(configured string) (string, error) {
	if configured == "" {
		dataDir, err := getDataDir()
		if err != nil {
			return "", err
		}
		configured = filepath.Join(dataDir, "results")
	}
	return filepath.Abs(configured)
}
