package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "trtool"

func GetTrtoolDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(appData, appName)
	case "darwin": // MacOS
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appName)
	default: // Linux
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appName)
	}
}

// Returns directory for state files (history database)
func GetStateDir() string {
	if runtime.GOOS == "linux" {
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			home, _ := os.UserHomeDir()
			stateHome = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(stateHome, appName)
	}
	return GetTrtoolDir()
}

// Returns directory for logs
func GetLogsDir() string {
	return filepath.Join(GetStateDir(), "logs")
}

// GetConfigPath returns the per-user config file consulted when no
// config.toml exists in the working directory.
func GetConfigPath() string {
	return filepath.Join(GetTrtoolDir(), "config.toml")
}

// GetHistoryDBPath returns the path of the history database
func GetHistoryDBPath() string {
	return filepath.Join(GetStateDir(), "history.db")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{GetTrtoolDir(), GetStateDir(), GetLogsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
