package internal

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultConfigPath is the default path to the config file
	DefaultAppName        = "fgen"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultUploadDir      = filepath.Join(DefaultConfigPath, "uploads")
	DefaultHistoryDBPath  = filepath.Join(DefaultConfigPath, "history.db")
	DefaultMainFolderName = "batch_output"

	// DefaultIgnoreFile lists scan exclusions in gitignore syntax
	DefaultIgnoreFile = ".fgenignore"
)

// DefaultOutputRoot returns the default root for generated trees (the user's
// desktop, falling back to the home directory when no Desktop exists).
func DefaultOutputRoot() string {
	home := getHomeDir()
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			// Last resort - use tmp directory
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
