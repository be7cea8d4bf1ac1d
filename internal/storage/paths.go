package storage

import (
	"os"
	"path/filepath"
)

// PathManager resolves where shopforge keeps its local state
type PathManager struct {
	homeDir string
	dataDir string
}

// NewPathManager creates a path manager rooted at dataDir. An empty dataDir
// means ~/.shopforge.
func NewPathManager(dataDir string) *PathManager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir is not available
		homeDir = "."
	}

	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".shopforge")
	}

	return &PathManager{
		homeDir: homeDir,
		dataDir: dataDir,
	}
}

// DataDir returns the main data directory, creating it if needed
func (pm *PathManager) DataDir() (string, error) {
	if err := os.MkdirAll(pm.dataDir, 0755); err != nil {
		return "", err
	}
	return pm.dataDir, nil
}

// StateDir returns the directory holding one JSON file per persisted key
func (pm *PathManager) StateDir() (string, error) {
	return pm.subdir("state")
}

// DatabasePath returns the path for the libsql key/value database
func (pm *PathManager) DatabasePath() (string, error) {
	dir, err := pm.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shopforge.db"), nil
}

// UIStatePath returns the path for the TOML UI state file
func (pm *PathManager) UIStatePath() (string, error) {
	dir, err := pm.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ui.toml"), nil
}

// LogsDir returns the directory for log files
func (pm *PathManager) LogsDir() (string, error) {
	return pm.subdir("logs")
}

// HomeDir returns the user's home directory
func (pm *PathManager) HomeDir() string {
	return pm.homeDir
}

func (pm *PathManager) subdir(name string) (string, error) {
	dir, err := pm.DataDir()
	if err != nil {
		return "", err
	}
	sub := filepath.Join(dir, name)
	if err := os.MkdirAll(sub, 0755); err != nil {
		return "", err
	}
	return sub, nil
}
