package storage

import "fmt"

// Storage drivers
const (
	DriverFile   = "file"
	DriverLibSQL = "libsql"
	DriverMemory = "memory"
)

// Open creates the store selected by driver, rooted at the path manager's
// data directory
func Open(driver string, pm *PathManager) (Store, error) {
	switch driver {
	case "", DriverFile:
		dir, err := pm.StateDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state directory: %w", err)
		}
		return NewFileStore(dir)
	case DriverLibSQL:
		dbPath, err := pm.DatabasePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		return NewLibSQLStore(dbPath)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
