package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// State is UI state remembered between runs
type State struct {
	Theme       string `toml:"theme"`
	ShowSidebar bool   `toml:"show_sidebar"`
	CardWidth   int    `toml:"card_width"`
}

// DefaultCardWidth is the product card width in the grid
const DefaultCardWidth = 34

// NewState creates a new state with default values
func NewState() *State {
	return &State{
		Theme:       "shopforge",
		ShowSidebar: true,
		CardWidth:   DefaultCardWidth,
	}
}

// SaveState writes the state to a TOML file
func SaveState(filePath string, state *State) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create state file %s: %w", filePath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := toml.NewEncoder(writer).Encode(state); err != nil {
		return fmt.Errorf("failed to encode state to TOML file %s: %w", filePath, err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush state file %s: %w", filePath, err)
	}

	log.Debug("UI state saved", "file", filePath)
	return nil
}

// LoadState loads the state from a TOML file. A missing file yields defaults;
// keys absent from the file keep their default values.
func LoadState(filePath string) (*State, error) {
	state := NewState()
	if _, err := toml.DecodeFile(filePath, state); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to decode TOML from file %s: %w", filePath, err)
	}
	if state.CardWidth <= 0 {
		state.CardWidth = DefaultCardWidth
	}
	return state, nil
}
