package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is the persisted preference
// A nil Auto means the user never chose, which behaves like auto mode
type State struct {
	Theme Theme `yaml:"theme,omitempty"`
	Auto  *bool `yaml:"auto,omitempty"`
}

// Store persists State between runs
type Store interface {
	Load() (State, error)
	Save(State) error
}

// FileStore keeps State in a YAML file
type FileStore struct {
	Path string
}

// DefaultStatePath returns theme.yaml under the user config directory
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "folio", "theme.yaml")
}

// Load reads the state; a missing file is an empty state
func (s FileStore) Load() (State, error) {
	var st State
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read theme state: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse theme state %s: %w", s.Path, err)
	}
	if st.Theme != "" && !st.Theme.Valid() {
		st.Theme = ""
	}
	return st, nil
}

// Save writes the state, creating the parent directory
func (s FileStore) Save(st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode theme state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write theme state: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store, used when persistence is off
type MemoryStore struct {
	State State
	Saves int
}

// Load returns the held state
func (m *MemoryStore) Load() (State, error) {
	return m.State, nil
}

// Save replaces the held state
func (m *MemoryStore) Save(st State) error {
	m.State = st
	m.Saves++
	return nil
}
