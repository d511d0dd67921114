// Package state persists small key-value state per watched root under the
// .lookout directory, so each worktree keeps its own independent state.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is the per-root local state as a generic map of key-value pairs.
type State map[string]interface{}

// filePath returns the state file location for a root.
func filePath(root string) string {
	return filepath.Join(root, ".lookout", "state.yml")
}

// Load loads the state for a root. A missing file yields an empty state.
func Load(root string) (State, error) {
	data, err := os.ReadFile(filePath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if s == nil {
		s = State{}
	}
	return s, nil
}

// Save writes the state for a root, creating the state directory if needed.
func Save(root string, s State) error {
	path := filePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s State) Get(key string) (interface{}, bool) {
	v, ok := s[key]
	return v, ok
}

// GetString returns the string value stored under key, or empty.
func (s State) GetString(key string) string {
	if v, ok := s[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// Set stores a value under key.
func (s State) Set(key string, value interface{}) {
	s[key] = value
}

// Update performs a load-modify-save cycle for a single key.
func Update(root, key string, value interface{}) error {
	s, err := Load(root)
	if err != nil {
		return err
	}
	s.Set(key, value)
	return Save(root, s)
}
