// Package state persists which batch locations finished, so an interrupted
// extract run can resume.
package state

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type State struct {
	Completed map[string]bool `json:"completed"`
}

type Manager struct {
	path  string
	state State
	mu    sync.Mutex
	log   zerolog.Logger
}

// NewManager loads path if it exists. A corrupt file is logged and replaced.
func NewManager(path string, log zerolog.Logger) (*Manager, error) {
	m := &Manager{
		path: path,
		state: State{
			Completed: make(map[string]bool),
		},
		log: log,
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(content, &m.state); err != nil || m.state.Completed == nil {
		log.Error().Err(err).Str("path", path).Msg("failed to parse state file, starting fresh")
		m.state.Completed = make(map[string]bool)
	}
	return m, nil
}

func (m *Manager) IsCompleted(location string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Completed[location]
}

// MarkCompleted records location and rewrites the state file.
func (m *Manager) MarkCompleted(location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Completed[location] = true
	return m.save()
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Completed)
}

// must be called with mu held
func (m *Manager) save() error {
	content, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, content, 0644)
}
