// Package visibility tracks per-choice show/hide state and visited entries
// for a single reading session. No I/O; one Manager per session.
package visibility

import (
	"sort"

	"github.com/example/gamebook/internal/models"
)

// Manager holds the resolved visibility of choice targets and the visited set.
// It is not safe for concurrent use; the owning session serialises access.
type Manager struct {
	state   map[string]bool
	visited map[string]struct{}
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		state:   make(map[string]bool),
		visited: make(map[string]struct{}),
	}
}

// InitializeVisitedEntries replaces the visited set.
func (m *Manager) InitializeVisitedEntries(ids []string) {
	m.visited = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m.visited[id] = struct{}{}
	}
}

// AddVisitedEntry marks id as visited.
func (m *Manager) AddVisitedEntry(id string) {
	m.visited[id] = struct{}{}
}

// HasVisitedEntry reports whether id has been visited this session.
func (m *Manager) HasVisitedEntry(id string) bool {
	_, ok := m.visited[id]
	return ok
}

// VisitedEntries returns the visited set in sorted order.
func (m *Manager) VisitedEntries() []string {
	ids := make([]string, 0, len(m.visited))
	for id := range m.visited {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EvaluateVisibility resolves whether choice is shown given the last chosen target.
// Hide is checked before show, so a choice both rules fire for is hidden.
// When neither rule fires the previously recorded value is kept, falling back
// to the choice's startVisible flag.
func (m *Manager) EvaluateVisibility(choice models.Choice, lastChosenTarget string) bool {
	if choice.Visibility == nil {
		return true
	}

	if states := choice.Visibility.States; states != nil {
		if states.Hide != nil && states.Hide.Rule().Fires(lastChosenTarget) {
			m.state[choice.Target] = false
			return false
		}
		if states.Show != nil && states.Show.Rule().Fires(lastChosenTarget) {
			m.state[choice.Target] = true
			return true
		}
	}

	if v, ok := m.state[choice.Target]; ok {
		return v
	}
	return choice.Visibility.IsStartVisible()
}

// ApplyHints records requirement side effects. Hidden ids win over visible ones.
func (m *Manager) ApplyHints(hidden, visible []string) {
	for _, id := range visible {
		m.state[id] = true
	}
	for _, id := range hidden {
		m.state[id] = false
	}
}

// ResetState clears both the visibility map and the visited set.
func (m *Manager) ResetState() {
	clear(m.state)
	clear(m.visited)
}

// GetVisibilityState returns the recorded visibility for a target, true if unset.
func (m *Manager) GetVisibilityState(targetID string) bool {
	if v, ok := m.state[targetID]; ok {
		return v
	}
	return true
}
