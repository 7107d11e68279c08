package blacklist

import "sync"

// Mirror is a process-local copy of the shared blacklist, kept in memory for
// the hot-path listing check. The backend's own storage stays authoritative;
// the mirror only has to tolerate staleness. Writes come from one propagation
// consumer per process, reads from any caller thread.
type Mirror struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

// NewMirror creates an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{items: make(map[string]struct{})}
}

// Contains reports whether the item type is blacklisted.
func (m *Mirror) Contains(item string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[item]
	return ok
}

// Add applies a blacklist-add delta.
func (m *Mirror) Add(item string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item] = struct{}{}
}

// Remove applies a blacklist-remove delta.
func (m *Mirror) Remove(item string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, item)
}

// Replace swaps the mirror contents for an authoritative snapshot.
func (m *Mirror) Replace(items []string) {
	next := make(map[string]struct{}, len(items))
	for _, item := range items {
		next[item] = struct{}{}
	}
	m.mu.Lock()
	m.items = next
	m.mu.Unlock()
}

// Snapshot returns the mirrored items.
func (m *Mirror) Snapshot() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]string, 0, len(m.items))
	for item := range m.items {
		items = append(items, item)
	}
	return items
}

// Len returns the number of mirrored items.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
