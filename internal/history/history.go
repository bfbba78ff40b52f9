package history

import "canvasnotes/internal/domain"

// DefaultLimit is the number of snapshots kept before the oldest is dropped.
const DefaultLimit = 50

// Manager is a linear undo/redo stack of full page snapshots. The entry at
// the cursor always matches what is on screen; entries after it form the
// redo branch.
type Manager struct {
	snapshots [][]domain.Element
	cursor    int
	limit     int
}

// New returns an empty manager keeping at most limit snapshots. A limit of
// 1 keeps only the current state, so nothing can be undone; zero or less
// falls back to DefaultLimit.
func New(limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{cursor: -1, limit: limit}
}

// Save records the page's current elements. Any redo branch is discarded,
// and the oldest entry is evicted once the limit is exceeded.
func (m *Manager) Save(page *domain.Page) {
	m.snapshots = append(m.snapshots[:m.cursor+1], domain.CloneElements(page.Elements))
	m.cursor = len(m.snapshots) - 1

	if len(m.snapshots) > m.limit {
		m.snapshots[0] = nil
		m.snapshots = m.snapshots[1:]
		m.cursor--
	}
}

// Undo steps back one snapshot and restores it into page. It reports
// whether anything changed.
func (m *Manager) Undo(page *domain.Page) bool {
	if m.cursor <= 0 {
		return false
	}
	m.cursor--
	page.Elements = domain.CloneElements(m.snapshots[m.cursor])
	return true
}

// Redo steps forward one snapshot and restores it into page.
func (m *Manager) Redo(page *domain.Page) bool {
	if m.cursor >= len(m.snapshots)-1 {
		return false
	}
	m.cursor++
	page.Elements = domain.CloneElements(m.snapshots[m.cursor])
	return true
}

// Clear drops every snapshot and records page as the new baseline.
func (m *Manager) Clear(page *domain.Page) {
	m.snapshots = nil
	m.cursor = -1
	m.Save(page)
}

func (m *Manager) CanUndo() bool { return m.cursor > 0 }
func (m *Manager) CanRedo() bool { return m.cursor < len(m.snapshots)-1 }

// Len is the number of stored snapshots.
func (m *Manager) Len() int { return len(m.snapshots) }

// Cursor is the index of the snapshot matching the page.
func (m *Manager) Cursor() int { return m.cursor }

// Limit is the configured capacity.
func (m *Manager) Limit() int { return m.limit }
