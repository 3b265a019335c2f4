package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager owns the live wizard sessions, one per draft id. Starting or
// resuming a draft yields a wizard; releasing or discarding tears it down.
type Manager struct {
	mu       sync.Mutex
	wizards  map[uuid.UUID]*Wizard
	store    *Store
	cases    CaseCreator
	debounce time.Duration
	logger   zerolog.Logger
}

func NewManager(store *Store, cases CaseCreator, debounce time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		wizards:  make(map[uuid.UUID]*Wizard),
		store:    store,
		cases:    cases,
		debounce: debounceOrDefault(debounce),
		logger:   logger,
	}
}

// Start creates a fresh empty draft at step 0, persists it, and opens a
// wizard session for it.
func (m *Manager) Start(ctx context.Context) (*Wizard, error) {
	d := NewCaseDraft()
	if err := m.store.Save(ctx, d); err != nil {
		return nil, err
	}

	w := NewWizard(d, m.store, m.cases, m.debounce, m.logger)

	m.mu.Lock()
	m.wizards[d.ID] = w
	m.mu.Unlock()

	m.logger.Info().Str("draft_id", d.ID.String()).Msg("draft started")
	return w, nil
}

// Resume returns the live wizard for a draft id, loading the draft from the
// store and opening a new session if none is active. The wizard picks up at
// whatever step the draft was saved on.
func (m *Manager) Resume(ctx context.Context, id uuid.UUID) (*Wizard, error) {
	m.mu.Lock()
	if w, ok := m.wizards[id]; ok {
		m.mu.Unlock()
		return w, nil
	}
	m.mu.Unlock()

	d, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Lost the race to another resume; use the session that won.
	if w, ok := m.wizards[id]; ok {
		return w, nil
	}
	w := NewWizard(d, m.store, m.cases, m.debounce, m.logger)
	m.wizards[id] = w
	return w, nil
}

// Release closes the session for a draft, cancelling any pending autosave.
// The stored draft is kept for a later resume. No-op for unknown ids.
func (m *Manager) Release(id uuid.UUID) {
	m.mu.Lock()
	w, ok := m.wizards[id]
	delete(m.wizards, id)
	m.mu.Unlock()

	if ok {
		w.Close()
	}
}

// Discard closes the session and deletes the stored draft.
func (m *Manager) Discard(ctx context.Context, id uuid.UUID) error {
	m.Release(id)
	if err := m.store.Remove(ctx, id); err != nil {
		return err
	}
	m.logger.Info().Str("draft_id", id.String()).Msg("draft discarded")
	return nil
}

// List returns all stored drafts, including ones without a live session.
func (m *Manager) List(ctx context.Context) ([]*CaseDraft, error) {
	return m.store.List(ctx)
}

// CloseAll tears down every live session, for graceful shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	wizards := make([]*Wizard, 0, len(m.wizards))
	for _, w := range m.wizards {
		wizards = append(wizards, w)
	}
	m.wizards = make(map[uuid.UUID]*Wizard)
	m.mu.Unlock()

	for _, w := range wizards {
		w.Close()
	}
}

// debounceOrDefault guards against a zero debounce from misconfiguration.
func debounceOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 2 * time.Second
	}
	return d
}
