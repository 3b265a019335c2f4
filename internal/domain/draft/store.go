package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/casebook/casebook/internal/platform/kv"
)

// Store persists in-flight drafts as JSON documents in a key-value store.
// It must be given a key-space separate from committed cases so draft and
// case ids never collide.
type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Save upserts the draft by id and stamps LastSavedAt. The write is
// all-or-nothing from the caller's perspective.
func (s *Store) Save(ctx context.Context, d *CaseDraft) error {
	now := time.Now().UTC()
	d.LastSavedAt = &now

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", d.ID, err)
	}
	if err := s.kv.Put(ctx, d.ID.String(), data); err != nil {
		return fmt.Errorf("store draft %s: %w", d.ID, err)
	}
	return nil
}

// Load returns the draft for the given id, or ErrNotFound. A missing key is
// never a panic or an internal error.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*CaseDraft, error) {
	data, err := s.kv.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load draft %s: %w", id, err)
	}
	var d CaseDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	if d.CompletedSteps == nil {
		d.CompletedSteps = make(map[StepID]bool)
	}
	return &d, nil
}

// Remove deletes the draft. Removing an absent draft is a no-op.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.kv.Delete(ctx, id.String()); err != nil {
		return fmt.Errorf("remove draft %s: %w", id, err)
	}
	return nil
}

// List returns all stored drafts in unspecified order.
func (s *Store) List(ctx context.Context) ([]*CaseDraft, error) {
	values, err := s.kv.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	drafts := make([]*CaseDraft, 0, len(values))
	for _, data := range values {
		var d CaseDraft
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode draft: %w", err)
		}
		if d.CompletedSteps == nil {
			d.CompletedSteps = make(map[StepID]bool)
		}
		drafts = append(drafts, &d)
	}
	return drafts, nil
}
