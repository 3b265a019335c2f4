package medcase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/casebook/casebook/internal/platform/kv"
)

// KVRepository persists cases as JSON documents in a key-value store, keyed
// by the case id. Each operation maps to a single atomic store call.
type KVRepository struct {
	store kv.Store
}

func NewKVRepository(store kv.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Create(ctx context.Context, mc *MedicalCase) error {
	data, err := json.Marshal(mc)
	if err != nil {
		return fmt.Errorf("marshal case %s: %w", mc.ID, err)
	}
	if err := r.store.Put(ctx, mc.ID.String(), data); err != nil {
		return fmt.Errorf("store case %s: %w", mc.ID, err)
	}
	return nil
}

func (r *KVRepository) GetByID(ctx context.Context, id uuid.UUID) (*MedicalCase, error) {
	data, err := r.store.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load case %s: %w", id, err)
	}
	var mc MedicalCase
	if err := json.Unmarshal(data, &mc); err != nil {
		return nil, fmt.Errorf("decode case %s: %w", id, err)
	}
	return &mc, nil
}

func (r *KVRepository) Update(ctx context.Context, mc *MedicalCase) error {
	// Put is an upsert; Update requires the case to already exist.
	if _, err := r.GetByID(ctx, mc.ID); err != nil {
		return err
	}
	return r.Create(ctx, mc)
}

func (r *KVRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, id.String()); err != nil {
		return fmt.Errorf("delete case %s: %w", id, err)
	}
	return nil
}

func (r *KVRepository) List(ctx context.Context) ([]*MedicalCase, error) {
	values, err := r.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	cases := make([]*MedicalCase, 0, len(values))
	for _, data := range values {
		var mc MedicalCase
		if err := json.Unmarshal(data, &mc); err != nil {
			return nil, fmt.Errorf("decode case: %w", err)
		}
		cases = append(cases, &mc)
	}
	return cases, nil
}
