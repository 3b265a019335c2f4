package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "a", []byte("one")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(value) != "one" {
		t.Errorf("expected 'one', got %q", value)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "a", []byte("one"))
	store.Put(ctx, "a", []byte("two"))

	value, _ := store.Get(ctx, "a")
	if string(value) != "two" {
		t.Errorf("expected 'two', got %q", value)
	}
}

func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "a", []byte("one"))
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Second delete of an absent key is a no-op.
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("unexpected error on repeat delete: %v", err)
	}

	_, err := store.Get(ctx, "a")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_ListByPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "draft/1", []byte("d1"))
	store.Put(ctx, "draft/2", []byte("d2"))
	store.Put(ctx, "case/1", []byte("c1"))

	values, err := store.List(ctx, "draft/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 2 {
		t.Errorf("expected 2 draft entries, got %d", len(values))
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "a", []byte("one"))
	value, _ := store.Get(ctx, "a")
	value[0] = 'X'

	again, _ := store.Get(ctx, "a")
	if string(again) != "one" {
		t.Errorf("expected stored value to be unaffected, got %q", again)
	}
}

func TestNamespacedStore_Isolation(t *testing.T) {
	base := NewMemoryStore()
	ctx := context.Background()

	drafts := Namespaced(base, "draft")
	cases := Namespaced(base, "case")

	// Same logical key in both namespaces must not collide.
	drafts.Put(ctx, "abc", []byte("a draft"))
	cases.Put(ctx, "abc", []byte("a case"))

	d, err := drafts.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(d) != "a draft" {
		t.Errorf("expected 'a draft', got %q", d)
	}

	c, _ := cases.Get(ctx, "abc")
	if string(c) != "a case" {
		t.Errorf("expected 'a case', got %q", c)
	}

	fromDrafts, _ := drafts.List(ctx, "")
	if len(fromDrafts) != 1 {
		t.Errorf("expected 1 entry in draft namespace, got %d", len(fromDrafts))
	}

	drafts.Delete(ctx, "abc")
	if _, err := cases.Get(ctx, "abc"); err != nil {
		t.Errorf("delete in one namespace must not affect the other: %v", err)
	}
}
