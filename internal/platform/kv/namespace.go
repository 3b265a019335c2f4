package kv

import "context"

// NamespacedStore scopes all keys of an underlying Store under a fixed
// prefix so independent key-spaces (drafts, committed cases) never collide.
type NamespacedStore struct {
	inner  Store
	prefix string
}

// Namespaced wraps store so every key is prefixed with "<namespace>/".
func Namespaced(store Store, namespace string) *NamespacedStore {
	return &NamespacedStore{inner: store, prefix: namespace + "/"}
}

func (s *NamespacedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *NamespacedStore) Put(ctx context.Context, key string, value []byte) error {
	return s.inner.Put(ctx, s.prefix+key, value)
}

func (s *NamespacedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *NamespacedStore) List(ctx context.Context, prefix string) ([][]byte, error) {
	return s.inner.List(ctx, s.prefix+prefix)
}
