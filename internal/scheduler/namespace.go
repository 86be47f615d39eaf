package scheduler

import (
	"context"
	"fmt"

	"github.com/phennylalanine/jhvocab/internal/store"
)

// BindNamespace records under key the namespace a quiz's meta is stored in,
// so readers that never load the question source use the same meta key.
// The entry is only written when it changes.
func BindNamespace(ctx context.Context, kv store.KV, key, namespace string) error {
	if namespace == "" {
		return nil
	}
	if cur, ok, err := kv.Get(ctx, key); err == nil && ok && cur == namespace {
		return nil
	}
	if err := kv.Set(ctx, key, namespace); err != nil {
		return fmt.Errorf("bind namespace: %w", err)
	}
	return nil
}

// BoundNamespace returns the namespace recorded under key, or fallback when
// none was recorded yet or the store cannot be read.
func BoundNamespace(ctx context.Context, kv store.KV, key, fallback string) string {
	ns, ok, err := kv.Get(ctx, key)
	if err != nil || !ok || ns == "" {
		return fallback
	}
	return ns
}
