package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phennylalanine/jhvocab/internal/store"
)

func TestBoundNamespace(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	assert.Equal(t, "Lesson7Vocabulary1", BoundNamespace(ctx, kv, "lesson7-1sLevelr:ns", "Lesson7Vocabulary1"))

	require.NoError(t, BindNamespace(ctx, kv, "lesson7-1sLevelr:ns", "lesson7_v1"))
	assert.Equal(t, "lesson7_v1", BoundNamespace(ctx, kv, "lesson7-1sLevelr:ns", "Lesson7Vocabulary1"))

	// An empty namespace never replaces a recorded one.
	require.NoError(t, BindNamespace(ctx, kv, "lesson7-1sLevelr:ns", ""))
	assert.Equal(t, "lesson7_v1", BoundNamespace(ctx, kv, "lesson7-1sLevelr:ns", "Lesson7Vocabulary1"))
}
