package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phennylalanine/jhvocab/internal/store"
)

func TestWeightFor(t *testing.T) {
	tests := []struct {
		key  string
		want float64
	}{
		{"buildingSlevelr", 0.3},
		{"directionsLevelr", 0.3},
		{"buildingMlevelr", 0.5},
		{"schoolEventMlevelr", 0.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeightFor(tt.key), tt.key)
	}
	assert.Len(t, DefaultEntries(), 11)
}

func TestReadLevel(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	values := map[string]string{
		"a": "7",
		"b": "12abc",
		"c": "abc",
		"d": "",
		"e": " 4 ",
	}
	for k, v := range values {
		require.NoError(t, kv.Set(ctx, k, v))
	}

	tests := []struct {
		key  string
		want int
	}{
		{"a", 7},
		{"b", 12},
		{"c", 0},
		{"d", 0},
		{"e", 4},
		{"missing", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadLevel(ctx, kv, tt.key), tt.key)
	}
}

type brokenKV struct{ store.KV }

func (brokenKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func TestReadLevelStorageError(t *testing.T) {
	assert.Equal(t, 0, ReadLevel(context.Background(), brokenKV{store.NewMemory()}, "a"))
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name   string
		levels []Level
		want   int
	}{
		{"empty", nil, 0},
		{"one standard", []Level{{Level: 3, Weight: 0.3}}, 0},
		{"one monster", []Level{{Level: 3, Weight: 0.5}}, 1},
		{"mixed", []Level{{Level: 4, Weight: 0.3}, {Level: 5, Weight: 0.5}}, 3},
		{"ten standard at one", func() []Level {
			ls := make([]Level, 10)
			for i := range ls {
				ls[i] = Level{Level: 1, Weight: 0.3}
			}
			return ls
		}(), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overall(tt.levels))
		})
	}
}

func TestSummarizeEgg(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, "buildingMlevelr", "4"))
	require.NoError(t, kv.Set(ctx, "eventSlevelr", "3"))
	require.NoError(t, kv.Set(ctx, SelectedMonsterKey, "plantSlime_1.png"))

	s := Summarize(ctx, kv, DefaultEntries())

	// 4*0.5 + 3*0.3 = 2.9
	assert.Equal(t, 2, s.Overall)
	assert.Equal(t, EggAsset, s.Asset)
	assert.Equal(t, "ヤミタマ", s.AssetName)
	require.Len(t, s.Levels, 11)
	assert.Equal(t, Level{Key: "eventSlevelr", Level: 3, Weight: 0.3}, s.Levels[1])
}

func TestSummarizeSelectedMonster(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, "buildingMlevelr", "6"))
	require.NoError(t, kv.Set(ctx, "placesMlevelr", "4"))

	s := Summarize(ctx, kv, DefaultEntries())
	assert.Equal(t, 5, s.Overall)
	assert.Empty(t, s.Asset, "no monster selected yet")

	asset, err := SelectMonster(ctx, kv, "shadowEvo3A")
	require.NoError(t, err)
	assert.Equal(t, "shadowEvo3A.png", asset)

	s = Summarize(ctx, kv, DefaultEntries())
	assert.Equal(t, "shadowEvo3A.png", s.Asset)
	assert.Equal(t, "シャドウロウ", s.AssetName)
}

func TestSelectMonsterUnknown(t *testing.T) {
	kv := store.NewMemory()
	_, err := SelectMonster(context.Background(), kv, "dragon")
	assert.Error(t, err)

	_, ok, err := kv.Get(context.Background(), SelectedMonsterKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonsters(t *testing.T) {
	names := Monsters()
	assert.Len(t, names, 15)
	assert.IsIncreasing(t, names)
}
