package hub

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/phennylalanine/jhvocab/internal/store"
)

const (
	// EggThreshold is the overall level below which the egg is shown.
	EggThreshold = 5

	// EggAsset is the display asset used below EggThreshold.
	EggAsset = "shadowPlantEgg.png"

	// SelectedMonsterKey stores the asset chosen by the learner.
	SelectedMonsterKey = "selectedMonster"

	monsterWeight  = 0.5
	standardWeight = 0.3
)

// monsterNames maps asset names to their display names.
var monsterNames = map[string]string{
	"shadowPlantEgg": "ヤミタマ",
	"plantSlime_1":   "ハナゴロ",
	"shadowSlime_1":  "カゲモチ",
	"plantEvo_2A":    "ネッコン",
	"plantEvo_2B":    "モリフワ",
	"shadowEvo_2A":   "スミボウ",
	"shadowEvo_2B":   "ヨルビト",
	"shadowEvo3A":    "シャドウロウ",
	"shadowEvo3B":    "グルムドン",
	"shadowEvo3C":    "ウィスパップ",
	"shadowEvo3D":    "シャドピク",
	"plantEvo3A":     "ハナリコ",
	"plantEvo3B":     "ツルケン",
	"plantEvo3C":     "カメキノ",
	"plantEvo3D":     "キカブン",
}

// Entry is one level key contributing to the overall level.
type Entry struct {
	Key    string  `json:"key" mapstructure:"key"`
	Weight float64 `json:"weight" mapstructure:"weight"`
}

// DefaultKeys are the level keys aggregated by the monster hub.
var DefaultKeys = []string{
	"buildingSlevelr", "eventSlevelr", "placeSlevelr", "oppositeSlevelr",
	"schoolEventSlevelr", "directionsLevelr", "buildingMlevelr",
	"eventMlevelr", "placesMlevelr", "oppositeMlevelr", "schoolEventMlevelr",
}

// WeightFor returns the default weight of a level key: monster ("M") quizzes
// count 0.5, standard quizzes 0.3.
func WeightFor(key string) float64 {
	if strings.Contains(key, "M") {
		return monsterWeight
	}
	return standardWeight
}

// DefaultEntries returns DefaultKeys with their default weights.
func DefaultEntries() []Entry {
	entries := make([]Entry, len(DefaultKeys))
	for i, k := range DefaultKeys {
		entries[i] = Entry{Key: k, Weight: WeightFor(k)}
	}
	return entries
}

// ReadLevel reads an integer level stored under key. Absent, unreadable or
// unparsable values read as 0.
func ReadLevel(ctx context.Context, kv store.KV, key string) int {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return 0
	}
	return leadingInt(raw)
}

// leadingInt parses an optional sign and the leading decimal digits of s,
// ignoring anything after them. It returns 0 when there are no digits.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// Level is a key's stored level and its weight.
type Level struct {
	Key    string  `json:"key"`
	Level  int     `json:"level"`
	Weight float64 `json:"weight"`
}

// Overall returns floor(Σ level·weight).
func Overall(levels []Level) int {
	var sum float64
	for _, l := range levels {
		sum += float64(l.Level) * l.Weight
	}
	// Tolerance absorbs float error such as 10 × 0.3 = 2.9999999999999996.
	return int(math.Floor(sum + 1e-9))
}

// Summary is the cross-quiz view shown on the home screen and dashboard.
type Summary struct {
	Levels  []Level `json:"levels"`
	Overall int     `json:"overall"`
	// Asset is the monster image file; empty when none was selected yet.
	Asset     string `json:"asset"`
	AssetName string `json:"assetName,omitempty"`
}

// Summarize reads every entry's level and computes the overall level and the
// display asset.
func Summarize(ctx context.Context, kv store.KV, entries []Entry) Summary {
	levels := make([]Level, len(entries))
	for i, e := range entries {
		levels[i] = Level{Key: e.Key, Level: ReadLevel(ctx, kv, e.Key), Weight: e.Weight}
	}

	s := Summary{Levels: levels, Overall: Overall(levels)}
	if s.Overall < EggThreshold {
		s.Asset = EggAsset
	} else if raw, ok, err := kv.Get(ctx, SelectedMonsterKey); err == nil && ok {
		s.Asset = raw
	}
	s.AssetName = DisplayName(s.Asset)
	return s
}

// DisplayName returns the display name of an asset file, or "" if unknown.
func DisplayName(asset string) string {
	return monsterNames[strings.TrimSuffix(asset, ".png")]
}

// Monsters lists the known asset names, sorted.
func Monsters() []string {
	names := make([]string, 0, len(monsterNames))
	for n := range monsterNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SelectMonster stores the learner's monster. The name may be given with or
// without the .png suffix.
func SelectMonster(ctx context.Context, kv store.KV, name string) (string, error) {
	base := strings.TrimSuffix(name, ".png")
	if _, ok := monsterNames[base]; !ok {
		return "", fmt.Errorf("unknown monster %q", name)
	}
	asset := base + ".png"
	if err := kv.Set(ctx, SelectedMonsterKey, asset); err != nil {
		return "", fmt.Errorf("store selected monster: %w", err)
	}
	return asset, nil
}
