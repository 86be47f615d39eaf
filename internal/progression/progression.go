package progression

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/store"
)

// SchemaVersion identifies the XP curve the stored xp was earned under.
// Version 1 (no marker) used 3 + 2*level per level.
const SchemaVersion = 2

// XPRequired returns the XP needed to advance from level to level+1:
// 3 for level 1 and 3 + (2 + 3 + ... + level) above that.
func XPRequired(level int) int {
	if level < 1 {
		level = 1
	}
	return level*(level+1)/2 + 2
}

func legacyXPRequired(level int) int {
	if level < 1 {
		level = 1
	}
	return 3 + 2*level
}

// ComboBonus returns the XP awarded for a correct answer at the given combo
// length: 1 normally, combo/5 - 1 at every fifth combo from 15 on.
func ComboBonus(combo int) int {
	if combo >= 15 && combo%5 == 0 {
		return combo/5 - 1
	}
	return 1
}

// Keys names the storage entries of one quiz's progression.
type Keys struct {
	XP    string
	Level string
}

// Schema returns the key of the schema version marker.
func (k Keys) Schema() string {
	return k.Level + ":schema"
}

func (k Keys) all() []string {
	return []string{k.XP, k.Level, k.Schema()}
}

// State is a quiz's XP and level.
type State struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// Award is the result of one correct answer.
type Award struct {
	Delta        int
	Level        int
	LevelsGained int
	LeveledUp    bool
}

// Tracker converts correct answers into XP and levels and persists them.
// It is not safe for concurrent use.
type Tracker struct {
	kv    store.KV
	keys  Keys
	state State
	log   *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// New creates a tracker and loads its state from kv. Absent or unparsable
// values default to xp 0 and level 1.
func New(ctx context.Context, kv store.KV, keys Keys, opts ...Option) *Tracker {
	t := &Tracker{
		kv:    kv,
		keys:  keys,
		state: State{Level: 1},
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(t)
	}
	t.log = t.log.With(zap.String("level_key", keys.Level))
	t.load(ctx)
	return t
}

func (t *Tracker) readInt(ctx context.Context, key string) (int, bool) {
	raw, ok, err := t.kv.Get(ctx, key)
	if err != nil {
		t.log.Warn("read progression value failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		t.log.Warn("ignoring unparsable progression value", zap.String("key", key), zap.String("value", raw))
		return 0, false
	}
	return n, true
}

func (t *Tracker) load(ctx context.Context) {
	xp, hasXP := t.readInt(ctx, t.keys.XP)
	level, hasLevel := t.readInt(ctx, t.keys.Level)
	schema, hasSchema := t.readInt(ctx, t.keys.Schema())

	if hasLevel && level >= 1 {
		t.state.Level = level
	}
	if hasXP && xp > 0 {
		t.state.XP = xp
	}

	switch {
	case !hasSchema && (hasXP || hasLevel):
		t.migrateLegacy()
	case hasSchema && schema != SchemaVersion:
		t.log.Warn("unknown progression schema, reading as current", zap.Int("schema", schema))
	}
	t.normalize()
}

// migrateLegacy keeps the level and rescales xp to the same fraction of the
// level's bar under the current curve.
func (t *Tracker) migrateLegacy() {
	old := legacyXPRequired(t.state.Level)
	xp := min(t.state.XP, old-1)
	scaled := xp * XPRequired(t.state.Level) / old
	t.log.Info("migrating legacy progression",
		zap.Int("level", t.state.Level),
		zap.Int("xp", t.state.XP),
		zap.Int("scaled_xp", scaled))
	t.state.XP = scaled
}

// normalize converts surplus xp into levels. It reports levels gained.
func (t *Tracker) normalize() int {
	gained := 0
	for t.state.XP >= XPRequired(t.state.Level) {
		t.state.XP -= XPRequired(t.state.Level)
		t.state.Level++
		gained++
	}
	return gained
}

func (t *Tracker) save(ctx context.Context) error {
	values := map[string]string{
		t.keys.XP:       strconv.Itoa(t.state.XP),
		t.keys.Level:    strconv.Itoa(t.state.Level),
		t.keys.Schema(): strconv.Itoa(SchemaVersion),
	}
	for _, k := range t.keys.all() {
		if err := t.kv.Set(ctx, k, values[k]); err != nil {
			t.log.Error("persist progression failed", zap.String("key", k), zap.Error(err))
			return fmt.Errorf("persist %s: %w", k, err)
		}
	}
	return nil
}

// AwardCorrectAnswer adds the XP for a correct answer given the current
// combo length, levels up as many times as the XP allows, and persists.
// The returned Award is valid even when persisting fails.
func (t *Tracker) AwardCorrectAnswer(ctx context.Context, combo int) (Award, error) {
	delta := ComboBonus(combo)
	t.state.XP += delta
	gained := t.normalize()

	award := Award{
		Delta:        delta,
		Level:        t.state.Level,
		LevelsGained: gained,
		LeveledUp:    gained > 0,
	}
	if award.LeveledUp {
		t.log.Info("level up", zap.Int("level", award.Level), zap.Int("gained", gained))
	}
	return award, t.save(ctx)
}

// State returns the current xp and level.
func (t *Tracker) State() State {
	return t.state
}

// Keys returns the storage keys of the tracker.
func (t *Tracker) Keys() Keys {
	return t.keys
}

// Progress returns the filled fraction of the current level's XP bar.
func (t *Tracker) Progress() float64 {
	return float64(t.state.XP) / float64(XPRequired(t.state.Level))
}

// Reset returns to level 1 and removes the stored progression.
func (t *Tracker) Reset(ctx context.Context) error {
	t.state = State{Level: 1}
	if err := t.kv.Delete(ctx, t.keys.all()...); err != nil {
		return fmt.Errorf("delete progression: %w", err)
	}
	return nil
}
