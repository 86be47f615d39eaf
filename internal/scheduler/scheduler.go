package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/questionbank"
	"github.com/phennylalanine/jhvocab/internal/store"
)

const (
	// AskThreshold is the number of presentations that puts a question into
	// cooldown.
	AskThreshold = 5

	// CooldownDays is the length of the cooldown window.
	CooldownDays = 7
)

// Cooldown is CooldownDays as a duration.
const Cooldown = CooldownDays * 24 * time.Hour

var (
	// ErrEmptyBank is returned when selection is asked for on an empty bank.
	ErrEmptyBank = errors.New("question bank is empty")

	// ErrNoEligibleQuestions means every question is cooling down.
	ErrNoEligibleQuestions = errors.New("no eligible questions")
)

// MetaKey returns the storage key of a namespace's meta mapping.
func MetaKey(namespace string) string {
	return "meta_" + namespace
}

// Scheduler tracks how often each question was shown and picks the next one.
// It is not safe for concurrent use; callers drive it from a single loop.
type Scheduler struct {
	kv        store.KV
	namespace string
	meta      map[int]*Meta

	now  func() time.Time
	intN func(int) int
	log  *zap.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source used by RecordShown.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRand sets the random source used for tie-breaking.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) { s.intN = r.IntN }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a scheduler for namespace, loading its meta mapping from kv.
// Missing or corrupted state yields an empty mapping.
func New(ctx context.Context, kv store.KV, namespace string, opts ...Option) *Scheduler {
	s := &Scheduler{
		kv:        kv,
		namespace: namespace,
		meta:      make(map[int]*Meta),
		now:       time.Now,
		intN:      rand.IntN,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("namespace", namespace))
	s.load(ctx)
	return s
}

func (s *Scheduler) load(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, MetaKey(s.namespace))
	if err != nil {
		s.log.Warn("read question meta failed, starting empty", zap.Error(err))
		return
	}
	if !ok || raw == "" {
		return
	}

	meta, bad, err := decodeMetaMap([]byte(raw))
	if err != nil {
		s.log.Warn("question meta is corrupted, starting empty", zap.Error(err))
		return
	}
	for _, e := range bad {
		s.log.Warn("dropping question meta entry", zap.Error(e))
	}
	s.meta = meta
}

func (s *Scheduler) save(ctx context.Context) error {
	data, err := encodeMetaMap(s.meta)
	if err != nil {
		return fmt.Errorf("encode question meta: %w", err)
	}
	if err := s.kv.Set(ctx, MetaKey(s.namespace), string(data)); err != nil {
		s.log.Error("persist question meta failed", zap.Error(err))
		return fmt.Errorf("persist question meta: %w", err)
	}
	return nil
}

func (s *Scheduler) entry(id int) *Meta {
	m := s.meta[id]
	if m == nil {
		m = &Meta{}
		s.meta[id] = m
	}
	return m
}

// Namespace returns the storage namespace.
func (s *Scheduler) Namespace() string {
	return s.namespace
}

// RecordShown registers one presentation of id. Reaching AskThreshold puts
// the question into cooldown and restarts its count.
func (s *Scheduler) RecordShown(ctx context.Context, id int) error {
	now := s.now()
	m := s.entry(id)
	m.AskedCount++
	m.LastAskedAt = &now

	if m.AskedCount >= AskThreshold {
		until := now.Add(Cooldown)
		m.DisabledUntil = &until
		m.AskedCount = 0
		s.log.Debug("question cooling down", zap.Int("id", id), zap.Time("until", until))
	}
	return s.save(ctx)
}

// RecordMistake lowers the asked count of id by amount, never below zero.
// An amount below 1 counts as 1.
func (s *Scheduler) RecordMistake(ctx context.Context, id, amount int) error {
	if amount < 1 {
		amount = 1
	}
	m := s.entry(id)
	m.AskedCount = max(m.AskedCount-amount, 0)
	return s.save(ctx)
}

// IsEligible reports whether id may be selected at now.
func (s *Scheduler) IsEligible(id int, now time.Time) bool {
	m := s.meta[id]
	return m == nil || !m.CoolingDown(now)
}

// SelectNext picks uniformly at random among the eligible questions with the
// lowest asked count. It does not record the presentation.
func (s *Scheduler) SelectNext(questions []questionbank.Question, now time.Time) (questionbank.Question, error) {
	if len(questions) == 0 {
		return questionbank.Question{}, ErrEmptyBank
	}

	var candidates []questionbank.Question
	lowest := -1
	for _, q := range questions {
		if !s.IsEligible(q.ID, now) {
			continue
		}
		count := s.Meta(q.ID).AskedCount
		switch {
		case lowest < 0 || count < lowest:
			lowest = count
			candidates = append(candidates[:0], q)
		case count == lowest:
			candidates = append(candidates, q)
		}
	}

	if len(candidates) == 0 {
		return questionbank.Question{}, ErrNoEligibleQuestions
	}
	return candidates[s.intN(len(candidates))], nil
}

// NextAvailableAt returns the earliest cooldown expiry among questions, or
// false when none of them is cooling down at now.
func (s *Scheduler) NextAvailableAt(questions []questionbank.Question, now time.Time) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, q := range questions {
		m := s.meta[q.ID]
		if m == nil || !m.CoolingDown(now) {
			continue
		}
		if !found || m.DisabledUntil.Before(earliest) {
			earliest = *m.DisabledUntil
			found = true
		}
	}
	return earliest, found
}

// CoolingDown returns the ids of tracked questions that are cooling down at
// now, in no particular order. It needs no bank, so read-only views use it.
func (s *Scheduler) CoolingDown(now time.Time) []int {
	var ids []int
	for id, m := range s.meta {
		if m.CoolingDown(now) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Meta returns a copy of the meta of id; the zero value if none exists.
func (s *Scheduler) Meta(id int) Meta {
	if m := s.meta[id]; m != nil {
		return *m
	}
	return Meta{}
}

// Stats summarizes the bank's scheduling state.
type Stats struct {
	Total       int
	Eligible    int
	CoolingDown int
	// Unseen counts questions that have never been shown.
	Unseen int
}

// Stats computes scheduling counts for questions at now.
func (s *Scheduler) Stats(questions []questionbank.Question, now time.Time) Stats {
	st := Stats{Total: len(questions)}
	for _, q := range questions {
		m := s.meta[q.ID]
		if m == nil || m.LastAskedAt == nil {
			st.Unseen++
		}
		if s.IsEligible(q.ID, now) {
			st.Eligible++
		} else {
			st.CoolingDown++
		}
	}
	return st
}

// Reset forgets all meta of the namespace and removes it from storage.
func (s *Scheduler) Reset(ctx context.Context) error {
	s.meta = make(map[int]*Meta)
	if err := s.kv.Delete(ctx, MetaKey(s.namespace)); err != nil {
		return fmt.Errorf("delete question meta: %w", err)
	}
	return nil
}
