package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/questionbank"
	"github.com/phennylalanine/jhvocab/internal/scheduler"
	"github.com/phennylalanine/jhvocab/internal/store"
)

// fakeScheduler serves questions in order and records calls.
type fakeScheduler struct {
	next      []questionbank.Question
	exhausted bool
	available time.Time

	shown    []int
	mistakes []int
}

func (f *fakeScheduler) SelectNext(qs []questionbank.Question, _ time.Time) (questionbank.Question, error) {
	if len(qs) == 0 {
		return questionbank.Question{}, scheduler.ErrEmptyBank
	}
	if f.exhausted || len(f.next) == 0 {
		return questionbank.Question{}, scheduler.ErrNoEligibleQuestions
	}
	q := f.next[0]
	f.next = f.next[1:]
	return q, nil
}

func (f *fakeScheduler) RecordShown(_ context.Context, id int) error {
	f.shown = append(f.shown, id)
	return nil
}

func (f *fakeScheduler) RecordMistake(_ context.Context, id, _ int) error {
	f.mistakes = append(f.mistakes, id)
	return nil
}

func (f *fakeScheduler) NextAvailableAt([]questionbank.Question, time.Time) (time.Time, bool) {
	return f.available, !f.available.IsZero()
}

// fakeTracker records the combo of every award.
type fakeTracker struct {
	combos  []int
	levelUp bool
}

func (f *fakeTracker) AwardCorrectAnswer(_ context.Context, combo int) (progression.Award, error) {
	f.combos = append(f.combos, combo)
	a := progression.Award{Delta: progression.ComboBonus(combo), Level: 1}
	if f.levelUp {
		a.Level, a.LevelsGained, a.LeveledUp = 2, 1, true
	}
	return a, nil
}

var testQuestions = []questionbank.Question{
	{ID: 1, Prompt: "図書館", Answer: "library"},
	{ID: 2, Prompt: "病院", Answer: "hospital"},
	{ID: 3, Prompt: "駅", Answer: "station"},
}

func newTestController(sched *fakeScheduler, xp *fakeTracker, opts ...Option) *Controller {
	if sched.next == nil {
		sched.next = append([]questionbank.Question(nil), testQuestions...)
	}
	bank := &questionbank.Bank{Namespace: "Lesson7Vocabulary1", Questions: testQuestions}
	return NewController("lesson7-1", bank, sched, xp, opts...)
}

func TestNextBeforeStart(t *testing.T) {
	c := newTestController(&fakeScheduler{}, &fakeTracker{})
	_, err := c.Next(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStartResetsState(t *testing.T) {
	ctx := context.Background()
	c := newTestController(&fakeScheduler{}, &fakeTracker{})
	c.Start()
	firstID := c.State().ID

	_, err := c.Next(ctx)
	require.NoError(t, err)
	_, err = c.Submit(ctx, "library")
	require.NoError(t, err)

	c.Start()
	s := c.State()
	assert.NotEqual(t, firstID, s.ID)
	assert.Zero(t, s.Score)
	assert.Zero(t, s.Combo)
	assert.Nil(t, s.Current)
	assert.False(t, s.Answered)
	assert.Equal(t, PhaseReady, s.Phase)
}

func TestNextRecordsShown(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	c := newTestController(sched, &fakeTracker{})
	c.Start()

	q, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, q.ID)
	assert.Equal(t, []int{1}, sched.shown)
	assert.Equal(t, PhaseAsking, c.State().Phase)

	// Cannot skip an unanswered question.
	_, err = c.Next(ctx)
	assert.ErrorIs(t, err, ErrNotAnswered)
	assert.Equal(t, []int{1}, sched.shown)
}

func TestCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	xp := &fakeTracker{}
	c := newTestController(&fakeScheduler{}, xp)
	c.Start()
	_, err := c.Next(ctx)
	require.NoError(t, err)

	out, err := c.Submit(ctx, "  library ")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.False(t, out.RetryAvailable)
	assert.Equal(t, 1, out.Award.Delta)
	assert.Equal(t, []int{1}, xp.combos)

	s := c.State()
	assert.Equal(t, 1, s.Score)
	assert.Equal(t, 1, s.Combo)
	assert.Equal(t, PhaseAnswered, s.Phase)

	_, err = c.Submit(ctx, "library")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.ErrorIs(t, c.Retry(), ErrRetryUnavailable)
}

func TestAnswerMatchingIsExact(t *testing.T) {
	ctx := context.Background()
	c := newTestController(&fakeScheduler{}, &fakeTracker{})
	c.Start()
	_, err := c.Next(ctx)
	require.NoError(t, err)

	out, err := c.Submit(ctx, "Library")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, "library", out.Expected)
}

func TestEmptyAnswerIgnored(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	c := newTestController(sched, &fakeTracker{})
	c.Start()
	_, err := c.Next(ctx)
	require.NoError(t, err)

	_, err = c.Submit(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.False(t, c.State().Answered)
	assert.Empty(t, sched.mistakes)
}

func TestSubmitWithoutQuestion(t *testing.T) {
	c := newTestController(&fakeScheduler{}, &fakeTracker{})
	c.Start()
	_, err := c.Submit(context.Background(), "library")
	assert.ErrorIs(t, err, ErrNoQuestion)
	assert.ErrorIs(t, c.Retry(), ErrNoQuestion)
}

func TestWrongAnswerThenRetry(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	xp := &fakeTracker{}
	c := newTestController(sched, xp)
	c.Start()

	// Build a combo first.
	_, err := c.Next(ctx)
	require.NoError(t, err)
	_, err = c.Submit(ctx, "library")
	require.NoError(t, err)
	_, err = c.Next(ctx)
	require.NoError(t, err)

	out, err := c.Submit(ctx, "hotel")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.True(t, out.RetryAvailable)
	assert.Equal(t, 0, c.State().Combo)
	assert.Equal(t, []int{2}, sched.mistakes)

	require.NoError(t, c.Retry())
	assert.Equal(t, PhaseAsking, c.State().Phase)

	// A wrong retry does not lower the count again.
	out, err = c.Submit(ctx, "hostel")
	require.NoError(t, err)
	assert.True(t, out.IsRetry)
	assert.False(t, out.RetryAvailable)
	assert.Equal(t, []int{2}, sched.mistakes)

	assert.ErrorIs(t, c.Retry(), ErrRetryUsed)

	// Advancing is allowed.
	q, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, q.ID)
}

func TestCorrectRetryAwardsXP(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	xp := &fakeTracker{}
	c := newTestController(sched, xp)
	c.Start()

	_, err := c.Next(ctx)
	require.NoError(t, err)
	_, err = c.Submit(ctx, "libary")
	require.NoError(t, err)
	require.NoError(t, c.Retry())

	out, err := c.Submit(ctx, "library")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.True(t, out.IsRetry)
	assert.Equal(t, []int{1}, xp.combos)
	assert.Equal(t, 1, c.State().Score)
	assert.ErrorIs(t, c.Retry(), ErrRetryUsed)
}

func TestNextAfterWrongAnswerWithoutRetry(t *testing.T) {
	ctx := context.Background()
	c := newTestController(&fakeScheduler{}, &fakeTracker{})
	c.Start()

	_, err := c.Next(ctx)
	require.NoError(t, err)
	_, err = c.Submit(ctx, "nope")
	require.NoError(t, err)

	q, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, q.ID)
	s := c.State()
	assert.False(t, s.RetryAvailable)
	assert.False(t, s.RetryUsed)
}

func TestComeBackLater(t *testing.T) {
	ctx := context.Background()
	until := time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	sched := &fakeScheduler{exhausted: true, available: until}
	c := newTestController(sched, &fakeTracker{})
	c.Start()

	_, err := c.Next(ctx)
	assert.ErrorIs(t, err, scheduler.ErrNoEligibleQuestions)

	s := c.State()
	assert.Equal(t, PhaseComeBackLater, s.Phase)
	assert.Equal(t, until, s.NextAvailableAt)
	assert.Nil(t, s.Current)
	assert.Empty(t, sched.shown)
	assert.Zero(t, s.Asked)
}

func TestHooksFire(t *testing.T) {
	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(2)

	var presented int
	var leveled int
	hooks := Hooks{
		OnPresent: func(q questionbank.Question) { presented = q.ID; wg.Done() },
		OnLevelUp: func(level int) { leveled = level; wg.Done() },
	}
	c := newTestController(&fakeScheduler{}, &fakeTracker{levelUp: true}, WithHooks(hooks))
	c.Start()

	_, err := c.Next(ctx)
	require.NoError(t, err)
	out, err := c.Submit(ctx, "library")
	require.NoError(t, err)
	assert.True(t, out.Award.LeveledUp)

	wg.Wait()
	assert.Equal(t, 1, presented)
	assert.Equal(t, 2, leveled)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	c := newTestController(&fakeScheduler{}, &fakeTracker{}, WithClock(func() time.Time { return start }))
	c.Start()

	for _, answer := range []string{"library", "hospital", "nope"} {
		_, err := c.Next(ctx)
		require.NoError(t, err)
		_, err = c.Submit(ctx, answer)
		require.NoError(t, err)
	}

	sum := c.Summary(start.Add(2 * time.Minute))
	assert.Equal(t, "lesson7-1", sum.QuizID)
	assert.Equal(t, 3, sum.Asked)
	assert.Equal(t, 2, sum.Correct)
	assert.Equal(t, 2, sum.BestCombo)
	assert.Equal(t, 2*time.Minute, sum.Duration)
	assert.InDelta(t, 2.0/3.0, sum.Accuracy, 1e-9)
}

func TestRunAgainstRealComponents(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	now := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	bank := &questionbank.Bank{Namespace: "ns", Questions: testQuestions[:1]}
	sched := scheduler.New(ctx, kv, bank.Namespace, scheduler.WithClock(clock))
	tracker := progression.New(ctx, kv, progression.Keys{XP: "q_xp", Level: "q_level"})
	c := NewController("q", bank, sched, tracker, WithClock(clock))
	c.Start()

	// The single question is asked until it cools down.
	for i := range scheduler.AskThreshold {
		_, err := c.Next(ctx)
		require.NoError(t, err, "question %d", i)
		_, err = c.Submit(ctx, "library")
		require.NoError(t, err)
	}

	_, err := c.Next(ctx)
	assert.ErrorIs(t, err, scheduler.ErrNoEligibleQuestions)
	assert.Equal(t, now.Add(scheduler.Cooldown), c.State().NextAvailableAt)

	// Five correct answers at level 1: 3 to level 2, then 2 of 5.
	assert.Equal(t, progression.State{XP: 2, Level: 2}, tracker.State())
	assert.Equal(t, 2, c.State().Level)
}
