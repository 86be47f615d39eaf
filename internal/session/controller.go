package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/questionbank"
	"github.com/phennylalanine/jhvocab/internal/scheduler"
)

// Controller drives one quiz: it asks the scheduler for questions, evaluates
// answers and routes outcomes to the scheduler and the XP tracker.
// It is not safe for concurrent use.
type Controller struct {
	quizID string
	bank   *questionbank.Bank
	sched  QuestionScheduler
	xp     XPTracker
	hooks  Hooks

	now func() time.Time
	log *zap.Logger

	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithHooks installs presentation and level-up hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) { c.hooks = h }
}

// WithClock sets the time source used for selection.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController creates a controller for a loaded bank.
func NewController(quizID string, bank *questionbank.Bank, sched QuestionScheduler, xp XPTracker, opts ...Option) *Controller {
	c := &Controller{
		quizID: quizID,
		bank:   bank,
		sched:  sched,
		xp:     xp,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With(zap.String("quiz", quizID))
	return c
}

// QuizID returns the quiz identifier.
func (c *Controller) QuizID() string { return c.quizID }

// Bank returns the question bank.
func (c *Controller) Bank() *questionbank.Bank { return c.bank }

// State returns a copy of the run state.
func (c *Controller) State() State {
	s := c.state
	if s.Current != nil {
		q := *s.Current
		s.Current = &q
	}
	return s
}

// Start resets the run state.
func (c *Controller) Start() {
	c.state = State{
		ID:        uuid.NewString(),
		StartTime: c.now(),
		Phase:     PhaseReady,
	}
	c.log.Info("quiz run started",
		zap.String("run", c.state.ID),
		zap.Int("questions", c.bank.Len()))
}

// Next selects and presents the next question. When every question is
// cooling down the run moves to PhaseComeBackLater and
// scheduler.ErrNoEligibleQuestions is returned without any mutation.
func (c *Controller) Next(ctx context.Context) (questionbank.Question, error) {
	switch c.state.Phase {
	case PhaseIdle:
		return questionbank.Question{}, ErrNotStarted
	case PhaseAsking:
		return questionbank.Question{}, ErrNotAnswered
	}

	var questions []questionbank.Question
	if c.bank != nil {
		questions = c.bank.Questions
	}

	now := c.now()
	q, err := c.sched.SelectNext(questions, now)
	if err != nil {
		if errors.Is(err, scheduler.ErrNoEligibleQuestions) {
			c.state.Current = nil
			c.state.Phase = PhaseComeBackLater
			c.state.NextAvailableAt, _ = c.sched.NextAvailableAt(questions, now)
			c.log.Info("all questions cooling down", zap.Time("next_available", c.state.NextAvailableAt))
		}
		return questionbank.Question{}, err
	}

	if err := c.sched.RecordShown(ctx, q.ID); err != nil {
		c.log.Warn("record shown failed", zap.Int("id", q.ID), zap.Error(err))
	}

	c.state.Current = &q
	c.state.Answered = false
	c.state.LastCorrect = false
	c.state.RetryAvailable = false
	c.state.RetryUsed = false
	c.state.Asked++
	c.state.Phase = PhaseAsking

	if h := c.hooks.OnPresent; h != nil {
		go h(q)
	}
	return q, nil
}

// Submit evaluates an answer to the current question. The trimmed input must
// match the answer exactly.
func (c *Controller) Submit(ctx context.Context, text string) (Outcome, error) {
	q := c.state.Current
	if q == nil || c.state.Phase == PhaseComeBackLater {
		return Outcome{}, ErrNoQuestion
	}
	if c.state.Answered {
		return Outcome{}, ErrAlreadyAnswered
	}
	given := strings.TrimSpace(text)
	if given == "" {
		return Outcome{}, ErrEmptyAnswer
	}

	out := Outcome{
		Correct:  given == q.Answer,
		Given:    given,
		Expected: q.Answer,
		IsRetry:  c.state.RetryUsed,
	}

	c.state.Answered = true
	c.state.LastCorrect = out.Correct
	c.state.Phase = PhaseAnswered

	if out.Correct {
		c.state.Score++
		c.state.Combo++
		c.state.BestCombo = max(c.state.BestCombo, c.state.Combo)
		award, err := c.xp.AwardCorrectAnswer(ctx, c.state.Combo)
		if err != nil {
			c.log.Warn("persist progression failed", zap.Error(err))
		}
		out.Award = award
		c.state.Level = award.Level
		c.state.RetryAvailable = false

		if award.LeveledUp {
			if h := c.hooks.OnLevelUp; h != nil {
				go h(award.Level)
			}
		}
	} else {
		c.state.Combo = 0
		// A retry is free: only the first wrong answer lowers the count.
		if !out.IsRetry {
			if err := c.sched.RecordMistake(ctx, q.ID, 1); err != nil {
				c.log.Warn("record mistake failed", zap.Int("id", q.ID), zap.Error(err))
			}
		}
		c.state.RetryAvailable = !out.IsRetry
	}
	out.RetryAvailable = c.state.RetryAvailable

	c.log.Debug("answer",
		zap.String("run", c.state.ID),
		zap.Int("id", q.ID),
		zap.Bool("correct", out.Correct),
		zap.Bool("retry", out.IsRetry),
		zap.Int("combo", c.state.Combo))
	return out, nil
}

// Retry reopens the current question after a wrong answer. Each question
// allows one retry.
func (c *Controller) Retry() error {
	if c.state.Current == nil || c.state.Phase == PhaseComeBackLater {
		return ErrNoQuestion
	}
	if c.state.RetryUsed {
		return ErrRetryUsed
	}
	if !c.state.Answered || !c.state.RetryAvailable {
		return ErrRetryUnavailable
	}

	c.state.RetryUsed = true
	c.state.RetryAvailable = false
	c.state.Answered = false
	c.state.Phase = PhaseAsking
	return nil
}
