package session

import (
	"context"
	"errors"
	"time"

	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/questionbank"
)

// QuestionScheduler is the subset of the scheduler the controller drives.
type QuestionScheduler interface {
	SelectNext(questions []questionbank.Question, now time.Time) (questionbank.Question, error)
	RecordShown(ctx context.Context, id int) error
	RecordMistake(ctx context.Context, id, amount int) error
	NextAvailableAt(questions []questionbank.Question, now time.Time) (time.Time, bool)
}

// XPTracker is the progression surface used on correct answers.
type XPTracker interface {
	AwardCorrectAnswer(ctx context.Context, combo int) (progression.Award, error)
}

// Phase represents where a quiz run currently is.
type Phase int

const (
	PhaseIdle          Phase = iota // Not started
	PhaseReady                      // Started, no question requested yet
	PhaseAsking                     // A question awaits an answer
	PhaseAnswered                   // The current question was answered
	PhaseComeBackLater              // Every question is cooling down
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReady:
		return "ready"
	case PhaseAsking:
		return "asking"
	case PhaseAnswered:
		return "answered"
	case PhaseComeBackLater:
		return "come-back-later"
	default:
		return "unknown"
	}
}

var (
	ErrNotStarted       = errors.New("quiz run not started")
	ErrNoQuestion       = errors.New("no question is being asked")
	ErrNotAnswered      = errors.New("current question is not answered yet")
	ErrAlreadyAnswered  = errors.New("current question is already answered")
	ErrEmptyAnswer      = errors.New("answer is empty")
	ErrRetryUnavailable = errors.New("retry is only available after a wrong answer")
	ErrRetryUsed        = errors.New("retry already used for this question")
)

// State is the ephemeral state of one quiz run. It is never persisted.
type State struct {
	// ID identifies the run in logs.
	ID string

	Score     int
	Combo     int
	BestCombo int

	// Current is the question on screen, nil before the first Next.
	Current *questionbank.Question

	// Answered is true once the current question was answered.
	Answered bool

	// LastCorrect records whether the most recent answer was correct.
	LastCorrect bool

	// RetryAvailable is true after a first wrong answer.
	RetryAvailable bool

	// RetryUsed is true once the retry of the current question was taken.
	RetryUsed bool

	// Asked counts questions presented in this run.
	Asked int

	// Level is the quiz level after the most recent award.
	Level int

	// NextAvailableAt is set in PhaseComeBackLater.
	NextAvailableAt time.Time

	StartTime time.Time
	Phase     Phase
}

// Accuracy returns the share of presented questions answered correctly.
func (s State) Accuracy() float64 {
	if s.Asked == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Asked)
}

// Outcome describes the evaluation of one submitted answer.
type Outcome struct {
	Correct  bool
	Given    string
	Expected string

	// IsRetry is true when the answer was the question's second attempt.
	IsRetry bool

	// RetryAvailable is true when the learner may try once more.
	RetryAvailable bool

	// Award is zero for wrong answers.
	Award progression.Award
}

// Hooks receive fire-and-forget notifications. They run on their own
// goroutine and must not touch the controller.
type Hooks struct {
	// OnPresent is called with each question after it is presented.
	OnPresent func(questionbank.Question)

	// OnLevelUp is called with the new level after a level-up.
	OnLevelUp func(level int)
}
