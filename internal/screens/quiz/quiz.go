package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/questionbank"
	"github.com/phennylalanine/jhvocab/internal/router"
	"github.com/phennylalanine/jhvocab/internal/scheduler"
	"github.com/phennylalanine/jhvocab/internal/screen"
	"github.com/phennylalanine/jhvocab/internal/screens/summary"
	"github.com/phennylalanine/jhvocab/internal/session"
	"github.com/phennylalanine/jhvocab/internal/store"
	"github.com/phennylalanine/jhvocab/internal/ui/components"
	"github.com/phennylalanine/jhvocab/internal/ui/layout"
)

// Deps are the collaborators of a quiz screen.
type Deps struct {
	Quiz config.QuizConfig
	KV   store.KV

	// Load reads the quiz's question bank.
	Load func(ctx context.Context) (*questionbank.Bank, error)

	Hooks session.Hooks
	Log   *zap.Logger
	Now   func() time.Time
}

// QuizScreen implements screen.Screen for one quiz run.
type QuizScreen struct {
	deps    Deps
	ctrl    *session.Controller
	tracker *progression.Tracker
	input   components.TextInput
	outcome *session.Outcome

	showingQuitConfirm bool
	errMsg             string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscHandler = (*QuizScreen)(nil)
var _ screen.ComboProvider = (*QuizScreen)(nil)

// New creates a QuizScreen.
func New(deps Deps) *QuizScreen {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &QuizScreen{
		deps:  deps,
		input: newInput(),
	}
}

func newInput() components.TextInput {
	return components.NewTextInput("Type the English...", 40)
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(
		s.loadQuiz(),
		s.input.Init(),
	)
}

func (s *QuizScreen) Title() string {
	if s.deps.Quiz.TitleJP != "" {
		return s.deps.Quiz.Title + " " + s.deps.Quiz.TitleJP
	}
	return s.deps.Quiz.Title
}

// Combo returns the current combo for the header.
func (s *QuizScreen) Combo() int {
	if s.ctrl == nil {
		return 0
	}
	return s.ctrl.State().Combo
}

// HandlesEsc reports whether Esc opens the quit dialog rather than leaving.
func (s *QuizScreen) HandlesEsc() bool {
	return s.ctrl != nil && s.errMsg == ""
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.ctrl == nil {
		return nil
	}
	if s.showingQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	st := s.ctrl.State()
	switch st.Phase {
	case session.PhaseComeBackLater:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Finish"},
		}
	case session.PhaseAnswered:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Next"}}
		if st.RetryAvailable {
			hints = append(hints, layout.KeyHint{Key: "R", Description: "Retry"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.ctrl == nil {
		return renderLoading(width)
	}
	if s.showingQuitConfirm {
		return renderQuitConfirm(width)
	}
	return s.renderQuestionView(width, height)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizReadyMsg:
		return s.handleReady(msg)

	case quizEndMsg:
		return s.handleEnd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.asking() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// loadQuiz reads the bank and wires the scheduler and tracker off the
// update loop.
func (s *QuizScreen) loadQuiz() tea.Cmd {
	d := s.deps
	return func() tea.Msg {
		ctx := context.Background()
		bank, err := d.Load(ctx)
		if err != nil {
			return quizReadyMsg{Err: err}
		}

		// The source's quizId names the meta namespace; the catalog
		// namespace applies only when the source declares none.
		ns := bank.Namespace
		if ns == "" {
			ns = d.Quiz.Namespace
		}
		if err := scheduler.BindNamespace(ctx, d.KV, d.Quiz.NamespaceKey(), ns); err != nil {
			d.Log.Warn("record quiz namespace failed", zap.String("namespace", ns), zap.Error(err))
		}

		sched := scheduler.New(ctx, d.KV, ns, scheduler.WithLogger(d.Log))
		tracker := progression.New(ctx, d.KV,
			progression.Keys{XP: d.Quiz.XPKey, Level: d.Quiz.LevelKey},
			progression.WithLogger(d.Log))
		ctrl := session.NewController(d.Quiz.ID, bank, sched, tracker,
			session.WithHooks(d.Hooks),
			session.WithClock(d.Now),
			session.WithLogger(d.Log))

		return quizReadyMsg{Controller: ctrl, Tracker: tracker}
	}
}

func (s *QuizScreen) handleReady(msg quizReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.deps.Log.Error("load quiz failed", zap.String("quiz", s.deps.Quiz.ID), zap.Error(msg.Err))
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.ctrl = msg.Controller
	s.tracker = msg.Tracker
	s.ctrl.Start()
	return s, s.next()
}

// next presents the next question or enters the come-back-later state.
func (s *QuizScreen) next() tea.Cmd {
	s.outcome = nil
	if _, err := s.ctrl.Next(context.Background()); err != nil {
		if !errors.Is(err, scheduler.ErrNoEligibleQuestions) {
			s.errMsg = err.Error()
		}
		return nil
	}
	return s.input.Reset()
}

func (s *QuizScreen) asking() bool {
	return s.ctrl != nil && !s.showingQuitConfirm && s.ctrl.State().Phase == session.PhaseAsking
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.ctrl == nil {
		return s, nil
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			return s, func() tea.Msg { return quizEndMsg{} }
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.showingQuitConfirm = true
		return s, nil
	}

	switch s.ctrl.State().Phase {
	case session.PhaseComeBackLater:
		if key == "enter" {
			return s, func() tea.Msg { return quizEndMsg{} }
		}
		return s, nil

	case session.PhaseAnswered:
		switch key {
		case "enter", "n":
			return s, s.next()
		case "r", "R":
			if err := s.ctrl.Retry(); err != nil {
				return s, nil
			}
			s.outcome = nil
			return s, s.input.Reset()
		}
		return s, nil

	case session.PhaseAsking:
		if key == "enter" {
			return s.submitAnswer()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *QuizScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	out, err := s.ctrl.Submit(context.Background(), s.input.Value())
	if err != nil {
		// Empty input stays on the question.
		return s, nil
	}
	s.outcome = &out
	s.input.Submit(out.Correct)
	return s, nil
}

func (s *QuizScreen) handleEnd() (screen.Screen, tea.Cmd) {
	if s.ctrl == nil {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	sum := s.ctrl.Summary(s.deps.Now())
	if s.tracker != nil {
		sum.Level = s.tracker.State().Level
	}
	s.deps.Log.Info("quiz run ended",
		zap.String("run", sum.RunID),
		zap.Int("asked", sum.Asked),
		zap.Int("correct", sum.Correct),
		zap.Duration("duration", sum.Duration))

	next := summary.New(sum, s.Title())
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}
