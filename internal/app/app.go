package app

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/questionbank"
	"github.com/phennylalanine/jhvocab/internal/router"
	"github.com/phennylalanine/jhvocab/internal/screen"
	"github.com/phennylalanine/jhvocab/internal/screens/home"
	"github.com/phennylalanine/jhvocab/internal/screens/quiz"
	"github.com/phennylalanine/jhvocab/internal/screens/welcome"
	"github.com/phennylalanine/jhvocab/internal/session"
	"github.com/phennylalanine/jhvocab/internal/speech"
	"github.com/phennylalanine/jhvocab/internal/store"
	"github.com/phennylalanine/jhvocab/internal/ui/layout"
)

// flashDuration is how long a level-up banner replaces the header title.
const flashDuration = 2 * time.Second

// Options are the dependencies of the TUI.
type Options struct {
	Config *config.Config
	KV     store.KV
	Log    *zap.Logger

	// QuizID starts directly in that quiz when set.
	QuizID string

	// SkipWelcome starts on the home screen.
	SkipWelcome bool
}

// levelUpMsg is sent from the level-up hook.
type levelUpMsg struct {
	Level int
}

type clearFlashMsg struct{}

// sender delivers messages from hook goroutines into the running program.
type sender struct {
	p *tea.Program
}

func (s *sender) send(msg tea.Msg) {
	if s.p != nil {
		s.p.Send(msg)
	}
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts    Options
	router  *router.Router
	sender  *sender
	speaker *speech.Speaker
	width   int
	height  int
	overall int
	flash   string
	initCmd tea.Cmd
}

// newAppModel creates a new AppModel with the welcome or home screen.
func newAppModel(opts Options) (AppModel, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	m := AppModel{
		opts:    opts,
		sender:  &sender{},
		speaker: speech.New(opts.Config.Speech, opts.Log),
	}

	homeScreen := m.newHome()
	switch {
	case opts.QuizID != "":
		q, ok := opts.Config.Quiz(opts.QuizID)
		if !ok {
			return AppModel{}, fmt.Errorf("unknown quiz %q", opts.QuizID)
		}
		m.router = router.New(homeScreen)
		next := m.newQuiz(q)
		m.initCmd = func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case opts.SkipWelcome:
		m.router = router.New(homeScreen)
	default:
		m.router = router.New(welcome.New(
			hub.Summarize(context.Background(), opts.KV, opts.Config.HubEntries()),
			func() screen.Screen { return homeScreen },
		))
		m.initCmd = m.router.Active().Init()
	}
	m.overall = m.readOverall()
	return m, nil
}

func (m AppModel) newHome() *home.HomeScreen {
	return home.New(home.Deps{
		Config:     m.opts.Config,
		KV:         m.opts.KV,
		Log:        m.opts.Log,
		QuizScreen: func(q config.QuizConfig) screen.Screen { return m.newQuiz(q) },
	})
}

// newQuiz builds the screen for one catalog quiz with its loader and hooks.
func (m AppModel) newQuiz(q config.QuizConfig) screen.Screen {
	cfg := m.opts.Config
	log := m.opts.Log.With(zap.String("quiz", q.ID))

	parse := cfg.Questions.ParseOptions(q)
	parse.Logger = log
	loader := questionbank.NewLoader(parse)
	primary := cfg.Questions.ResolveSource(q.Source)
	fallback := cfg.Questions.ResolveSource(q.Fallback)

	s := m.sender
	return quiz.New(quiz.Deps{
		Quiz: q,
		KV:   m.opts.KV,
		Load: func(ctx context.Context) (*questionbank.Bank, error) {
			return loader.Load(ctx, primary, fallback)
		},
		Hooks: session.Hooks{
			OnPresent: m.speaker.OnPresent(),
			OnLevelUp: func(level int) { s.send(levelUpMsg{Level: level}) },
		},
		Log: log,
	})
}

func (m AppModel) readOverall() int {
	return hub.Summarize(context.Background(), m.opts.KV, m.opts.Config.HubEntries()).Overall
}

func (m AppModel) Init() tea.Cmd {
	return m.initCmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case levelUpMsg:
		m.flash = fmt.Sprintf("LEVEL UP! Lv %d", msg.Level)
		m.overall = m.readOverall()
		return m, tea.Tick(flashDuration, func(time.Time) tea.Msg { return clearFlashMsg{} })

	case clearFlashMsg:
		m.flash = ""
		return m, nil

	case router.PopScreenMsg, router.ReplaceScreenMsg:
		cmd := m.router.Update(msg)
		m.overall = m.readOverall()
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscHandler); ok && h.HandlesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	hdr := layout.Header{Flash: m.flash, Overall: m.overall}
	if active != nil {
		hdr.Title = active.Title()
		if c, ok := active.(screen.ComboProvider); ok {
			hdr.Combo = c.Combo()
		}
	}
	header := layout.RenderHeader(hdr, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "Any key", Description: "Continue"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)
	return layout.RenderFrame(header, footer, m.width, m.height, m.router.View)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	m, err := newAppModel(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithContext(ctx))
	m.sender.p = p

	if _, err := p.Run(); err != nil {
		m.opts.Log.Error("tui exited with error", zap.Error(err))
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
