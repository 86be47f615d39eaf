package home

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/router"
	"github.com/phennylalanine/jhvocab/internal/screen"
	"github.com/phennylalanine/jhvocab/internal/store"
	"github.com/phennylalanine/jhvocab/internal/ui/components"
	"github.com/phennylalanine/jhvocab/internal/ui/layout"
)

// Deps are the collaborators of the home screen.
type Deps struct {
	Config *config.Config
	KV     store.KV
	Log    *zap.Logger

	// QuizScreen builds the screen that plays a catalog quiz.
	QuizScreen func(q config.QuizConfig) screen.Screen
}

// HomeScreen lists the quiz catalog with each quiz's level and shows the
// overall level and monster.
type HomeScreen struct {
	deps    Deps
	menu    components.CardMenu
	summary hub.Summary
	levels  map[string]int
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ router.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	h := &HomeScreen{deps: deps}
	h.refresh()
	return h
}

// refresh rereads levels from the store and rebuilds the cards, keeping the
// selection.
func (h *HomeScreen) refresh() {
	ctx := context.Background()
	cfg := h.deps.Config

	h.summary = hub.Summarize(ctx, h.deps.KV, cfg.HubEntries())
	h.levels = make(map[string]int, len(cfg.Quizzes))

	cards := make([]components.Card, 0, len(cfg.Quizzes)+2)
	for _, q := range cfg.Quizzes {
		h.levels[q.ID] = hub.ReadLevel(ctx, h.deps.KV, q.LevelKey)
		title := q.Title
		if q.TitleJP != "" {
			title = q.TitleJP
		}
		cards = append(cards, components.Card{
			Kind:  components.CardQuiz,
			Icon:  q.Icon,
			Title: title,
			Level: h.levels[q.ID],
			Action: func() tea.Cmd {
				next := h.deps.QuizScreen(q)
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			},
		})
	}

	hatched := h.summary.Overall >= hub.EggThreshold
	monster := components.Card{
		Kind:     components.CardAction,
		Icon:     "🥚",
		Title:    "MONSTER",
		Locked:   !hatched,
		LockHint: fmt.Sprintf("Lv %d", hub.EggThreshold),
		Action:   h.cycleMonster,
	}
	if hatched {
		monster.Icon = "👾"
		if h.summary.AssetName != "" {
			monster.Title = "MONSTER: " + h.summary.AssetName
		}
	}
	cards = append(cards, monster,
		components.Card{Kind: components.CardAction, Title: "EXIT", Action: func() tea.Cmd { return tea.Quit }})

	h.menu = components.NewCardMenu(cards, h.menu.Selected)
}

// monsterSelectedMsg reports a stored monster choice.
type monsterSelectedMsg struct {
	Asset string
	Err   error
}

// cycleMonster stores the monster after the current one.
func (h *HomeScreen) cycleMonster() tea.Cmd {
	names := slices.DeleteFunc(hub.Monsters(), func(n string) bool {
		return n+".png" == hub.EggAsset
	})
	cur := strings.TrimSuffix(h.summary.Asset, ".png")
	next := names[0]
	if i := slices.Index(names, cur); i >= 0 {
		next = names[(i+1)%len(names)]
	}
	kv := h.deps.KV
	return func() tea.Msg {
		asset, err := hub.SelectMonster(context.Background(), kv, next)
		return monsterSelectedMsg{Asset: asset, Err: err}
	}
}

// Overall returns the overall level for the header.
func (h *HomeScreen) Overall() int {
	return h.summary.Overall
}

// Resume refreshes levels after a quiz returns to home.
func (h *HomeScreen) Resume() tea.Cmd {
	h.refresh()
	return nil
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(monsterSelectedMsg); ok {
		if msg.Err != nil {
			h.deps.Log.Warn("select monster failed", zap.Error(msg.Err))
			return h, nil
		}
		h.refresh()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "1-9", Description: "Jump"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompact(width, height)

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, components.MonsterBox(h.summary, cw))
	}
	sections = append(sections, renderStatsBar(h.summary, cw, compact))
	sections = append(sections, h.menu.View(cw, compact))

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
