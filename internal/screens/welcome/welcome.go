package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/router"
	"github.com/phennylalanine/jhvocab/internal/screen"
	"github.com/phennylalanine/jhvocab/internal/ui/components"
	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

const (
	frameInterval = 120 * time.Millisecond
	revealFrame   = 8
	settleFrame   = 12
)

// wobble is the horizontal offset of the art per frame until the reveal.
var wobble = []int{0, 2, 0, -2}

type frameMsg struct{}

// WelcomeScreen wobbles the player's egg (or shows their monster), then
// reveals the title. Any key moves on to the next screen, also mid-animation.
type WelcomeScreen struct {
	summary      hub.Summary
	next         func() screen.Screen
	frame        int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a splash for sum that replaces itself with next().
func New(sum hub.Summary, next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{summary: sum, next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (w *WelcomeScreen) revealed() bool { return w.frame >= revealFrame }

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.transitioned || w.frame >= settleFrame {
			return w, nil
		}
		w.frame++
		if w.frame >= settleFrame {
			return w, nil
		}
		return w, nextFrame()

	case tea.KeyPressMsg:
		if w.transitioned {
			return w, nil
		}
		w.transitioned = true
		s := w.next()
		return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: s} }
	}
	return w, nil
}

func (w *WelcomeScreen) View(width, height int) string {
	art := components.MonsterArt(w.summary.Asset)
	if !w.revealed() {
		shift := wobble[w.frame%len(wobble)]
		art = lipgloss.NewStyle().PaddingLeft(2 + shift).PaddingRight(2 - shift).Render(art)
	}

	sections := []string{art}
	if w.revealed() {
		caption := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
			Render(components.MonsterCaption(w.summary))
		tagline := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
			Render("英単語でモンスターを育てよう!")
		sections = append(sections, caption, "", RenderBanner(width), "", tagline)
	}
	hint := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
		Render("press any key to continue")
	sections = append(sections, "", hint)

	content := lipgloss.NewStyle().Align(lipgloss.Center).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
