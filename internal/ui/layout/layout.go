package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

// The quiz card and XP bar need 60 columns; the home catalog needs about
// 20 rows in compact mode.
const (
	MinWidth  = 60
	MinHeight = 20

	compactWidth  = 100
	compactHeight = 22
)

// KeyHint is one footer entry.
type KeyHint struct {
	Key         string
	Description string
}

// Header is what the top bar shows for the active screen.
type Header struct {
	Title   string
	Flash   string // replaces Title while set, e.g. a level-up banner
	Overall int    // weighted level across quizzes
	Combo   int    // hidden when zero
}

// IsTooSmall reports whether the terminal cannot fit a quiz card.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// IsCompact reports whether a screen should drop art and borders to fit a
// content area of width x height.
func IsCompact(width, height int) bool {
	return width < compactWidth || height < compactHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Align(lipgloss.Center).Foreground(theme.Text).Render(fmt.Sprintf(
			"Terminal too small!\n画面を大きくしてください\n\nneed %d x %d, have %d x %d",
			MinWidth, MinHeight, width, height,
		)))
}

// RenderHeader renders the top bar: app name, the screen title (or flash)
// in the middle, and the overall level with the running combo on the right.
func RenderHeader(h Header, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("JHVocab")

	center := lipgloss.NewStyle().Foreground(theme.Text).Render(h.Title)
	if h.Flash != "" {
		center = lipgloss.NewStyle().
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			Bold(true).
			Padding(0, 1).
			Render(h.Flash)
	}

	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("★ Lv %d", h.Overall))
	if h.Combo > 0 {
		right = lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Render(fmt.Sprintf("⚡ %d", h.Combo)) +
			"  " + right
	}

	inner := max(width-4, 0)
	side := max(lipgloss.Width(left), lipgloss.Width(right))
	mid := max(inner-2*side, lipgloss.Width(center))

	row := lipgloss.NewStyle().Width(side).Render(left) +
		lipgloss.NewStyle().Width(mid).Align(lipgloss.Center).Render(center) +
		lipgloss.NewStyle().Width(side).Align(lipgloss.Right).Render(right)

	return bar().Width(width).Render(row)
}

// RenderFooter renders key hints, dropping trailing hints that do not fit.
func RenderFooter(hints []KeyHint, width int) string {
	sep := lipgloss.NewStyle().Foreground(theme.Border).Render(" · ")
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	room := max(width-4, 0)
	for i, h := range hints {
		part := key.Render(h.Key) + " " + desc.Render(h.Description)
		if i > 0 {
			part = sep + part
		}
		if lipgloss.Width(b.String()+part) > room {
			break
		}
		b.WriteString(part)
	}
	return bar().Width(width).Render(b.String())
}

func bar() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
}

// RenderFrame stacks header, body and footer. body receives the space left
// between the two bars.
func RenderFrame(header, footer string, width, height int, body func(width, height int) string) string {
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().Width(width).Height(h).MaxHeight(h).Render(body(width, h))
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}
