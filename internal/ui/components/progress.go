package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

const (
	xpFilled = "█"
	xpEmpty  = "░"
)

// XPBar shows a quiz level and the XP collected toward the next level.
type XPBar struct {
	Level    int
	XP       int
	Required int
	Width    int
}

// NewXPBar creates an XP bar that fits in width columns.
func NewXPBar(level, xp, required, width int) XPBar {
	return XPBar{Level: level, XP: xp, Required: required, Width: width}
}

// Fraction returns the filled share of the bar in [0, 1].
func (b XPBar) Fraction() float64 {
	if b.Required <= 0 {
		return 0
	}
	return min(max(float64(b.XP)/float64(b.Required), 0), 1)
}

// View renders "Lv N ████░░░░ xp/required XP".
func (b XPBar) View() string {
	badge := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
		Render(fmt.Sprintf("Lv %d", b.Level))
	count := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d/%d XP", b.XP, b.Required))

	cells := max(b.Width-lipgloss.Width(badge)-lipgloss.Width(count)-2, 4)
	filled := int(float64(cells) * b.Fraction())

	bar := lipgloss.NewStyle().Foreground(theme.Success).Render(strings.Repeat(xpFilled, filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat(xpEmpty, cells-filled))

	return badge + " " + bar + " " + count
}
