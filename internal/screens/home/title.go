package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

const titleFull = ` ╦╦ ╦╦  ╦┌─┐┌─┐┌─┐┌┐ 
 ║╠═╣╚╗╔╝│ ││  ├─┤├┴┐
╚╝╩ ╩ ╚╝ └─┘└─┘┴ ┴└─┘`

const titleCompact = "J · H · V · O · C · A · B"

func renderTitle(cw int, compact bool) string {
	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.ArcadeYellow).
		Bold(true).
		Render(title)
}

// weightedSum is Σ level·weight, the value the overall level floors.
func weightedSum(levels []hub.Level) float64 {
	var sum float64
	for _, l := range levels {
		sum += float64(l.Level) * l.Weight
	}
	return sum
}

// renderStatsBar shows the overall level and how far the weighted sum is
// from the next one.
func renderStatsBar(sum hub.Summary, cw int, compact bool) string {
	level := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
		Render(fmt.Sprintf("★ OVERALL Lv %d", sum.Overall))
	if compact {
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(level)
	}

	progress := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Σ %.1f / %d", weightedSum(sum.Levels), sum.Overall+1))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Render(level + "   " + progress)
}
