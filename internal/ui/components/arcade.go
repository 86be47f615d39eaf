package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

const (
	minContentWidth = 24
	maxContentWidth = 60
)

// ContentWidth returns the inner width shared by every box inside a cabinet
// frame of frameWidth columns.
func ContentWidth(frameWidth int) int {
	// border (2) + padding (4)
	return min(max(frameWidth-6, minContentWidth), maxContentWidth)
}

// CabinetFrame draws the double border around a screen and centers content
// inside it.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Stat is one labelled value of a result card.
type Stat struct {
	Label string
	Value string
}

// ResultCard renders stats as aligned label/value rows in a rounded card.
func ResultCard(stats []Stat, cw int) string {
	labelWidth := 0
	for _, s := range stats {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}

	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(labelWidth + 3)
	value := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)

	rows := make([]string, len(stats))
	for i, s := range stats {
		rows[i] = label.Render(s.Label) + value.Render(s.Value)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(strings.Join(rows, "\n"))
}

const eggArt = `   ╭─────╮
  ╱ ?   ? ╲
 │  ░░░░░  │
 │ ░░░░░░░ │
  ╲_______╱`

const monsterArt = `  ╭─────╮
 ╭┤ ◉ ◉ ├╮
 ││  ▽  ││
 ╰┤ ~~~ ├╯
  ╰┬───┬╯`

// MonsterArt returns the art of a hub asset: the egg while unhatched or
// unchosen, otherwise the monster.
func MonsterArt(asset string) string {
	if asset == "" || asset == hub.EggAsset {
		return lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Render(eggArt)
	}
	return lipgloss.NewStyle().Foreground(theme.Success).Render(monsterArt)
}

// MonsterCaption names the monster, or tells how far the egg is from
// hatching.
func MonsterCaption(sum hub.Summary) string {
	switch {
	case sum.Overall < hub.EggThreshold:
		return fmt.Sprintf("Egg hatches at Lv %d (now Lv %d)", hub.EggThreshold, sum.Overall)
	case sum.AssetName != "":
		return sum.AssetName
	case sum.Asset != "":
		return strings.TrimSuffix(sum.Asset, ".png")
	default:
		return "Choose your monster!"
	}
}

// MonsterBox renders the art and caption centered at content width.
func MonsterBox(sum hub.Summary, cw int) string {
	caption := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(MonsterCaption(sum))
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, MonsterArt(sum.Asset), "", caption))
}
