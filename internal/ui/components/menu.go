package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

// CardKind tells a quiz card from a plain action.
type CardKind int

const (
	CardQuiz   CardKind = iota // Shows a level badge
	CardAction                 // No badge
)

// Card is one entry of the home catalog.
type Card struct {
	Kind  CardKind
	Icon  string
	Title string
	Level int

	// Locked cards are shown dimmed with LockHint and cannot be chosen.
	Locked   bool
	LockHint string

	Action func() tea.Cmd
}

// Badge returns the right-hand tag of the card.
func (c Card) Badge() string {
	switch {
	case c.Locked:
		return "🔒 " + c.LockHint
	case c.Kind == CardQuiz:
		return fmt.Sprintf("Lv %d", c.Level)
	}
	return ""
}

// Label returns the unstyled card text.
func (c Card) Label() string {
	s := c.Title
	if c.Icon != "" {
		s = c.Icon + " " + s
	}
	if b := c.Badge(); b != "" {
		s += "  " + b
	}
	return s
}

// CardMenu is a vertical list of cards. Up and down wrap around and skip
// locked cards; digits 1-9 open the matching card directly.
type CardMenu struct {
	Cards    []Card
	Selected int
}

// NewCardMenu creates a menu selecting the first open card at or after
// selected.
func NewCardMenu(cards []Card, selected int) CardMenu {
	m := CardMenu{Cards: cards, Selected: -1}
	for i := range cards {
		j := (max(selected, 0) + i) % len(cards)
		if !cards[j].Locked {
			m.Selected = j
			break
		}
	}
	return m
}

// move steps the selection by dir over open cards.
func (m CardMenu) move(dir int) CardMenu {
	n := len(m.Cards)
	for step := 1; step < n; step++ {
		j := ((m.Selected+dir*step)%n + n) % n
		if !m.Cards[j].Locked {
			m.Selected = j
			break
		}
	}
	return m
}

func (m CardMenu) choose(i int) tea.Cmd {
	if i < 0 || i >= len(m.Cards) {
		return nil
	}
	c := m.Cards[i]
	if c.Locked || c.Action == nil {
		return nil
	}
	return c.Action()
}

// Update handles navigation keys.
func (m CardMenu) Update(msg tea.Msg) (CardMenu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || m.Selected < 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		return m.move(-1), nil
	case "down", "j":
		return m.move(1), nil
	case "enter":
		return m, m.choose(m.Selected)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Cards) && !m.Cards[i].Locked {
				m.Selected = i
				return m, m.choose(i)
			}
		}
	}
	return m, nil
}

// View renders the cards at content width cw. Compact mode drops the
// borders for short terminals.
func (m CardMenu) View(cw int, compact bool) string {
	rows := make([]string, len(m.Cards))
	for i, c := range m.Cards {
		rows[i] = m.renderCard(i, c, cw, compact)
	}
	align := lipgloss.Center
	if compact {
		align = lipgloss.Left
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(align, rows...))
}

func (m CardMenu) renderCard(i int, c Card, cw int, compact bool) string {
	selected := i == m.Selected

	fg := theme.Text
	switch {
	case c.Locked:
		fg = theme.TextDim
	case selected:
		fg = theme.BgDark
	}

	marker := "  "
	if selected {
		marker = "▸ "
	}
	title := c.Title
	if c.Icon != "" {
		title = c.Icon + " " + title
	}
	badge := c.Badge()

	if compact {
		line := marker + title
		if badge != "" {
			line += "  " + badge
		}
		style := lipgloss.NewStyle().Foreground(fg)
		if selected {
			style = style.Background(theme.ArcadeYellow).Bold(true)
		}
		return style.Render(line)
	}

	inner := cw - 6
	gap := max(inner-lipgloss.Width(marker+title)-lipgloss.Width(badge), 1)
	line := marker + title + fmt.Sprintf("%*s", gap, "") + badge

	style := lipgloss.NewStyle().
		Width(cw - 2).
		Foreground(fg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	if selected {
		style = style.Bold(true).Background(theme.ArcadeYellow).BorderForeground(theme.ArcadeYellow)
	}
	return style.Render(line)
}
