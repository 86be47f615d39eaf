package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/router"
	"github.com/phennylalanine/jhvocab/internal/screen"
	"github.com/phennylalanine/jhvocab/internal/session"
	"github.com/phennylalanine/jhvocab/internal/ui/components"
	"github.com/phennylalanine/jhvocab/internal/ui/layout"
	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

// SummaryScreen displays the end-of-run summary.
type SummaryScreen struct {
	summary   session.Summary
	quizTitle string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary session.Summary, quizTitle string) *SummaryScreen {
	return &SummaryScreen{summary: summary, quizTitle: quizTitle}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			// The quiz screen was replaced by this one, so a single pop
			// returns home.
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	cw := components.ContentWidth(width)

	var b strings.Builder

	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), cw,
		"Quiz complete!"))
	b.WriteString("\n")
	if s.quizTitle != "" {
		b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), cw, s.quizTitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), cw,
		fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	stats := []components.Stat{
		{Label: "Questions", Value: fmt.Sprintf("%d", sum.Asked)},
		{Label: "Correct", Value: fmt.Sprintf("%d", sum.Correct)},
		{Label: "Accuracy", Value: fmt.Sprintf("%.0f%%", sum.Accuracy*100)},
		{Label: "Best combo", Value: fmt.Sprintf("%d", sum.BestCombo)},
		{Label: "Level", Value: fmt.Sprintf("%d", sum.Level)},
	}
	b.WriteString(components.ResultCard(stats, cw))

	return components.CabinetFrame(b.String(), width, height)
}
