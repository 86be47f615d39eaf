package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/session"
	"github.com/phennylalanine/jhvocab/internal/ui/components"
	"github.com/phennylalanine/jhvocab/internal/ui/theme"
)

// renderQuestionView renders the active question, its feedback and the
// level bar.
func (s *QuizScreen) renderQuestionView(width, height int) string {
	st := s.ctrl.State()
	if st.Phase == session.PhaseComeBackLater {
		return s.renderComeBackLater(width)
	}
	if st.Current == nil {
		return renderLoading(width)
	}

	var b strings.Builder

	// Info line.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Q %d", st.Asked))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s %d  %s %d",
			lipgloss.NewStyle().Foreground(theme.Success).Render("Score"),
			st.Score,
			lipgloss.NewStyle().Foreground(theme.Accent).Render("Combo"),
			st.Combo,
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// Prompt.
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), width, st.Current.Prompt))
	b.WriteString("\n\n")

	b.WriteString(theme.Centered(lipgloss.NewStyle(), width, "Answer: "+s.input.View()))
	b.WriteString("\n\n")

	if s.outcome != nil {
		b.WriteString(s.renderFeedback(width))
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderLevelBar(width))
	return b.String()
}

// renderFeedback renders the verdict of the last answer.
func (s *QuizScreen) renderFeedback(width int) string {
	out := s.outcome
	var b strings.Builder

	if out.Correct {
		b.WriteString(theme.Centered(theme.Correct, width, "Correct!"))
		if out.Award.Delta > 1 {
			b.WriteString("\n")
			b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.ArcadeCyan), width,
				fmt.Sprintf("Combo bonus +%d XP", out.Award.Delta)))
		}
		if out.Award.LeveledUp {
			b.WriteString("\n")
			b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true), width,
				fmt.Sprintf("Level up! Lv %d", out.Award.Level)))
		}
		return b.String()
	}

	b.WriteString(theme.Centered(theme.Incorrect, width, "Not quite"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width,
		fmt.Sprintf("Correct answer: %s", out.Expected)))
	if out.RetryAvailable {
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Hint, width, "Press R to try once more"))
	}
	return b.String()
}

// renderLevelBar renders the quiz level and XP toward the next one.
func (s *QuizScreen) renderLevelBar(width int) string {
	if s.tracker == nil {
		return ""
	}
	st := s.tracker.State()
	bar := components.NewXPBar(st.Level, st.XP, progression.XPRequired(st.Level), min(width-8, 60))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View())
}

// renderComeBackLater renders the state where every question is cooling down.
func (s *QuizScreen) renderComeBackLater(width int) string {
	st := s.ctrl.State()

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), width,
		"Great work! Come back later."))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text), width,
		"また後で来てね"))
	b.WriteString("\n\n")
	if !st.NextAvailableAt.IsZero() {
		b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width,
			"Next question unlocks "+st.NextAvailableAt.Local().Format("Jan 2 15:04")))
		b.WriteString("\n\n")
	}
	b.WriteString(s.renderLevelBar(width))
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), width, "End quiz early?"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "Your progress is already saved."))
	b.WriteString("\n\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Success), width, "[Y] Yes, end quiz"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Primary), width, "[N] No, keep going"))
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width int) string {
	return theme.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "\n\n\n  Loading questions...")
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
		fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
