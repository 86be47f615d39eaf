package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/phennylalanine/jhvocab/internal/router"
	"github.com/phennylalanine/jhvocab/internal/session"
)

func testSummary() session.Summary {
	return session.Summary{
		RunID:     "run-1",
		QuizID:    "lesson7-1",
		Duration:  3*time.Minute + 5*time.Second,
		Asked:     14,
		Correct:   11,
		Accuracy:  float64(11) / float64(14),
		BestCombo: 6,
		Level:     4,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary(), "Lesson 7-1 Quiz")
	if s.Title() != "Quiz Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Quiz Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testSummary(), "Lesson 7-1 Quiz")
	view := s.View(80, 24)
	for _, want := range []string{"Quiz complete!", "3:05", "79%", "Lesson 7-1 Quiz"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary view missing %q", want)
		}
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, code := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(testSummary(), "")
		_, cmd := s.Update(tea.KeyPressMsg{Code: code})
		if cmd == nil {
			t.Fatalf("expected a command on key %q", code)
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("expected PopScreenMsg on key %q", code)
		}
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testSummary(), "")
	if len(s.KeyHints()) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(s.KeyHints()))
	}
}
