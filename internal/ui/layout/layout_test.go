package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{60, 20, false},
		{59, 20, true},
		{60, 19, true},
		{120, 40, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestIsCompact(t *testing.T) {
	if IsCompact(120, 30) {
		t.Error("120x30 should fit the full home screen")
	}
	if !IsCompact(80, 30) || !IsCompact(120, 20) {
		t.Error("narrow or short content areas should be compact")
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader(Header{Title: "7-1 第1戦", Overall: 5}, 100)
	if !strings.Contains(h, "Lv 5") || !strings.Contains(h, "7-1 第1戦") {
		t.Errorf("header missing title or level: %q", h)
	}
	if strings.Contains(h, "⚡") {
		t.Errorf("header shows combo when zero: %q", h)
	}

	h = RenderHeader(Header{Title: "7-1 第1戦", Flash: "LEVEL UP! Lv 3", Overall: 5, Combo: 3}, 100)
	if !strings.Contains(h, "⚡ 3") {
		t.Errorf("header missing combo: %q", h)
	}
	if !strings.Contains(h, "LEVEL UP! Lv 3") || strings.Contains(h, "第1戦") {
		t.Errorf("flash should replace the title: %q", h)
	}
}

func TestRenderFooterDropsOverflow(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
		{Key: "Ctrl+C", Description: "Exit the program right now"},
	}
	f := RenderFooter(hints, 100)
	for _, h := range hints {
		if !strings.Contains(f, h.Description) {
			t.Errorf("wide footer missing %q", h.Description)
		}
	}

	f = RenderFooter(hints, 30)
	if !strings.Contains(f, "Submit") {
		t.Errorf("narrow footer lost the first hint: %q", f)
	}
	if strings.Contains(f, "right now") {
		t.Errorf("narrow footer kept an overflowing hint: %q", f)
	}
}

func TestRenderFrameGivesBodyTheRest(t *testing.T) {
	header := RenderHeader(Header{Title: "Home"}, 80)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "Quit"}}, 80)

	var gotW, gotH int
	out := RenderFrame(header, footer, 80, 30, func(w, h int) string {
		gotW, gotH = w, h
		return "body"
	})

	want := 30 - lipgloss.Height(header) - lipgloss.Height(footer)
	if gotW != 80 || gotH != want {
		t.Errorf("body got %dx%d, want 80x%d", gotW, gotH, want)
	}
	if lipgloss.Height(out) != 30 {
		t.Errorf("frame height = %d, want 30", lipgloss.Height(out))
	}
}
