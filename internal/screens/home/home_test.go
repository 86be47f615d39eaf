package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/router"
	"github.com/phennylalanine/jhvocab/internal/screen"
	"github.com/phennylalanine/jhvocab/internal/store"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return s.title }
func (s *stubScreen) Title() string                          { return s.title }

func testConfig() *config.Config {
	return &config.Config{
		Quizzes: config.DefaultQuizzes(),
		Hub:     config.HubConfig{Entries: hub.DefaultEntries()},
	}
}

func newTestHome(t *testing.T, kv store.KV) *HomeScreen {
	t.Helper()
	return New(Deps{
		Config:     testConfig(),
		KV:         kv,
		QuizScreen: func(q config.QuizConfig) screen.Screen { return &stubScreen{title: q.ID} },
	})
}

func setLevel(t *testing.T, kv store.KV, key, level string) {
	t.Helper()
	if err := kv.Set(context.Background(), key, level); err != nil {
		t.Fatal(err)
	}
}

func TestHomeScreen_ListsQuizLevels(t *testing.T) {
	kv := store.NewMemory()
	setLevel(t, kv, "lesson7-1sLevelr", "3")
	h := newTestHome(t, kv)

	cards := h.menu.Cards
	if len(cards) != len(config.DefaultQuizzes())+2 {
		t.Fatalf("menu cards = %d", len(cards))
	}
	if cards[0].Level != 3 || !strings.Contains(cards[0].Label(), "Lv 3") {
		t.Errorf("card %q missing level 3", cards[0].Label())
	}
	if !strings.Contains(cards[1].Label(), "Lv 0") {
		t.Errorf("card %q missing level", cards[1].Label())
	}
	if h.View(120, 40) == "" {
		t.Error("expected non-empty view")
	}
}

func TestHomeScreen_EnterPushesQuiz(t *testing.T) {
	h := newTestHome(t, store.NewMemory())

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if msg.Screen.Title() != "lesson7-1" {
		t.Errorf("pushed %q, want lesson7-1", msg.Screen.Title())
	}
}

func TestHomeScreen_MonsterLockedUntilHatch(t *testing.T) {
	h := newTestHome(t, store.NewMemory())
	monster := len(h.menu.Cards) - 2
	if !h.menu.Cards[monster].Locked {
		t.Error("monster card must be locked below the hatch level")
	}
	if !strings.Contains(h.menu.Cards[monster].Label(), "Lv 5") {
		t.Errorf("locked card %q should name the hatch level", h.menu.Cards[monster].Label())
	}
	if h.Overall() != 0 {
		t.Errorf("Overall = %d, want 0", h.Overall())
	}
}

func TestHomeScreen_CycleMonster(t *testing.T) {
	kv := store.NewMemory()
	// 10 × 0.5 = 5
	setLevel(t, kv, "buildingMlevelr", "10")
	h := newTestHome(t, kv)

	monster := len(h.menu.Cards) - 2
	if h.menu.Cards[monster].Locked {
		t.Fatal("monster card must be open once hatched")
	}
	h.menu.Selected = monster

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a select command")
	}
	scr, _ := h.Update(cmd())
	h = scr.(*HomeScreen)

	asset, ok, err := kv.Get(context.Background(), hub.SelectedMonsterKey)
	if err != nil || !ok {
		t.Fatalf("selected monster not stored: ok=%v err=%v", ok, err)
	}
	if asset == hub.EggAsset {
		t.Error("cycling must skip the egg")
	}
	if h.summary.Asset != asset {
		t.Errorf("summary asset = %q, want %q", h.summary.Asset, asset)
	}
	if h.menu.Selected != monster {
		t.Errorf("selection lost after refresh: %d", h.menu.Selected)
	}
}

func TestHomeScreen_ResumeRefreshes(t *testing.T) {
	kv := store.NewMemory()
	h := newTestHome(t, kv)

	setLevel(t, kv, "verb1Levelr", "7")
	h.Resume()
	if h.menu.Cards[1].Level != 7 {
		t.Errorf("card %q not refreshed", h.menu.Cards[1].Label())
	}
}

func TestHomeScreen_DigitOpensQuiz(t *testing.T) {
	h := newTestHome(t, store.NewMemory())

	_, cmd := h.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if msg.Screen.Title() != "verb1" {
		t.Errorf("pushed %q, want verb1", msg.Screen.Title())
	}
}

func TestHomeScreen_ViewShowsEggProgress(t *testing.T) {
	kv := store.NewMemory()
	setLevel(t, kv, "buildingMlevelr", "4") // 4 × 0.5 = 2
	h := newTestHome(t, kv)

	view := h.View(120, 40)
	if !strings.Contains(view, "now Lv 2") {
		t.Errorf("view missing egg progress:\n%s", view)
	}
	if !strings.Contains(view, "Σ 2.0 / 3") {
		t.Errorf("view missing weighted progress:\n%s", view)
	}
}
