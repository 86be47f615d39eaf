package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/phennylalanine/jhvocab/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscHandler is an optional interface for screens that consume Esc
// themselves instead of letting the app pop them.
type EscHandler interface {
	HandlesEsc() bool
}

// ComboProvider is an optional interface for screens whose current combo is
// shown in the header.
type ComboProvider interface {
	Combo() int
}
