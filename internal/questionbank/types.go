package questionbank

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Question is a single prompt/answer pair. ID is the identity used to key
// per-question scheduler meta across sessions.
type Question struct {
	ID     int    `json:"id"`
	Prompt string `json:"jp"`
	Answer string `json:"en"`
}

// Bank is a loaded, validated set of questions for one quiz.
type Bank struct {
	// QuizID is the identifier declared by the source document, if any.
	QuizID string

	// Namespace keys the scheduler meta in storage.
	Namespace string

	Questions []Question

	// Issues lists records that were skipped or repaired while loading.
	Issues []Issue
}

// Len returns the number of usable questions.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Questions)
}

// ByID looks up a question by its identity.
func (b *Bank) ByID(id int) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

var (
	// ErrNoQuestions means no source produced a usable question.
	ErrNoQuestions = errors.New("no questions available")

	// ErrMissingID marks a record without an id, either rejected or given a
	// positional id.
	ErrMissingID = errors.New("record has no id")

	// ErrMissingText marks a record without prompt or answer text.
	ErrMissingText = errors.New("record is missing prompt or answer text")

	// ErrDuplicateID marks a record whose id was already used.
	ErrDuplicateID = errors.New("duplicate question id")

	// ErrMalformed marks a line or row that could not be parsed.
	ErrMalformed = errors.New("malformed record")
)

// Issue describes a problem with one record of the source.
type Issue struct {
	// Position is the 1-based record index, line number or spreadsheet row.
	Position int
	Err      error
	// Skipped is false when the record was kept after repair (positional id).
	Skipped bool
}

func (i Issue) String() string {
	action := "skipped"
	if !i.Skipped {
		action = "kept"
	}
	return fmt.Sprintf("#%d: %v (%s)", i.Position, i.Err, action)
}

// ParseOptions controls normalization shared by every format.
type ParseOptions struct {
	// DefaultNamespace is used when the source carries no quiz id.
	DefaultNamespace string

	// RequireIDs rejects records without an explicit id instead of assigning
	// their 1-based position.
	RequireIDs bool

	// XLSX column layout.
	XLSX XLSXOptions

	Logger *zap.Logger
}

func (o ParseOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
