package questionbank

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// record is a question as read from a source, before normalization.
type record struct {
	ID       *int
	Prompt   string
	Answer   string
	Position int

	// Err marks a record that could not be decoded; it is skipped.
	Err error
}

// normalize turns raw records into questions. Records without text are
// skipped, missing ids are synthesized from position (or rejected with
// RequireIDs), and duplicate ids keep the first occurrence.
func normalize(records []record, opts ParseOptions) ([]Question, []Issue) {
	log := opts.logger()
	questions := make([]Question, 0, len(records))
	var issues []Issue
	seen := make(map[int]bool, len(records))

	for i, r := range records {
		pos := r.Position
		if pos == 0 {
			pos = i + 1
		}

		if r.Err != nil {
			issues = append(issues, Issue{Position: pos, Err: r.Err, Skipped: true})
			log.Warn("skipping malformed question", zap.Int("position", pos), zap.Error(r.Err))
			continue
		}

		prompt := strings.TrimSpace(r.Prompt)
		answer := strings.TrimSpace(r.Answer)
		if prompt == "" || answer == "" {
			issues = append(issues, Issue{Position: pos, Err: ErrMissingText, Skipped: true})
			log.Warn("skipping question without text", zap.Int("position", pos))
			continue
		}

		var id int
		if r.ID == nil {
			if opts.RequireIDs {
				issues = append(issues, Issue{Position: pos, Err: ErrMissingID, Skipped: true})
				log.Warn("rejecting question without id", zap.Int("position", pos))
				continue
			}
			id = i + 1
			issues = append(issues, Issue{Position: pos, Err: ErrMissingID})
			log.Warn("question has no id, using its position",
				zap.Int("position", pos), zap.Int("id", id))
		} else {
			id = *r.ID
		}

		if seen[id] {
			issues = append(issues, Issue{Position: pos, Err: ErrDuplicateID, Skipped: true})
			log.Warn("skipping duplicate question id", zap.Int("position", pos), zap.Int("id", id))
			continue
		}
		seen[id] = true

		questions = append(questions, Question{ID: id, Prompt: prompt, Answer: answer})
	}

	return questions, issues
}

var unsafeNamespaceChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// SanitizeNamespace maps a quiz id to an identifier-safe storage namespace:
// runs of characters outside [A-Za-z0-9_] become a single '_'.
func SanitizeNamespace(quizID string) string {
	s := unsafeNamespaceChars.ReplaceAllString(strings.TrimSpace(quizID), "_")
	return strings.Trim(s, "_")
}

// namespaceFor picks the sanitized quiz id, falling back to the default.
func namespaceFor(quizID string, opts ParseOptions) string {
	if ns := SanitizeNamespace(quizID); ns != "" {
		return ns
	}
	return opts.DefaultNamespace
}
