package session

import "time"

// Summary holds the data displayed when a quiz run ends.
type Summary struct {
	RunID     string
	QuizID    string
	Duration  time.Duration
	Asked     int
	Correct   int
	Accuracy  float64
	BestCombo int
	Level     int
}

// Summary builds the end-of-run summary at now.
func (c *Controller) Summary(now time.Time) Summary {
	s := c.state
	var d time.Duration
	if !s.StartTime.IsZero() {
		d = now.Sub(s.StartTime)
	}
	return Summary{
		RunID:     s.ID,
		QuizID:    c.quizID,
		Duration:  d,
		Asked:     s.Asked,
		Correct:   s.Score,
		Accuracy:  s.Accuracy(),
		BestCombo: s.BestCombo,
		Level:     s.Level,
	}
}
