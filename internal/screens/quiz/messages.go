package quiz

import (
	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/session"
)

// quizReadyMsg is sent when the bank is loaded and the run is wired.
type quizReadyMsg struct {
	Controller *session.Controller
	Tracker    *progression.Tracker
	Err        error
}

// quizEndMsg is sent to trigger the end-of-run flow.
type quizEndMsg struct{}
