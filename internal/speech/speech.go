// Package speech reads answers aloud through an external command such as
// espeak or say.
package speech

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/questionbank"
)

// DefaultTimeout bounds one utterance.
const DefaultTimeout = 10 * time.Second

// Speaker runs the configured command with the text as its last argument.
type Speaker struct {
	command string
	args    []string
	timeout time.Duration
	log     *zap.Logger
}

// New returns a Speaker, or nil when no command is configured.
func New(cfg config.SpeechConfig, log *zap.Logger) *Speaker {
	if cfg.Command == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Speaker{
		command: cfg.Command,
		args:    cfg.Args,
		timeout: DefaultTimeout,
		log:     log,
	}
}

// Say speaks text and waits for the command to finish.
func (s *Speaker) Say(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append(append([]string(nil), s.args...), text)
	out, err := exec.CommandContext(ctx, s.command, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w (%s)", s.command, err, out)
	}
	return nil
}

// OnPresent returns a presentation hook that speaks each question's answer.
// A nil Speaker yields a nil hook.
func (s *Speaker) OnPresent() func(questionbank.Question) {
	if s == nil {
		return nil
	}
	return func(q questionbank.Question) {
		if err := s.Say(context.Background(), q.Answer); err != nil {
			s.log.Warn("speech failed", zap.Int("id", q.ID), zap.Error(err))
		}
	}
}
