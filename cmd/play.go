package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phennylalanine/jhvocab/internal/app"
)

var playCmd = &cobra.Command{
	Use:         "play [quiz-id]",
	Short:       "Start the quiz app, optionally straight into one quiz",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationTUI: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetBool("skip-welcome")
		opts := app.Options{SkipWelcome: skip}
		if len(args) == 1 {
			if _, ok := cfg.Quiz(args[0]); !ok {
				return fmt.Errorf("unknown quiz %q (see jhvocab stats)", args[0])
			}
			opts.QuizID = args[0]
		}
		return runApp(cmd, opts)
	},
}

func init() {
	playCmd.Flags().Bool("skip-welcome", false, "Start on the home screen")
}
