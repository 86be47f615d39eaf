package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/questionbank"
)

var checkCmd = &cobra.Command{
	Use:   "check <source>",
	Short: "Validate a question file or URL (JSON, delimited text or XLSX)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quizID, _ := cmd.Flags().GetString("quiz")
		var q config.QuizConfig
		if quizID != "" {
			var ok bool
			if q, ok = cfg.Quiz(quizID); !ok {
				return fmt.Errorf("unknown quiz %q", quizID)
			}
		}

		opts := cfg.Questions.ParseOptions(q)
		opts.Logger = logger
		bank, err := questionbank.NewLoader(opts).LoadSource(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source:     %s\n", args[0])
		fmt.Fprintf(out, "Format:     %s\n", questionbank.DetectFormat(args[0]))
		if bank.QuizID != "" {
			fmt.Fprintf(out, "Quiz:       %s\n", bank.QuizID)
		}
		fmt.Fprintf(out, "Namespace:  %s\n", bank.Namespace)
		fmt.Fprintf(out, "Questions:  %d\n", bank.Len())

		if len(bank.Issues) > 0 {
			fmt.Fprintf(out, "\n%d issues\n", len(bank.Issues))
			for _, is := range bank.Issues {
				fmt.Fprintf(out, "  %s\n", is)
			}
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("quiz", "", "Parse with the namespace and options of this quiz")
}
