package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/scheduler"
)

var resetCmd = &cobra.Command{
	Use:   "reset <quiz-id>",
	Short: "Reset a quiz's question history and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		metaOnly, _ := cmd.Flags().GetBool("meta-only")
		progressOnly, _ := cmd.Flags().GetBool("progress-only")
		if metaOnly && progressOnly {
			return fmt.Errorf("use --meta-only or --progress-only, not both")
		}

		q, ok := cfg.Quiz(args[0])
		if !ok {
			return fmt.Errorf("unknown quiz %q", args[0])
		}

		kv, err := openKV(ctx)
		if err != nil {
			return err
		}
		defer kv.Close()

		log := logger.With(zap.String("quiz", q.ID))
		out := cmd.OutOrStdout()

		if !progressOnly {
			ns := scheduler.BoundNamespace(ctx, kv, q.NamespaceKey(), q.Namespace)
			if err := scheduler.New(ctx, kv, ns, scheduler.WithLogger(log)).Reset(ctx); err != nil {
				return err
			}
			log.Info("question meta reset")
			fmt.Fprintf(out, "Question history of %s cleared\n", q.ID)
		}
		if !metaOnly {
			tracker := progression.New(ctx, kv, progression.Keys{XP: q.XPKey, Level: q.LevelKey},
				progression.WithLogger(log))
			if err := tracker.Reset(ctx); err != nil {
				return err
			}
			log.Info("progress reset")
			fmt.Fprintf(out, "Level and XP of %s reset\n", q.ID)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("meta-only", false, "Only clear the question history (counters and cooldowns)")
	resetCmd.Flags().Bool("progress-only", false, "Only reset level and XP")
}
