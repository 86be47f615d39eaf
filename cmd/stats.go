package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/scheduler"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz levels, XP and the monster",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		kv, err := openKV(ctx)
		if err != nil {
			return err
		}
		defer kv.Close()

		if name, _ := cmd.Flags().GetString("monster"); name != "" {
			if sum := hub.Summarize(ctx, kv, cfg.HubEntries()); sum.Overall < hub.EggThreshold {
				return fmt.Errorf("the egg hatches at overall level %d (now %d)", hub.EggThreshold, sum.Overall)
			}
			asset, err := hub.SelectMonster(ctx, kv, name)
			if err != nil {
				return err
			}
			logger.Info("monster selected")
			fmt.Fprintf(out, "Monster set to %s (%s)\n\n", hub.DisplayName(asset), asset)
		}

		now := time.Now()
		fmt.Fprintf(out, "%-12s  %-28s  %5s  %9s  %7s\n", "Quiz", "Title", "Level", "XP", "Resting")
		fmt.Fprintln(out, strings.Repeat("─", 69))
		for _, q := range cfg.Quizzes {
			st := progression.New(ctx, kv, progression.Keys{XP: q.XPKey, Level: q.LevelKey},
				progression.WithLogger(logger)).State()
			sched := scheduler.New(ctx, kv, scheduler.BoundNamespace(ctx, kv, q.NamespaceKey(), q.Namespace),
				scheduler.WithLogger(logger))

			title := q.Title
			if len(title) > 28 {
				title = title[:25] + "..."
			}
			fmt.Fprintf(out, "%-12s  %-28s  %5d  %9s  %7d\n",
				q.ID, title, st.Level,
				fmt.Sprintf("%d/%d", st.XP, progression.XPRequired(st.Level)),
				len(sched.CoolingDown(now)))
		}

		sum := hub.Summarize(ctx, kv, cfg.HubEntries())
		fmt.Fprintf(out, "\nOverall level: %d\n", sum.Overall)
		switch {
		case sum.Asset == "":
			fmt.Fprintln(out, "Monster:       not chosen yet (jhvocab stats --monster <name>)")
		case sum.AssetName != "":
			fmt.Fprintf(out, "Monster:       %s (%s)\n", sum.AssetName, sum.Asset)
		default:
			fmt.Fprintf(out, "Monster:       %s\n", sum.Asset)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("monster", "", "Select the displayed monster, e.g. plantSlime_1")
}
