package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phennylalanine/jhvocab/internal/app"
	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/logging"
	"github.com/phennylalanine/jhvocab/internal/store"
)

// annotationTUI marks commands that take over the terminal; their logs go to
// the log file only.
const annotationTUI = "tui"

var (
	v       = config.New()
	cfgFile string

	cfg         *config.Config
	logger      = zap.NewNop()
	closeLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "jhvocab",
	Short: "English vocabulary quizzes for junior high students",
	Long: "JHVocab is a terminal vocabulary drill. Type the English for each Japanese prompt, " +
		"level up every quiz and grow a monster.",
	Annotations:       map[string]string{annotationTUI: "true"},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.Options{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to config file (default $XDG_CONFIG_HOME/jhvocab/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides JHVOCAB_DB env var)")
	pf.String("storage", "", "Storage driver: sqlite, redis or memory")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	_ = v.BindPFlag("storage.path", pf.Lookup("db"))
	_ = v.BindPFlag("storage.driver", pf.Lookup("storage"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and opens the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	var console io.Writer = os.Stderr
	if cmd.Annotations[annotationTUI] == "true" {
		console = nil
	}
	l, closeFn, err := logging.New(logging.Options{LogConfig: c.Log, Console: console})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	cfg = c
	logger = l.With(zap.String("cmd", cmd.Name()))
	closeLogger = closeFn
	return nil
}

// resolveDBPath returns the database path using --db or storage.path
// (highest priority), then JHVOCAB_DB env var, then the default XDG path.
func resolveDBPath() (string, error) {
	if p := cfg.Storage.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openKV opens the configured storage backend.
func openKV(ctx context.Context) (store.KV, error) {
	var path string
	if d := store.Driver(cfg.Storage.Driver); d == store.DriverSQLite || d == "" {
		p, err := resolveDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	}
	kv, err := store.OpenKV(ctx, cfg.Storage.StoreOptions(path))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", zap.String("driver", cfg.Storage.Driver), zap.String("path", path))
	return kv, nil
}

// runApp opens the store and launches the TUI.
func runApp(cmd *cobra.Command, opts app.Options) error {
	ctx := cmd.Context()
	kv, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	opts.Config = cfg
	opts.KV = kv
	opts.Log = logger
	return app.Run(ctx, opts)
}
