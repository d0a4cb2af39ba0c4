package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alfredjeanlab/dashka/internal/config"
	"github.com/alfredjeanlab/dashka/internal/dashboard"
	"github.com/alfredjeanlab/dashka/internal/events"
	"github.com/alfredjeanlab/dashka/internal/store"
	"github.com/alfredjeanlab/dashka/internal/store/sqlite"
	"github.com/alfredjeanlab/dashka/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// memoryDB selects a throwaway in-memory store.
const memoryDB = ":memory:"

var (
	dbPath     string
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger

	// Opened on first use and released by closeResources.
	st   store.Store
	pub  events.Publisher
	dash *dashboard.Dashboard
)

var rootCmd = &cobra.Command{
	Use:           "dashka <command>",
	Short:         "Manage the dashka dashboard layout, widgets and backlogs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		if dbPath == "" {
			dbPath = cfg.DBPath
		}
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", `store path, or ":memory:" (default $DASHKA_DB_PATH or ~/.local/state/dashka/dashka.db)`)
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "layout", Title: "Layout:"},
		&cobra.Group{ID: "widgets", Title: "Widgets:"},
		&cobra.Group{ID: "backlog", Title: "Backlog:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Layout
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(breakpointsCmd)

	// Widgets
	rootCmd.AddCommand(widgetCmd)

	// Backlog
	rootCmd.AddCommand(backlogCmd)

	// System
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(watchCmd)
}

// openStore returns the store selected by --db, opening it on first use.
func openStore() (store.Store, error) {
	if st != nil {
		return st, nil
	}
	if dbPath == memoryDB {
		st = store.NewMemoryStore()
		return st, nil
	}
	s, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", dbPath, err)
	}
	st = s
	return st, nil
}

// openPublisher connects to NATS when a URL is configured. A bus that cannot
// be reached only costs the notifications, so it falls back to a no-op.
func openPublisher() events.Publisher {
	if pub != nil {
		return pub
	}
	pub = events.NoopPublisher{}
	if cfg.NATSURL == "" {
		return pub
	}
	p, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		logger.Warn("NATS unavailable, events disabled", "url", cfg.NATSURL, "err", err)
		return pub
	}
	pub = p
	return pub
}

// openDashboard loads the dashboard from the store on first use.
func openDashboard(ctx context.Context) (*dashboard.Dashboard, error) {
	if dash != nil {
		return dash, nil
	}
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	dash = dashboard.Open(ctx, s, dashboard.Options{
		Logger:           logger,
		Publisher:        openPublisher(),
		AnalyticsBaseURL: cfg.AnalyticsBaseURL,
	})
	return dash, nil
}

// closeResources flushes the dashboard and releases whatever was opened.
func closeResources(ctx context.Context) error {
	var errs []error
	if dash != nil {
		errs = append(errs, dash.Close(ctx))
		dash = nil
	}
	if pub != nil {
		errs = append(errs, pub.Close())
		pub = nil
	}
	if st != nil {
		errs = append(errs, st.Close())
		st = nil
	}
	return errors.Join(errs...)
}

// execute runs the CLI with args, writing command output to out.
func execute(ctx context.Context, args []string, out io.Writer) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeResources(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// resetFlags puts every flag of cmd and its subcommands back to its default,
// so that repeated runs in one process do not inherit earlier values.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
