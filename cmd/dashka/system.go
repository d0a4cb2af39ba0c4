package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alfredjeanlab/dashka/internal/events"
	"github.com/alfredjeanlab/dashka/internal/export"
	"github.com/alfredjeanlab/dashka/internal/ui"
	"github.com/fsnotify/fsnotify"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Short:   "Show or change dashboard settings",
	GroupID: "system",
}

var settingsBaseURLCmd = &cobra.Command{
	Use:   "base-url [url]",
	Short: "Show or set the analytics base URL",
	Example: `  dashka settings base-url
  dashka settings base-url https://analytics.example.com
  dashka settings base-url --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("clear")
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}

		var u string
		switch {
		case reset:
			u, err = d.SetAnalyticsBaseURL(cmd.Context(), "")
		case len(args) == 1:
			u, err = d.SetAnalyticsBaseURL(cmd.Context(), args[0])
		default:
			u = d.AnalyticsBaseURL(cmd.Context())
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{"analyticsBaseUrl": u})
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	Short:   "Write the whole dashboard as JSONL (stdout by default)",
	GroupID: "system",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		if len(args) == 0 || args[0] == "-" {
			return export.ExportJSONL(cmd.Context(), s, cmd.OutOrStdout())
		}

		var buf bytes.Buffer
		if err := export.ExportJSONL(cmd.Context(), s, &buf); err != nil {
			return err
		}
		if err := os.WriteFile(args[0], buf.Bytes(), 0o600); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Load a dashboard written by export",
	Long: `Load a dashboard written by export.

The file is checked in full before anything is written, and all entries are
written in one transaction. With --replace, stored keys that are not in the
file are deleted, so the store ends up equal to the snapshot.`,
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		n, err := export.ImportJSONL(cmd.Context(), s, r, export.ImportOptions{Replace: replace})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", n)
		return nil
	},
}

// topicStoreChanged labels the events printed by the file watcher.
const topicStoreChanged = "store.changed"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print dashboard changes as they happen",
	Long: `Print dashboard changes as they happen.

With a NATS URL configured every dashka event is printed. Without one the
store file is watched instead and a line is printed after each write.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if cfg.NATSURL != "" {
			return watchNATS(ctx, cmd.OutOrStdout(), cfg.NATSURL)
		}
		if dbPath == memoryDB {
			return errors.New("nothing to watch: an in-memory store without DASHKA_NATS_URL")
		}
		return watchStore(ctx, cmd.OutOrStdout(), dbPath, 200*time.Millisecond)
	},
}

// watchNATS prints every dashka event until ctx is done.
func watchNATS(ctx context.Context, out io.Writer, natsURL string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats: disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := printEvent(out, msg, time.Now()); err != nil {
				return err
			}
		}
	}
}

// watchStore prints a line once writes to the store file settle. SQLite
// writes land in the -wal and -shm files next to it, so the directory is
// watched and events are matched by name prefix.
func watchStore(ctx context.Context, out io.Writer, path string, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	base := filepath.Base(path)
	payload, _ := json.Marshal(map[string]string{"path": path})

	timer := time.NewTimer(0)
	timer.Stop()
	select {
	case <-timer.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "err", err)
		case <-timer.C:
			if err := printEvent(out, events.Message{Topic: topicStoreChanged, Data: payload}, time.Now()); err != nil {
				return err
			}
		}
	}
}

func printEvent(out io.Writer, msg events.Message, at time.Time) error {
	if jsonOutput {
		return json.NewEncoder(out).Encode(struct {
			Topic string          `json:"topic"`
			Time  time.Time       `json:"time"`
			Data  json.RawMessage `json:"data"`
		}{msg.Topic, at, json.RawMessage(msg.Data)})
	}
	_, err := fmt.Fprintf(out, "%s %s %s\n", ui.RenderMuted(at.Format("15:04:05")), ui.RenderAccent(msg.Topic), msg.Data)
	return err
}

func init() {
	settingsBaseURLCmd.Flags().Bool("clear", false, "forget the stored URL and use the default")
	settingsCmd.AddCommand(settingsBaseURLCmd)

	importCmd.Flags().Bool("replace", false, "delete stored keys that are not in the file")
}
