// Package persist reads and writes JSON values through a store.Store and
// turns absent, unreadable, or malformed content into "no data".
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/dashka/internal/store"
)

// Stable storage keys, shared with the browser build.
const (
	KeyLayouts          = "dashka-layouts"
	KeyAnalyticsWidgets = "dashka-analytics-widgets"
	KeyAnalyticsBaseURL = "dashka-analytics-base-url"
	BacklogKeyPrefix    = "backlog-widget-"
)

// BacklogKey returns the key holding the items of the backlog widget id.
func BacklogKey(widgetID string) string {
	return BacklogKeyPrefix + widgetID
}

// Adapter is a JSON view over a store.Store.
type Adapter struct {
	store  store.Store
	logger *slog.Logger
}

// New returns an Adapter over s. A nil logger uses slog.Default().
func New(s store.Store, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{store: s, logger: logger}
}

// Store returns the underlying store.
func (a *Adapter) Store() store.Store {
	return a.store
}

// Logger returns the adapter's logger.
func (a *Adapter) Logger() *slog.Logger {
	return a.logger
}

// Read decodes the value at key into v and reports whether it did. Absent
// keys, storage failures, and content that does not decode all report false
// and leave the caller to fall back to its default. Failures other than
// absence are logged at warn level.
func (a *Adapter) Read(ctx context.Context, key string, v any) bool {
	e, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		a.logger.Warn("storage read failed", "key", key, "err", err)
		return false
	}
	if err := json.Unmarshal(e.Value, v); err != nil {
		a.logger.Warn("ignoring malformed stored value", "key", key, "err", err)
		return false
	}
	return true
}

// Write serializes v and stores it at key.
func (a *Adapter) Write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Removing an absent key succeeds.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if err := a.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Atomic runs fn with an Adapter bound to a single store transaction. Either
// every write fn makes lands or none does.
func (a *Adapter) Atomic(ctx context.Context, fn func(tx *Adapter) error) error {
	return a.store.RunInTransaction(ctx, func(tx store.Store) error {
		return fn(&Adapter{store: tx, logger: a.logger})
	})
}
