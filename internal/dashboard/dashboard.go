// Package dashboard coordinates the layout, the widget registry, and the
// per-widget backlogs so that every user action lands in the store as one
// consistent change.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/dashka/internal/backlog"
	"github.com/alfredjeanlab/dashka/internal/events"
	"github.com/alfredjeanlab/dashka/internal/layout"
	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/persist"
	"github.com/alfredjeanlab/dashka/internal/store"
	"github.com/alfredjeanlab/dashka/internal/widget"
)

var (
	// ErrBuiltinPanel is returned when removing one of the built-in panels.
	ErrBuiltinPanel = errors.New("built-in panels cannot be removed")
	// ErrUnknownWidget is returned for an id that is not registered.
	ErrUnknownWidget = errors.New("unknown widget")
	// ErrNotBacklog is returned when a backlog operation targets another kind.
	ErrNotBacklog = errors.New("not a backlog widget")
)

// Options configures a Dashboard. Zero values are usable.
type Options struct {
	Logger    *slog.Logger
	Publisher events.Publisher
	Factory   *widget.Factory
	// AnalyticsBaseURL is the fallback when no base URL is stored.
	AnalyticsBaseURL string
}

// Dashboard is one user's dashboard state. It is not safe for concurrent use.
type Dashboard struct {
	adapter  *persist.Adapter
	layout   *layout.Manager
	registry *widget.Registry
	factory  *widget.Factory
	settings *widget.Settings
	backlogs *backlog.Store
	pub      events.Publisher
	logger   *slog.Logger
}

// Open loads the dashboard from s. Absent or corrupt state falls back to the
// defaults. If the stored layout disagrees with the stored widgets it is
// reconciled and written back; a failure to write that back is logged, not
// returned.
func Open(ctx context.Context, s store.Store, opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pub := opts.Publisher
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	factory := opts.Factory
	if factory == nil {
		factory = widget.NewFactory()
	}

	a := persist.New(s, logger)
	d := &Dashboard{
		adapter:  a,
		layout:   layout.NewManager(a),
		registry: widget.NewRegistry(a),
		factory:  factory,
		settings: widget.NewSettings(a, opts.AnalyticsBaseURL),
		backlogs: backlog.NewStore(a),
		pub:      pub,
		logger:   logger,
	}

	d.layout.Initialize(ctx)
	widgets := d.registry.Load(ctx)
	changed, err := d.layout.Reconcile(ctx, widgets)
	switch {
	case err != nil:
		logger.Warn("writing reconciled layout failed", "err", err)
	case changed:
		logger.Info("reconciled stored layout with registered widgets", "widgets", len(widgets))
	}
	return d
}

// Layouts returns a copy of the current layout.
func (d *Dashboard) Layouts() model.Layouts {
	return d.layout.Layouts()
}

// Widgets returns the registered widgets in insertion order.
func (d *Dashboard) Widgets() []model.WidgetConfig {
	return d.registry.List()
}

// Widget returns the registered widget with id.
func (d *Dashboard) Widget(id string) (model.WidgetConfig, error) {
	w, ok := d.registry.Get(id)
	if !ok {
		return model.WidgetConfig{}, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return w, nil
}

// Check reports any breach of the layout invariant for the current widgets.
func (d *Dashboard) Check() error {
	return layout.Check(d.layout.Layouts(), d.registry.IDs())
}

// CheckUpdate reports whether next would be a consistent layout for the
// current widgets.
func (d *Dashboard) CheckUpdate(next model.Layouts) error {
	return layout.Check(next, d.registry.IDs())
}

// AddWidget creates a widget and registers and places it in one store
// transaction. Nothing changes when creation is refused or the write fails.
func (d *Dashboard) AddWidget(ctx context.Context, kind model.WidgetKind, typ model.AnalyticsType, params widget.Params) (model.WidgetConfig, error) {
	w, err := d.factory.Create(kind, typ, params)
	if err != nil {
		return model.WidgetConfig{}, err
	}
	defaults, err := layout.DefaultPlacements(w)
	if err != nil {
		return model.WidgetConfig{}, err
	}

	var (
		reg *widget.Registry
		lay *layout.Manager
	)
	err = d.adapter.Atomic(ctx, func(tx *persist.Adapter) error {
		reg = d.registry.Bind(tx)
		if _, err := reg.Add(ctx, w); err != nil {
			return err
		}
		lay = d.layout.Bind(tx)
		_, err := lay.AddWidget(ctx, w.ID, defaults)
		return err
	})
	if err != nil {
		return model.WidgetConfig{}, fmt.Errorf("add widget: %w", err)
	}
	d.registry.Adopt(reg)
	d.layout.Adopt(lay)

	d.logger.Debug("widget added", "id", w.ID, "kind", w.Kind)
	events.Emit(ctx, d.pub, d.logger, events.TopicWidgetAdded, events.WidgetAdded{Widget: w})
	return w, nil
}

// RemoveWidget unregisters id and drops its placements in one store
// transaction. It reports whether anything was removed; an unknown id is a
// no-op. The widget's backlog items stay in the store.
func (d *Dashboard) RemoveWidget(ctx context.Context, id string) (bool, error) {
	if model.IsBuiltinPanel(id) {
		return false, fmt.Errorf("%w: %s", ErrBuiltinPanel, id)
	}
	if _, ok := d.registry.Get(id); !ok {
		return false, nil
	}

	var (
		reg *widget.Registry
		lay *layout.Manager
	)
	err := d.adapter.Atomic(ctx, func(tx *persist.Adapter) error {
		reg = d.registry.Bind(tx)
		if _, err := reg.Remove(ctx, id); err != nil {
			return err
		}
		lay = d.layout.Bind(tx)
		_, err := lay.RemoveWidget(ctx, id)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("remove widget: %w", err)
	}
	d.registry.Adopt(reg)
	d.layout.Adopt(lay)

	d.logger.Debug("widget removed", "id", id)
	events.Emit(ctx, d.pub, d.logger, events.TopicWidgetRemoved, events.WidgetRemoved{WidgetID: id})
	return true, nil
}

// ApplyEngineUpdate stores the grid engine's full recompute as the layout.
func (d *Dashboard) ApplyEngineUpdate(ctx context.Context, next model.Layouts) (model.Layouts, error) {
	l, err := d.layout.ApplyEngineUpdate(ctx, next)
	if err != nil {
		return l, fmt.Errorf("apply layout: %w", err)
	}
	events.Emit(ctx, d.pub, d.logger, events.TopicLayoutUpdated, events.LayoutUpdated{Layouts: l})
	return l, nil
}

// ResetLayout puts the built-in panels back at their defaults and queues every
// registered widget for auto-packing.
func (d *Dashboard) ResetLayout(ctx context.Context) (model.Layouts, error) {
	l, err := d.layout.Reset(ctx, d.registry.List())
	if err != nil {
		return l, fmt.Errorf("reset layout: %w", err)
	}
	events.Emit(ctx, d.pub, d.logger, events.TopicLayoutReset, events.LayoutReset{Layouts: l})
	return l, nil
}

// Close writes the layout and widget list once more. The per-mutation writes
// are authoritative; this only covers a write that was somehow skipped.
func (d *Dashboard) Close(ctx context.Context) error {
	return errors.Join(d.layout.Flush(ctx), d.registry.Flush(ctx))
}
