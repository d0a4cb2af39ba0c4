package widget

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/persist"
)

// Registry is the ordered list of user-added widgets. Every change is
// persisted before the in-memory list is replaced. It is not safe for
// concurrent use.
type Registry struct {
	adapter *persist.Adapter
	widgets []model.WidgetConfig
}

// NewRegistry returns an empty Registry. Call Load to read the persisted list.
func NewRegistry(a *persist.Adapter) *Registry {
	return &Registry{adapter: a}
}

// Load reads the persisted widgets. An absent or malformed list yields an
// empty registry; records that fail validation or repeat an earlier id are
// dropped with a warning.
func (r *Registry) Load(ctx context.Context) []model.WidgetConfig {
	var stored []model.WidgetConfig
	if !r.adapter.Read(ctx, persist.KeyAnalyticsWidgets, &stored) {
		r.widgets = nil
		return r.List()
	}

	seen := make(map[string]bool, len(stored))
	kept := make([]model.WidgetConfig, 0, len(stored))
	for _, w := range stored {
		if err := model.ValidateWidget(&w); err != nil {
			r.logger().Warn("dropping invalid stored widget", "id", w.ID, "err", err)
			continue
		}
		if seen[w.ID] {
			r.logger().Warn("dropping duplicate stored widget", "id", w.ID)
			continue
		}
		seen[w.ID] = true
		kept = append(kept, w)
	}
	r.widgets = kept
	return r.List()
}

// List returns a copy of the registered widgets in insertion order.
func (r *Registry) List() []model.WidgetConfig {
	return append([]model.WidgetConfig(nil), r.widgets...)
}

// Get returns the widget with id.
func (r *Registry) Get(id string) (model.WidgetConfig, bool) {
	for _, w := range r.widgets {
		if w.ID == id {
			return w, true
		}
	}
	return model.WidgetConfig{}, false
}

// IDs returns the registered widget ids in order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.widgets))
	for i, w := range r.widgets {
		ids[i] = w.ID
	}
	return ids
}

// Add appends w and persists the list. Adding an id that is already
// registered changes nothing.
func (r *Registry) Add(ctx context.Context, w model.WidgetConfig) ([]model.WidgetConfig, error) {
	if err := model.ValidateWidget(&w); err != nil {
		return r.List(), err
	}
	if _, ok := r.Get(w.ID); ok {
		return r.List(), nil
	}
	next := append(r.List(), w)
	return r.commit(ctx, next)
}

// Remove drops the widget with id and persists the list. An unknown id is a
// no-op and writes nothing.
func (r *Registry) Remove(ctx context.Context, id string) ([]model.WidgetConfig, error) {
	if _, ok := r.Get(id); !ok {
		return r.List(), nil
	}
	next := make([]model.WidgetConfig, 0, len(r.widgets))
	for _, w := range r.widgets {
		if w.ID != id {
			next = append(next, w)
		}
	}
	return r.commit(ctx, next)
}

// Flush writes the current list without changing it.
func (r *Registry) Flush(ctx context.Context) error {
	return r.adapter.Write(ctx, persist.KeyAnalyticsWidgets, r.encoded())
}

// Bind returns a copy of r that persists through a. Mutations on the copy do
// not reach r until Adopt.
func (r *Registry) Bind(a *persist.Adapter) *Registry {
	return &Registry{adapter: a, widgets: r.List()}
}

// Adopt takes over the widgets of a copy made by Bind.
func (r *Registry) Adopt(other *Registry) {
	r.widgets = other.widgets
}

func (r *Registry) commit(ctx context.Context, next []model.WidgetConfig) ([]model.WidgetConfig, error) {
	prev := r.widgets
	r.widgets = next
	if err := r.Flush(ctx); err != nil {
		r.widgets = prev
		return r.List(), err
	}
	return r.List(), nil
}

// encoded never returns nil so an empty registry is stored as [] rather than null.
func (r *Registry) encoded() []model.WidgetConfig {
	if r.widgets == nil {
		return []model.WidgetConfig{}
	}
	return r.widgets
}

func (r *Registry) logger() *slog.Logger {
	return r.adapter.Logger()
}
