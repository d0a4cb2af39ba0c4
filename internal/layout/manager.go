// Package layout keeps the per-breakpoint placements of the dashboard grid
// consistent with the set of known widgets.
package layout

import (
	"context"

	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/persist"
)

// Manager owns the in-memory layout and persists every change before the
// in-memory copy is replaced. It is not safe for concurrent use.
type Manager struct {
	adapter *persist.Adapter
	layouts model.Layouts
}

// NewManager returns a Manager holding the default layout. Call Initialize to
// load the persisted one.
func NewManager(a *persist.Adapter) *Manager {
	return &Manager{adapter: a, layouts: DefaultLayouts()}
}

// Initialize loads the persisted layout. An absent, unreadable, malformed, or
// empty value yields DefaultLayouts exactly.
func (m *Manager) Initialize(ctx context.Context) model.Layouts {
	var stored model.Layouts
	if m.adapter.Read(ctx, persist.KeyLayouts, &stored) && len(stored) > 0 {
		m.layouts = stored
	} else {
		m.layouts = DefaultLayouts()
	}
	return m.Layouts()
}

// Layouts returns a copy of the current layout.
func (m *Manager) Layouts() model.Layouts {
	return m.layouts.Clone()
}

// ApplyEngineUpdate replaces the layout wholesale with the grid engine's
// full recompute and persists it.
func (m *Manager) ApplyEngineUpdate(ctx context.Context, next model.Layouts) (model.Layouts, error) {
	return m.commit(ctx, next.Clone())
}

// AddWidget places id on every breakpoint that does not already hold it,
// using defaults, and persists the result. Re-adding is a no-op per breakpoint.
func (m *Manager) AddWidget(ctx context.Context, id string, defaults map[model.Breakpoint]model.Placement) (model.Layouts, error) {
	return m.commit(ctx, WithWidget(m.layouts, id, defaults))
}

// RemoveWidget drops every placement for id and persists the result.
func (m *Manager) RemoveWidget(ctx context.Context, id string) (model.Layouts, error) {
	return m.commit(ctx, WithoutWidget(m.layouts, id))
}

// Reset replaces the layout with the built-in default plus an auto-pack
// placement for each of widgets, and persists it.
func (m *Manager) Reset(ctx context.Context, widgets []model.WidgetConfig) (model.Layouts, error) {
	next, _ := Reconcile(DefaultLayouts(), widgets)
	return m.commit(ctx, next)
}

// Reconcile heals the current layout against widgets (see Reconcile) and
// persists it when anything changed.
func (m *Manager) Reconcile(ctx context.Context, widgets []model.WidgetConfig) (bool, error) {
	next, changed := Reconcile(m.layouts, widgets)
	if !changed {
		return false, nil
	}
	if _, err := m.commit(ctx, next); err != nil {
		return true, err
	}
	return true, nil
}

// Flush writes the current layout without changing it.
func (m *Manager) Flush(ctx context.Context) error {
	return m.adapter.Write(ctx, persist.KeyLayouts, m.layouts)
}

// Bind returns a copy of m that persists through a. Mutations on the copy do
// not reach m until Adopt.
func (m *Manager) Bind(a *persist.Adapter) *Manager {
	return &Manager{adapter: a, layouts: m.layouts.Clone()}
}

// Adopt takes over the layout of a copy made by Bind.
func (m *Manager) Adopt(other *Manager) {
	m.layouts = other.layouts
}

func (m *Manager) commit(ctx context.Context, next model.Layouts) (model.Layouts, error) {
	if err := m.adapter.Write(ctx, persist.KeyLayouts, next); err != nil {
		return m.Layouts(), err
	}
	m.layouts = next
	return m.Layouts(), nil
}
