package layout

import (
	"fmt"

	"github.com/alfredjeanlab/dashka/internal/model"
)

// size is a width/height pair in grid units.
type size struct{ w, h int }

// builtinDefaults positions the two built-in panels side by side on the wide
// breakpoints and stacked on the narrow ones.
var builtinDefaults = map[model.Breakpoint][]model.Placement{
	model.BreakpointLG: {
		{ID: model.PanelRepos, X: 0, Y: 0, W: 18, H: 6, MinW: 8, MinH: 2},
		{ID: model.PanelWireGuard, X: 18, Y: 0, W: 30, H: 12, MinW: 14, MinH: 6},
	},
	model.BreakpointMD: {
		{ID: model.PanelRepos, X: 0, Y: 0, W: 14, H: 6, MinW: 6, MinH: 2},
		{ID: model.PanelWireGuard, X: 14, Y: 0, W: 22, H: 12, MinW: 10, MinH: 6},
	},
	model.BreakpointSM: {
		{ID: model.PanelRepos, X: 0, Y: 0, W: 24, H: 5, MinW: 6, MinH: 3},
		{ID: model.PanelWireGuard, X: 0, Y: 5, W: 24, H: 10, MinW: 8, MinH: 4},
	},
	model.BreakpointXS: {
		{ID: model.PanelRepos, X: 0, Y: 0, W: 12, H: 5, MinW: 4, MinH: 3},
		{ID: model.PanelWireGuard, X: 0, Y: 5, W: 12, H: 10, MinW: 4, MinH: 4},
	},
	model.BreakpointXXS: {
		{ID: model.PanelRepos, X: 0, Y: 0, W: 6, H: 5, MinW: 2, MinH: 3},
		{ID: model.PanelWireGuard, X: 0, Y: 5, W: 6, H: 10, MinW: 2, MinH: 4},
	},
}

// Per-kind widget sizes: [size, min size] for each breakpoint.
var (
	analyticsSizes = map[model.Breakpoint][2]size{
		model.BreakpointLG:  {{16, 4}, {6, 2}},
		model.BreakpointMD:  {{12, 4}, {6, 2}},
		model.BreakpointSM:  {{24, 4}, {6, 2}},
		model.BreakpointXS:  {{12, 4}, {4, 2}},
		model.BreakpointXXS: {{6, 4}, {2, 2}},
	}
	backlogSizes = map[model.Breakpoint][2]size{
		model.BreakpointLG:  {{14, 6}, {6, 3}},
		model.BreakpointMD:  {{12, 6}, {6, 3}},
		model.BreakpointSM:  {{24, 6}, {6, 3}},
		model.BreakpointXS:  {{12, 6}, {4, 3}},
		model.BreakpointXXS: {{6, 6}, {2, 3}},
	}
)

// DefaultLayouts returns the layout a dashboard starts with: only the two
// built-in panels.
func DefaultLayouts() model.Layouts {
	out := make(model.Layouts, len(builtinDefaults))
	for bp, ps := range builtinDefaults {
		out[bp] = append([]model.Placement(nil), ps...)
	}
	return out
}

// builtinPlacement returns the default placement of a built-in panel on bp.
func builtinPlacement(bp model.Breakpoint, id string) (model.Placement, bool) {
	for _, p := range builtinDefaults[bp] {
		if p.ID == id {
			return p, true
		}
	}
	return model.Placement{}, false
}

// DefaultPlacements returns the placement a newly added widget gets on every
// breakpoint. Each one sits in column 0 with Y set to AutoPackY, so the grid
// engine drops it below the existing content on its next recompute.
func DefaultPlacements(w model.WidgetConfig) (map[model.Breakpoint]model.Placement, error) {
	var sizes map[model.Breakpoint][2]size
	switch w.Kind {
	case model.KindAnalytics:
		sizes = analyticsSizes
	case model.KindBacklog:
		sizes = backlogSizes
	default:
		return nil, fmt.Errorf("no default placement for widget kind %q", w.Kind)
	}

	out := make(map[model.Breakpoint]model.Placement, len(sizes))
	for bp, s := range sizes {
		out[bp] = model.Placement{
			ID:   w.ID,
			X:    0,
			Y:    model.AutoPackY,
			W:    s[0].w,
			H:    s[0].h,
			MinW: s[1].w,
			MinH: s[1].h,
		}
	}
	return out, nil
}

// WithWidget returns l with a placement for id on every breakpoint. A
// breakpoint that already places id is left untouched; the others get
// defaults[bp] appended.
func WithWidget(l model.Layouts, id string, defaults map[model.Breakpoint]model.Placement) model.Layouts {
	out := l.Clone()
	if out == nil {
		out = make(model.Layouts)
	}
	for _, bp := range model.Breakpoints() {
		if _, ok := out.Find(bp, id); ok {
			continue
		}
		p, ok := defaults[bp]
		if !ok {
			continue
		}
		p.ID = id
		out[bp] = append(out[bp], p)
	}
	return out
}

// WithoutWidget returns l with every placement for id removed. It is a no-op
// for an id with no placements.
func WithoutWidget(l model.Layouts, id string) model.Layouts {
	out := make(model.Layouts, len(l))
	for bp, ps := range l {
		kept := make([]model.Placement, 0, len(ps))
		for _, p := range ps {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		out[bp] = kept
	}
	return out
}
