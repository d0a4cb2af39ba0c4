package layout

import "github.com/alfredjeanlab/dashka/internal/model"

// Reconcile heals l against the registered widgets and reports whether it had
// to change anything. Per breakpoint it keeps the first placement of each
// known id and drops duplicates and orphans, then appends the static default
// for a missing built-in panel and the auto-pack default for a missing widget.
// Unknown breakpoints are dropped and missing ones are filled. Placement
// geometry is left to the grid engine. A layout that already satisfies Check
// is returned unchanged.
func Reconcile(l model.Layouts, widgets []model.WidgetConfig) (model.Layouts, bool) {
	known := make(map[string]bool, len(widgets)+2)
	for _, p := range model.BuiltinPanels() {
		known[p.ID] = true
	}
	defaults := make(map[string]map[model.Breakpoint]model.Placement, len(widgets))
	for _, w := range widgets {
		d, err := DefaultPlacements(w)
		if err != nil {
			continue
		}
		known[w.ID] = true
		defaults[w.ID] = d
	}

	out := make(model.Layouts, len(model.Breakpoints()))
	for _, bp := range model.Breakpoints() {
		seen := make(map[string]bool, len(l[bp]))
		ps := make([]model.Placement, 0, len(l[bp])+len(widgets)+2)
		for _, p := range l[bp] {
			if !known[p.ID] || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			ps = append(ps, p)
		}
		for _, panel := range model.BuiltinPanels() {
			if seen[panel.ID] {
				continue
			}
			if p, ok := builtinPlacement(bp, panel.ID); ok {
				ps = append(ps, p)
				seen[panel.ID] = true
			}
		}
		for _, w := range widgets {
			if seen[w.ID] || defaults[w.ID] == nil {
				continue
			}
			ps = append(ps, defaults[w.ID][bp])
			seen[w.ID] = true
		}
		out[bp] = ps
	}

	changed := len(out) != len(l) || !out.Equal(l)
	if !changed {
		return l, false
	}
	return out, true
}
