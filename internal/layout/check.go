package layout

import (
	"errors"

	"github.com/alfredjeanlab/dashka/internal/model"
)

// Check reports every way l breaks the layout invariant for the registered
// widget ids: each breakpoint must place every built-in panel and every
// registered widget exactly once, place nothing else, and keep each placement
// inside its grid. It returns a *model.ValidationError or nil.
func Check(l model.Layouts, widgetIDs []string) error {
	var ve model.ValidationError

	want := make(map[string]bool, len(widgetIDs)+2)
	var order []string
	for _, p := range model.BuiltinPanels() {
		want[p.ID] = true
		order = append(order, p.ID)
	}
	for _, id := range widgetIDs {
		if !want[id] {
			want[id] = true
			order = append(order, id)
		}
	}

	for bp := range l {
		if !bp.IsValid() {
			ve.Add(string(bp), "unknown breakpoint")
		}
	}

	for _, bp := range model.Breakpoints() {
		ps, ok := l[bp]
		if !ok {
			ve.Add(bp.String(), "breakpoint is missing")
			continue
		}

		seen := make(map[string]int, len(ps))
		for _, p := range ps {
			seen[p.ID]++
			if seen[p.ID] == 2 {
				ve.Add(bp.String(), "duplicate placement for %q", p.ID)
			}
			if !want[p.ID] {
				ve.Add(bp.String(), "placement for unknown widget %q", p.ID)
			}
			var pe *model.ValidationError
			if err := model.ValidatePlacement(bp, p); errors.As(err, &pe) {
				ve.Errors = append(ve.Errors, pe.Errors...)
			}
		}
		for _, id := range order {
			if seen[id] == 0 {
				ve.Add(bp.String(), "no placement for %q", id)
			}
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
