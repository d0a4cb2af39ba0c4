package model

import (
	"encoding/json"
	"math"
)

// AutoPackY is the row sentinel for a placement the grid engine should
// position below the existing content on its next recompute. It is stored as
// JSON null, which is what the browser writes for an infinite row.
const AutoPackY = math.MaxInt32

// Placement is the rectangle a widget occupies on one breakpoint's grid, in
// column/row units.
type Placement struct {
	ID   string
	X    int
	Y    int
	W    int
	H    int
	MinW int
	MinH int
}

// placementJSON mirrors Placement with the grid engine's field names. Y is a
// pointer so the auto-pack sentinel can round-trip through null.
type placementJSON struct {
	ID   string `json:"i"`
	X    int    `json:"x"`
	Y    *int   `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW int    `json:"minW,omitempty"`
	MinH int    `json:"minH,omitempty"`
}

// AutoPacked reports whether p is waiting for the engine to choose its row.
func (p Placement) AutoPacked() bool {
	return p.Y == AutoPackY
}

// MarshalJSON encodes p with the grid engine's field names.
func (p Placement) MarshalJSON() ([]byte, error) {
	out := placementJSON{ID: p.ID, X: p.X, W: p.W, H: p.H, MinW: p.MinW, MinH: p.MinH}
	if !p.AutoPacked() {
		y := p.Y
		out.Y = &y
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a grid engine placement; a null or missing y becomes AutoPackY.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var in placementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Placement{ID: in.ID, X: in.X, W: in.W, H: in.H, MinW: in.MinW, MinH: in.MinH, Y: AutoPackY}
	if in.Y != nil {
		p.Y = *in.Y
	}
	return nil
}

// Layouts maps every breakpoint to its ordered placements. Order only affects
// the engine's reflow tie-breaks.
type Layouts map[Breakpoint][]Placement

// Clone returns a deep copy of l.
func (l Layouts) Clone() Layouts {
	if l == nil {
		return nil
	}
	out := make(Layouts, len(l))
	for bp, ps := range l {
		out[bp] = append([]Placement(nil), ps...)
	}
	return out
}

// Find returns the placement for id on bp.
func (l Layouts) Find(bp Breakpoint, id string) (Placement, bool) {
	for _, p := range l[bp] {
		if p.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// IDs returns the widget ids placed on bp, in order.
func (l Layouts) IDs(bp Breakpoint) []string {
	ids := make([]string, 0, len(l[bp]))
	for _, p := range l[bp] {
		ids = append(ids, p.ID)
	}
	return ids
}

// Equal reports whether l and other hold the same placements in the same
// order. A nil and an empty sequence are equal.
func (l Layouts) Equal(other Layouts) bool {
	keys := make(map[Breakpoint]struct{}, len(l)+len(other))
	for bp := range l {
		keys[bp] = struct{}{}
	}
	for bp := range other {
		keys[bp] = struct{}{}
	}
	for bp := range keys {
		a, b := l[bp], other[bp]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}
