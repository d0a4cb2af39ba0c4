package model

// Breakpoint is a named responsive-width tier of the dashboard grid.
type Breakpoint string

const (
	BreakpointLG  Breakpoint = "lg"
	BreakpointMD  Breakpoint = "md"
	BreakpointSM  Breakpoint = "sm"
	BreakpointXS  Breakpoint = "xs"
	BreakpointXXS Breakpoint = "xxs"
)

// breakpointSpec holds the fixed geometry of a breakpoint.
type breakpointSpec struct {
	minWidth int
	columns  int
}

var breakpointSpecs = map[Breakpoint]breakpointSpec{
	BreakpointLG:  {minWidth: 1200, columns: 48},
	BreakpointMD:  {minWidth: 996, columns: 36},
	BreakpointSM:  {minWidth: 768, columns: 24},
	BreakpointXS:  {minWidth: 480, columns: 12},
	BreakpointXXS: {minWidth: 0, columns: 6},
}

// Breakpoints returns every breakpoint, widest first.
func Breakpoints() []Breakpoint {
	return []Breakpoint{BreakpointLG, BreakpointMD, BreakpointSM, BreakpointXS, BreakpointXXS}
}

// String returns the string representation of the breakpoint.
func (b Breakpoint) String() string {
	return string(b)
}

// IsValid reports whether b is one of the five known breakpoints.
func (b Breakpoint) IsValid() bool {
	_, ok := breakpointSpecs[b]
	return ok
}

// Columns returns the grid column count for b, or 0 for an unknown breakpoint.
func (b Breakpoint) Columns() int {
	return breakpointSpecs[b].columns
}

// MinWidth returns the smallest container width in pixels at which b applies.
func (b Breakpoint) MinWidth() int {
	return breakpointSpecs[b].minWidth
}

// BreakpointForWidth returns the widest breakpoint whose minimum width fits px.
func BreakpointForWidth(px int) Breakpoint {
	for _, bp := range Breakpoints() {
		if px >= bp.MinWidth() {
			return bp
		}
	}
	return BreakpointXXS
}

// GridConfig carries the settings the grid engine is configured with.
type GridConfig struct {
	RowHeight       int      `json:"rowHeight"`
	MarginX         int      `json:"marginX"`
	MarginY         int      `json:"marginY"`
	PaddingX        int      `json:"paddingX"`
	PaddingY        int      `json:"paddingY"`
	DragHandleClass string   `json:"dragHandleClass"`
	ResizeHandles   []string `json:"resizeHandles"`
}

// DefaultGridConfig returns the grid settings the dashboard ships with.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		RowHeight:       60,
		MarginX:         16,
		MarginY:         16,
		PaddingX:        16,
		PaddingY:        16,
		DragHandleClass: "drag-handle",
		ResizeHandles:   []string{"s", "e", "w", "n", "se", "sw", "ne", "nw"},
	}
}
