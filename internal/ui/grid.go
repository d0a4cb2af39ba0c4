package ui

import (
	"fmt"
	"strings"

	"github.com/alfredjeanlab/dashka/internal/model"
)

const glyphs = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RenderGrid draws the placements of one breakpoint as a character grid that
// fits in width terminal columns, followed by a legend. Each placement is
// filled with its own glyph; a later placement paints over an earlier one.
// Auto-packed placements are stacked below the content in order, which
// approximates what the grid engine does on its next recompute.
func RenderGrid(bp model.Breakpoint, ps []model.Placement, width int) string {
	cols := bp.Columns()
	if cols == 0 {
		return ""
	}
	cellW := width / cols
	if cellW < 1 {
		cellW = 1
	}
	if cellW > 3 {
		cellW = 3
	}

	placed := resolveAutoPack(ps)
	rows := 0
	for _, p := range placed {
		if p.Y+p.H > rows {
			rows = p.Y + p.H
		}
	}

	canvas := make([][]byte, rows)
	for i := range canvas {
		canvas[i] = []byte(strings.Repeat(".", cols*cellW))
	}
	for i, p := range placed {
		g := glyphs[i%len(glyphs)]
		for y := p.Y; y < p.Y+p.H && y < rows; y++ {
			for x := p.X * cellW; x < (p.X+p.W)*cellW && x < cols*cellW; x++ {
				if x >= 0 && y >= 0 {
					canvas[y][x] = g
				}
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", RenderAccent(bp.String()), RenderMuted(fmt.Sprintf("(%d columns, %d rows)", cols, rows)))
	for _, line := range canvas {
		b.Write(line)
		b.WriteByte('\n')
	}
	for i, p := range placed {
		label := p.ID
		if model.IsBuiltinPanel(p.ID) {
			label = RenderBuiltin(label)
		}
		fmt.Fprintf(&b, "  %c %s %s\n", glyphs[i%len(glyphs)], label,
			RenderMuted(fmt.Sprintf("x=%d y=%d w=%d h=%d", p.X, p.Y, p.W, p.H)))
	}
	return b.String()
}

// resolveAutoPack returns ps with every AutoPackY row replaced by the bottom
// of the content placed before it.
func resolveAutoPack(ps []model.Placement) []model.Placement {
	out := make([]model.Placement, len(ps))
	bottom := 0
	for _, p := range ps {
		if !p.AutoPacked() && p.Y+p.H > bottom {
			bottom = p.Y + p.H
		}
	}
	for i, p := range ps {
		if p.AutoPacked() {
			p.Y = bottom
			bottom += p.H
		}
		out[i] = p
	}
	return out
}
