package ui

import (
	"strings"
	"testing"

	"github.com/alfredjeanlab/dashka/internal/model"
)

func TestShouldUseColor_Env(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR should win over CLICOLOR_FORCE")
	}

	t.Setenv("NO_COLOR", "")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 should force color")
	}

	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("CLICOLOR", "0")
	if ShouldUseColor() {
		t.Error("CLICOLOR=0 should disable color")
	}
}

func TestRenderGrid(t *testing.T) {
	ForceNoColor()
	ps := []model.Placement{
		{ID: model.PanelRepos, X: 0, Y: 0, W: 2, H: 2},
		{ID: model.PanelWireGuard, X: 2, Y: 0, W: 4, H: 1},
		{ID: "backlog-1", X: 0, Y: model.AutoPackY, W: 6, H: 1},
	}
	out := RenderGrid(model.BreakpointXXS, ps, 6)
	lines := strings.Split(out, "\n")

	want := []string{"AABBBB", "AA....", "CCCCCC"}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("row %d = %q, want %q\n%s", i, lines[i+1], w, out)
		}
	}
	if !strings.Contains(out, "C backlog-1 x=0 y=2 w=6 h=1") {
		t.Errorf("legend missing resolved auto-pack row:\n%s", out)
	}
}

func TestRenderGrid_ScalesCells(t *testing.T) {
	ForceNoColor()
	ps := []model.Placement{{ID: "a", X: 0, Y: 0, W: 1, H: 1}}
	out := RenderGrid(model.BreakpointXXS, ps, 100)
	if lines := strings.Split(out, "\n"); lines[1] != "AAA..............." {
		t.Errorf("row = %q, want 3-char cells", lines[1])
	}
}

func TestRenderGrid_UnknownBreakpoint(t *testing.T) {
	if out := RenderGrid("xl", nil, 80); out != "" {
		t.Errorf("RenderGrid(xl) = %q, want empty", out)
	}
}
