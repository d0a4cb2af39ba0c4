package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/ui"
	"github.com/spf13/cobra"
)

// errInconsistent is returned by commands that found layout problems after
// printing them.
var errInconsistent = errors.New("layout is inconsistent with the registered widgets")

var layoutCmd = &cobra.Command{
	Use:     "layout",
	Short:   "Inspect and change the grid layout",
	GroupID: "layout",
}

var layoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show placements for every breakpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bps, err := breakpointsFlag(cmd)
		if err != nil {
			return err
		}
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		l := d.Layouts()
		out := cmd.OutOrStdout()

		if jsonOutput {
			if len(bps) == 1 {
				return printJSON(out, l[bps[0]])
			}
			return printJSON(out, l)
		}
		for i, bp := range bps {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printPlacementTable(out, bp, l[bp])
		}
		return nil
	},
}

var layoutPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Draw the layout of one breakpoint as a character grid",
	Example: `  dashka layout preview --breakpoint sm
  dashka layout preview --px 1024`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bp := model.BreakpointLG
		if px, _ := cmd.Flags().GetInt("px"); px > 0 {
			bp = model.BreakpointForWidth(px)
		}
		if cmd.Flags().Changed("breakpoint") {
			bps, err := breakpointsFlag(cmd)
			if err != nil {
				return err
			}
			bp = bps[0]
		}
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderGrid(bp, d.Layouts()[bp], ui.TerminalWidth()))
		return nil
	},
}

var layoutApplyCmd = &cobra.Command{
	Use:   "apply <file|->",
	Short: "Store a full layout computed by the grid engine",
	Long: `Store a full layout computed by the grid engine.

The file holds a JSON object keyed by breakpoint. It must place every built-in
panel and every registered widget exactly once on each breakpoint; otherwise
the problems are listed and nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		next, err := readLayouts(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := d.CheckUpdate(next); err != nil {
			fmt.Fprintln(out, "Layout rejected:")
			printProblems(out, err)
			return errInconsistent
		}
		l, err := d.ApplyEngineUpdate(cmd.Context(), next)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, l)
		}
		fmt.Fprintf(out, "Applied layout for %d breakpoints\n", len(l))
		return nil
	},
}

var layoutCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the stored layout against the registered widgets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := d.Check(); err != nil {
			fmt.Fprintln(out, "Layout problems:")
			printProblems(out, err)
			return errInconsistent
		}
		fmt.Fprintln(out, ui.RenderSuccess("Layout OK"))
		return nil
	},
}

var layoutResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default panel positions and re-pack every widget",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		l, err := d.ResetLayout(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), l)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Layout reset")
		return nil
	},
}

var breakpointsCmd = &cobra.Command{
	Use:     "breakpoints",
	Short:   "List the responsive breakpoints and grid settings",
	GroupID: "layout",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		grid := model.DefaultGridConfig()
		if jsonOutput {
			type bpInfo struct {
				Name     model.Breakpoint `json:"name"`
				MinWidth int              `json:"minWidth"`
				Columns  int              `json:"columns"`
			}
			var bps []bpInfo
			for _, bp := range model.Breakpoints() {
				bps = append(bps, bpInfo{bp, bp.MinWidth(), bp.Columns()})
			}
			return printJSON(out, map[string]any{"breakpoints": bps, "grid": grid})
		}

		tw := newTable(out)
		fmt.Fprintln(tw, "BREAKPOINT\tMIN WIDTH\tCOLUMNS")
		for _, bp := range model.Breakpoints() {
			fmt.Fprintf(tw, "%s\t%dpx\t%d\n", bp, bp.MinWidth(), bp.Columns())
		}
		tw.Flush()
		fmt.Fprintf(out, "\nRow height %dpx, margin %dx%d, padding %dx%d, drag handle .%s\n",
			grid.RowHeight, grid.MarginX, grid.MarginY, grid.PaddingX, grid.PaddingY, grid.DragHandleClass)
		return nil
	},
}

// breakpointsFlag returns the breakpoint named by --breakpoint, or all of them.
func breakpointsFlag(cmd *cobra.Command) ([]model.Breakpoint, error) {
	name, _ := cmd.Flags().GetString("breakpoint")
	if name == "" {
		return model.Breakpoints(), nil
	}
	bp := model.Breakpoint(name)
	if !bp.IsValid() {
		return nil, fmt.Errorf("unknown breakpoint %q (want lg, md, sm, xs or xxs)", name)
	}
	return []model.Breakpoint{bp}, nil
}

// readLayouts decodes a layout from path, or from stdin when path is "-".
func readLayouts(stdin io.Reader, path string) (model.Layouts, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var l model.Layouts
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	return l, nil
}

func init() {
	layoutShowCmd.Flags().String("breakpoint", "", "only show this breakpoint")
	layoutPreviewCmd.Flags().String("breakpoint", "", "breakpoint to draw")
	layoutPreviewCmd.Flags().Int("px", 0, "pick the breakpoint for this container width in pixels")

	layoutCmd.AddCommand(layoutShowCmd)
	layoutCmd.AddCommand(layoutPreviewCmd)
	layoutCmd.AddCommand(layoutApplyCmd)
	layoutCmd.AddCommand(layoutCheckCmd)
	layoutCmd.AddCommand(layoutResetCmd)
}
