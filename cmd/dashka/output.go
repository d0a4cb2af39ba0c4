package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/alfredjeanlab/dashka/internal/backlog"
	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/ui"
	"github.com/mattn/go-runewidth"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// truncate shortens s to n terminal cells.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "...")
}

func printPlacementTable(w io.Writer, bp model.Breakpoint, ps []model.Placement) {
	fmt.Fprintf(w, "%s %s\n", ui.RenderAccent(bp.String()), ui.RenderMuted(fmt.Sprintf("(%d columns)", bp.Columns())))
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tX\tY\tW\tH\tMIN W\tMIN H")
	for _, p := range ps {
		y := strconv.Itoa(p.Y)
		if p.AutoPacked() {
			y = "auto"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%d\t%d\n", p.ID, p.X, y, p.W, p.H, p.MinW, p.MinH)
	}
	tw.Flush()
}

func printWidgetTable(w io.Writer, widgets []model.WidgetConfig) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tKIND\tTYPE\tSITE\tTITLE")
	for _, p := range model.BuiltinPanels() {
		fmt.Fprintf(tw, "%s\t%s\t\t\t%s\n", ui.RenderBuiltin(p.ID), "panel", p.Title)
	}
	for _, wc := range widgets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", wc.ID, wc.Kind, wc.Type, wc.SiteID, truncate(wc.Title, 50))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d widgets\n", len(widgets))
}

func printAnalyticsTypes(w io.Writer, types []model.AnalyticsTypeInfo) {
	tw := newTable(w)
	fmt.Fprintln(tw, "TYPE\tLABEL\tSITE ID\tDESCRIPTION")
	for _, info := range types {
		site := "optional"
		if info.NeedsSiteID {
			site = "required"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Type, info.Label, site, info.Description)
	}
	tw.Flush()
}

func renderPriority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return ui.RenderWarn(p.String())
	case model.PriorityLow:
		return ui.RenderMuted(p.String())
	default:
		return p.String()
	}
}

func printBacklogTable(w io.Writer, items []model.BacklogItem) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tCREATED\tTEXT")
	for _, it := range items {
		done := " "
		text := truncate(it.Text, 60)
		if it.Completed {
			done = "x"
			text = ui.RenderSuccess(text)
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n",
			it.ID, done, renderPriority(it.Priority), it.Created().Format("2006-01-02 15:04"), text)
	}
	tw.Flush()
}

func printStats(w io.Writer, s backlog.Stats) {
	fmt.Fprintf(w, "Total:     %d\n", s.Total)
	fmt.Fprintf(w, "Active:    %d\n", s.Active)
	fmt.Fprintf(w, "Completed: %d\n", s.Completed)
}

// printProblems lists the field errors of a validation failure, one per line.
func printProblems(w io.Writer, err error) {
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		fmt.Fprintf(w, "  %v\n", err)
		return
	}
	for _, fe := range ve.Errors {
		fmt.Fprintf(w, "  %s %s\n", ui.RenderWarn(fe.Field+":"), fe.Message)
	}
}
