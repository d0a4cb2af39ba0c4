package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alfredjeanlab/dashka/internal/ui"
	"github.com/spf13/cobra"
)

// Patterns used to colorize Cobra's help output.
var (
	// Section headers such as "Layout:" or "Flags:".
	reGroupHeader = regexp.MustCompile(`(?m)^([A-Z][^\n]*:)\s*$`)

	// Example invocations: indented lines that start with the binary name.
	reExample = regexp.MustCompile(`(?m)^(\s+)(dashka [^\n]*)$`)

	// Command names: two-space indent, a word, then at least two spaces.
	reCommand = regexp.MustCompile(`(?m)^(  )(\S+)(  )`)

	// Flag type annotations, e.g. "--db string" or "--width int".
	reFlagType = regexp.MustCompile(`(--?\S+\s+)(string|int|duration|strings)\b`)

	// Cobra's default annotations: (default "x") or (default 3).
	reDefault = regexp.MustCompile(`\(default (?:"[^"]*"|[^)]+)\)`)
)

// colorizedHelpFunc returns a help function that renders Cobra's usage text
// and colors it when stdout supports ANSI.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}

		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

// colorizeHelpOutput applies ANSI styling to plain help text.
func colorizeHelpOutput(s string) string {
	s = reGroupHeader.ReplaceAllStringFunc(s, func(match string) string {
		return ui.RenderAccent(strings.TrimSpace(match))
	})

	s = reExample.ReplaceAllStringFunc(s, func(match string) string {
		parts := reExample.FindStringSubmatch(match)
		return parts[1] + ui.RenderMuted(parts[2])
	})

	s = reCommand.ReplaceAllStringFunc(s, func(match string) string {
		parts := reCommand.FindStringSubmatch(match)
		return parts[1] + ui.RenderCommand(parts[2]) + parts[3]
	})

	s = reFlagType.ReplaceAllStringFunc(s, func(match string) string {
		parts := reFlagType.FindStringSubmatch(match)
		return parts[1] + ui.RenderMuted(parts[2])
	})

	return reDefault.ReplaceAllStringFunc(s, ui.RenderMuted)
}
