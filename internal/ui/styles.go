package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent  = 74  // blue
	colorCmd     = 250 // light gray
	colorMuted   = 245 // medium gray
	colorSuccess = 114 // green
	colorWarn    = 179 // amber
	colorBuiltin = 175 // pink
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderSuccess returns s in green, used for completed backlog items.
func RenderSuccess(s string) string { return render(colorSuccess, s) }

// RenderWarn returns s in amber, used for high priority and check failures.
func RenderWarn(s string) string { return render(colorWarn, s) }

// RenderBuiltin returns s in the color of the built-in panels.
func RenderBuiltin(s string) string { return render(colorBuiltin, s) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
