package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Add records a failure on field.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateWidget checks a WidgetConfig against the rules of its kind.
// It returns a *ValidationError if any rules fail, or nil if the widget is valid.
func ValidateWidget(w *WidgetConfig) error {
	var ve ValidationError

	if strings.TrimSpace(w.ID) == "" {
		ve.Add("id", "is required")
	} else if IsBuiltinPanel(w.ID) {
		ve.Add("id", "%q is reserved for a built-in panel", w.ID)
	}

	switch w.Kind {
	case KindAnalytics:
		info, ok := LookupAnalyticsType(w.Type)
		if !ok {
			ve.Add("type", "invalid value %q", w.Type)
			break
		}
		if info.NeedsSiteID && strings.TrimSpace(w.SiteID) == "" {
			ve.Add("siteId", "is required for %s widgets", info.Label)
		}
	case KindBacklog:
		if w.Type != "" {
			ve.Add("type", "must be empty for backlog widgets")
		}
		if w.SiteID != "" {
			ve.Add("siteId", "must be empty for backlog widgets")
		}
	default:
		ve.Add("widgetType", "invalid value %q", w.Kind)
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidatePlacement checks p against the geometry of bp.
func ValidatePlacement(bp Breakpoint, p Placement) error {
	var ve ValidationError
	field := func(name string) string {
		return fmt.Sprintf("%s[%s].%s", bp, p.ID, name)
	}

	if !bp.IsValid() {
		ve.Add("breakpoint", "invalid value %q", bp)
		return &ve
	}
	if strings.TrimSpace(p.ID) == "" {
		ve.Add(field("i"), "is required")
	}
	if p.W < 1 {
		ve.Add(field("w"), "must be positive, got %d", p.W)
	}
	if p.H < 1 {
		ve.Add(field("h"), "must be positive, got %d", p.H)
	}
	if p.W < p.MinW {
		ve.Add(field("w"), "must be at least minW %d, got %d", p.MinW, p.W)
	}
	if p.H < p.MinH {
		ve.Add(field("h"), "must be at least minH %d, got %d", p.MinH, p.H)
	}
	if p.X < 0 {
		ve.Add(field("x"), "must not be negative, got %d", p.X)
	}
	if p.Y < 0 {
		ve.Add(field("y"), "must not be negative, got %d", p.Y)
	}
	if p.X+p.W > bp.Columns() {
		ve.Add(field("w"), "x+w = %d exceeds %d columns", p.X+p.W, bp.Columns())
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateBacklogItem checks a BacklogItem for constraint violations.
func ValidateBacklogItem(it *BacklogItem) error {
	var ve ValidationError

	if strings.TrimSpace(it.ID) == "" {
		ve.Add("id", "is required")
	}
	if strings.TrimSpace(it.Text) == "" {
		ve.Add("text", "is required")
	}
	if !it.Priority.IsValid() {
		ve.Add("priority", "invalid value %q", it.Priority)
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
