package model

import (
	"encoding/json"
	"fmt"
)

// WidgetKind is the discriminant of a widget configuration.
type WidgetKind string

const (
	KindAnalytics WidgetKind = "analytics"
	KindBacklog   WidgetKind = "backlog"
)

// String returns the string representation of the kind.
func (k WidgetKind) String() string {
	return string(k)
}

// IsValid checks whether the kind is a known value.
func (k WidgetKind) IsValid() bool {
	switch k {
	case KindAnalytics, KindBacklog:
		return true
	}
	return false
}

// WidgetKinds returns every widget kind a user can add.
func WidgetKinds() []WidgetKind {
	return []WidgetKind{KindAnalytics, KindBacklog}
}

// AnalyticsType selects which analytics embed a widget shows.
type AnalyticsType string

const (
	AnalyticsStats    AnalyticsType = "stats"
	AnalyticsChart    AnalyticsType = "chart"
	AnalyticsPages    AnalyticsType = "pages"
	AnalyticsRealtime AnalyticsType = "realtime"
	AnalyticsDocs     AnalyticsType = "docs"
)

// String returns the string representation of the analytics type.
func (t AnalyticsType) String() string {
	return string(t)
}

// AnalyticsTypeInfo describes one analytics embed.
type AnalyticsTypeInfo struct {
	Type        AnalyticsType `json:"value"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	NeedsSiteID bool          `json:"needsSiteId"`
}

var analyticsTypes = []AnalyticsTypeInfo{
	{Type: AnalyticsStats, Label: "Stats", Description: "Page views, sessions, visitors", NeedsSiteID: true},
	{Type: AnalyticsChart, Label: "Chart", Description: "Page view chart", NeedsSiteID: true},
	{Type: AnalyticsPages, Label: "Pages", Description: "Top pages", NeedsSiteID: true},
	{Type: AnalyticsRealtime, Label: "Realtime", Description: "Live statistics", NeedsSiteID: true},
	{Type: AnalyticsDocs, Label: "Docs", Description: "Documentation", NeedsSiteID: false},
}

// AnalyticsTypes returns the analytics catalog in display order.
func AnalyticsTypes() []AnalyticsTypeInfo {
	return append([]AnalyticsTypeInfo(nil), analyticsTypes...)
}

// LookupAnalyticsType returns the catalog entry for t.
func LookupAnalyticsType(t AnalyticsType) (AnalyticsTypeInfo, bool) {
	for _, info := range analyticsTypes {
		if info.Type == t {
			return info, true
		}
	}
	return AnalyticsTypeInfo{}, false
}

// BacklogTitle is the fixed display title of backlog widgets.
const BacklogTitle = "Backlog"

// WidgetConfig is a user-added widget. Kind selects the variant: analytics
// widgets use Type and SiteID, backlog widgets use neither. Per-kind rules are
// enforced by ValidateWidget.
type WidgetConfig struct {
	ID     string        `json:"id"`
	Kind   WidgetKind    `json:"widgetType"`
	Title  string        `json:"title"`
	Type   AnalyticsType `json:"type,omitempty"`
	SiteID string        `json:"siteId,omitempty"`
}

// UnmarshalJSON decodes a widget record. Records written before the
// discriminant existed carry only an analytics type; they are read as analytics.
func (w *WidgetConfig) UnmarshalJSON(data []byte) error {
	type plain WidgetConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Kind == "" && p.Type != "" {
		p.Kind = KindAnalytics
	}
	*w = WidgetConfig(p)
	return nil
}

// String returns a short human-readable description of the widget.
func (w WidgetConfig) String() string {
	switch w.Kind {
	case KindAnalytics:
		return fmt.Sprintf("%s (%s %s)", w.ID, w.Kind, w.Type)
	default:
		return fmt.Sprintf("%s (%s)", w.ID, w.Kind)
	}
}

// Built-in panel ids. They always have a placement and are never stored in
// the widget registry.
const (
	PanelRepos     = "repos"
	PanelWireGuard = "wireguard"
)

// BuiltinPanel is a panel whose identity is fixed at build time.
type BuiltinPanel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BuiltinPanels returns the built-in panels in render order.
func BuiltinPanels() []BuiltinPanel {
	return []BuiltinPanel{
		{ID: PanelRepos, Title: "Recent repos"},
		{ID: PanelWireGuard, Title: "WireGuard"},
	}
}

// IsBuiltinPanel reports whether id names a built-in panel.
func IsBuiltinPanel(id string) bool {
	return id == PanelRepos || id == PanelWireGuard
}
