// Package widget creates, validates, and stores the user-added dashboard
// widgets, and holds the analytics embed settings.
package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/dashka/internal/idgen"
	"github.com/alfredjeanlab/dashka/internal/model"
)

// Params carries the user input a widget kind may need.
type Params struct {
	SiteID string
}

// Factory builds validated WidgetConfigs.
type Factory struct {
	// Now and NewID default to time.Now and idgen.WidgetID.
	Now   func() time.Time
	NewID func(kind string, now time.Time) (string, error)
}

// NewFactory returns a Factory using the wall clock and nanoid suffixes.
func NewFactory() *Factory {
	return &Factory{Now: time.Now, NewID: idgen.WidgetID}
}

// Create validates the selection and returns a new widget with a fresh id.
// For analytics, typ must be a catalog type and a type that needs a site id
// must get a non-blank one. typ is ignored for backlog widgets.
func (f *Factory) Create(kind model.WidgetKind, typ model.AnalyticsType, params Params) (model.WidgetConfig, error) {
	w, err := draft(kind, typ, params)
	if err != nil {
		return model.WidgetConfig{}, err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	newID := idgen.WidgetID
	if f.NewID != nil {
		newID = f.NewID
	}

	id, err := newID(kind.String(), now())
	if err != nil {
		return model.WidgetConfig{}, fmt.Errorf("generate widget id: %w", err)
	}
	w.ID = id

	if err := model.ValidateWidget(&w); err != nil {
		return model.WidgetConfig{}, err
	}
	return w, nil
}

// CanCreate reports whether Create would accept the selection.
func CanCreate(kind model.WidgetKind, typ model.AnalyticsType, params Params) bool {
	_, err := draft(kind, typ, params)
	return err == nil
}

// draft builds the id-less widget for a selection and checks its inputs.
func draft(kind model.WidgetKind, typ model.AnalyticsType, params Params) (model.WidgetConfig, error) {
	switch kind {
	case model.KindAnalytics:
		info, ok := model.LookupAnalyticsType(typ)
		if !ok {
			return model.WidgetConfig{}, fmt.Errorf("unknown analytics type %q", typ)
		}
		siteID := strings.TrimSpace(params.SiteID)
		if info.NeedsSiteID && siteID == "" {
			ve := &model.ValidationError{}
			ve.Add("siteId", "is required for %s widgets", info.Label)
			return model.WidgetConfig{}, ve
		}
		w := model.WidgetConfig{Kind: kind, Type: typ, Title: info.Label}
		if info.NeedsSiteID {
			w.SiteID = siteID
			w.Title = info.Label + " — " + siteID
		}
		return w, nil
	case model.KindBacklog:
		return model.WidgetConfig{Kind: kind, Title: model.BacklogTitle}, nil
	default:
		return model.WidgetConfig{}, fmt.Errorf("unknown widget kind %q", kind)
	}
}
