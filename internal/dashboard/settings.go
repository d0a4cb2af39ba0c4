package dashboard

import (
	"context"

	"github.com/alfredjeanlab/dashka/internal/events"
	"github.com/alfredjeanlab/dashka/internal/widget"
)

// AnalyticsBaseURL returns the effective analytics base URL.
func (d *Dashboard) AnalyticsBaseURL(ctx context.Context) string {
	return d.settings.BaseURL(ctx)
}

// SetAnalyticsBaseURL stores a new base URL, or clears it when raw is blank,
// and returns the effective one.
func (d *Dashboard) SetAnalyticsBaseURL(ctx context.Context, raw string) (string, error) {
	u, err := d.settings.SetBaseURL(ctx, raw)
	if err != nil {
		return "", err
	}
	events.Emit(ctx, d.pub, d.logger, events.TopicSettingsUpdated, events.SettingsUpdated{AnalyticsBaseURL: u})
	return u, nil
}

// WidgetURL returns the embed URL of the analytics widget id.
func (d *Dashboard) WidgetURL(ctx context.Context, id string) (string, error) {
	w, err := d.Widget(id)
	if err != nil {
		return "", err
	}
	return widget.AnalyticsURL(d.AnalyticsBaseURL(ctx), w)
}
