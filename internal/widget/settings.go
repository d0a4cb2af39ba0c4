package widget

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/persist"
)

// DefaultAnalyticsBaseURL is used when no base URL has been stored.
const DefaultAnalyticsBaseURL = "https://analytics.anichkay.dev"

// Settings holds the analytics base URL shared by every analytics widget.
type Settings struct {
	adapter  *persist.Adapter
	fallback string
}

// NewSettings returns Settings that fall back to fallback, or to
// DefaultAnalyticsBaseURL when fallback is empty.
func NewSettings(a *persist.Adapter, fallback string) *Settings {
	if fallback == "" {
		fallback = DefaultAnalyticsBaseURL
	}
	return &Settings{adapter: a, fallback: fallback}
}

// BaseURL returns the stored base URL, or the fallback when none is stored.
func (s *Settings) BaseURL(ctx context.Context) string {
	var stored string
	if s.adapter.Read(ctx, persist.KeyAnalyticsBaseURL, &stored) && strings.TrimSpace(stored) != "" {
		return stored
	}
	return s.fallback
}

// SetBaseURL stores raw as the base URL after checking it is an absolute
// http(s) URL. A blank raw clears the stored value so the fallback applies.
// It returns the effective base URL.
func (s *Settings) SetBaseURL(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if err := s.adapter.Delete(ctx, persist.KeyAnalyticsBaseURL); err != nil {
			return "", err
		}
		return s.fallback, nil
	}
	if err := ValidateBaseURL(raw); err != nil {
		return "", err
	}
	if err := s.adapter.Write(ctx, persist.KeyAnalyticsBaseURL, raw); err != nil {
		return "", err
	}
	return raw, nil
}

// ValidateBaseURL checks that raw is an absolute http or https URL with a host.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &model.ValidationError{Errors: []model.FieldError{{Field: "baseUrl", Message: err.Error()}}}
	}
	var ve model.ValidationError
	if u.Scheme != "http" && u.Scheme != "https" {
		ve.Add("baseUrl", "scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		ve.Add("baseUrl", "host is required")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		ve.Add("baseUrl", "must not carry a query or fragment")
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// AnalyticsURL builds the embed URL for an analytics widget:
// <base>/widget/<type>, with ?siteId=<id> for types that need a site id.
func AnalyticsURL(base string, w model.WidgetConfig) (string, error) {
	switch w.Kind {
	case model.KindAnalytics:
	case model.KindBacklog:
		return "", fmt.Errorf("widget %s has no embed URL", w.ID)
	default:
		return "", fmt.Errorf("unknown widget kind %q", w.Kind)
	}
	info, ok := model.LookupAnalyticsType(w.Type)
	if !ok {
		return "", fmt.Errorf("unknown analytics type %q", w.Type)
	}

	out := strings.TrimRight(base, "/") + "/widget/" + url.PathEscape(string(w.Type))
	if info.NeedsSiteID {
		out += "?siteId=" + strings.ReplaceAll(url.QueryEscape(w.SiteID), "+", "%20")
	}
	return out, nil
}
