// Package events announces committed dashboard changes on an event bus.
package events

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/dashka/internal/model"
)

// Event topic constants
const (
	TopicLayoutUpdated   = "dashka.layout.updated"
	TopicLayoutReset     = "dashka.layout.reset"
	TopicWidgetAdded     = "dashka.widget.added"
	TopicWidgetRemoved   = "dashka.widget.removed"
	TopicBacklogUpdated  = "dashka.backlog.updated"
	TopicSettingsUpdated = "dashka.settings.updated"

	// TopicAll matches every dashka topic.
	TopicAll = "dashka.>"
)

// Event types

type LayoutUpdated struct {
	Layouts model.Layouts `json:"layouts"`
}

type LayoutReset struct {
	Layouts model.Layouts `json:"layouts"`
}

type WidgetAdded struct {
	Widget model.WidgetConfig `json:"widget"`
}

type WidgetRemoved struct {
	WidgetID string `json:"widget_id"`
}

type BacklogUpdated struct {
	WidgetID string `json:"widget_id"`
	Action   string `json:"action"` // add, toggle, delete
	ItemID   string `json:"item_id"`
}

type SettingsUpdated struct {
	AnalyticsBaseURL string `json:"analytics_base_url"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Emit publishes event and logs a failure instead of returning it. State has
// already been committed when an event is emitted, so a bus outage must not
// fail the operation.
func Emit(ctx context.Context, pub Publisher, logger *slog.Logger, topic string, event any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, event); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("publishing event failed", "topic", topic, "err", err)
	}
}

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, event any) error { return nil }

func (NoopPublisher) Close() error { return nil }

// Message is one event received from the bus.
type Message struct {
	Topic string
	Data  []byte
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
