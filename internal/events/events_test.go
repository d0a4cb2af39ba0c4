package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// failingPublisher always fails to publish.
type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(ctx context.Context, topic string, event any) error {
	f.calls++
	return errors.New("no responders")
}

func (f *failingPublisher) Close() error { return nil }

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicWidgetAdded, WidgetAdded{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestEmit_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	pub := &failingPublisher{}

	Emit(context.Background(), pub, logger, TopicLayoutUpdated, LayoutUpdated{})

	if pub.calls != 1 {
		t.Errorf("Publish called %d times, want 1", pub.calls)
	}
	if !strings.Contains(buf.String(), TopicLayoutUpdated) {
		t.Errorf("failure not logged with topic: %q", buf.String())
	}
}

func TestEmit_NilPublisher(t *testing.T) {
	Emit(context.Background(), nil, nil, TopicLayoutUpdated, LayoutUpdated{})
}
