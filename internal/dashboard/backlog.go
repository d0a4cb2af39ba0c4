package dashboard

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/dashka/internal/backlog"
	"github.com/alfredjeanlab/dashka/internal/events"
	"github.com/alfredjeanlab/dashka/internal/model"
)

// Backlog action names carried by BacklogUpdated events.
const (
	backlogAdd    = "add"
	backlogToggle = "toggle"
	backlogDelete = "delete"
)

// Backlog opens the board of a registered backlog widget.
func (d *Dashboard) Backlog(ctx context.Context, widgetID string) (*backlog.Board, error) {
	w, err := d.Widget(widgetID)
	if err != nil {
		return nil, err
	}
	switch w.Kind {
	case model.KindBacklog:
		return backlog.OpenBoard(ctx, d.backlogs, widgetID), nil
	case model.KindAnalytics:
		return nil, fmt.Errorf("%w: %s", ErrNotBacklog, widgetID)
	default:
		return nil, fmt.Errorf("unknown widget kind %q", w.Kind)
	}
}

// AddBacklogItem adds an item to the board of widgetID.
func (d *Dashboard) AddBacklogItem(ctx context.Context, widgetID, text string, priority model.Priority) (model.BacklogItem, error) {
	b, err := d.Backlog(ctx, widgetID)
	if err != nil {
		return model.BacklogItem{}, err
	}
	it, err := b.Add(ctx, text, priority)
	if err != nil {
		return model.BacklogItem{}, err
	}
	d.emitBacklog(ctx, widgetID, backlogAdd, it.ID)
	return it, nil
}

// ToggleBacklogItem flips the completed flag of an item.
func (d *Dashboard) ToggleBacklogItem(ctx context.Context, widgetID, itemID string) (model.BacklogItem, error) {
	b, err := d.Backlog(ctx, widgetID)
	if err != nil {
		return model.BacklogItem{}, err
	}
	it, err := b.Toggle(ctx, itemID)
	if err != nil {
		return model.BacklogItem{}, err
	}
	d.emitBacklog(ctx, widgetID, backlogToggle, itemID)
	return it, nil
}

// DeleteBacklogItem removes an item.
func (d *Dashboard) DeleteBacklogItem(ctx context.Context, widgetID, itemID string) error {
	b, err := d.Backlog(ctx, widgetID)
	if err != nil {
		return err
	}
	if err := b.Delete(ctx, itemID); err != nil {
		return err
	}
	d.emitBacklog(ctx, widgetID, backlogDelete, itemID)
	return nil
}

func (d *Dashboard) emitBacklog(ctx context.Context, widgetID, action, itemID string) {
	events.Emit(ctx, d.pub, d.logger, events.TopicBacklogUpdated,
		events.BacklogUpdated{WidgetID: widgetID, Action: action, ItemID: itemID})
}
