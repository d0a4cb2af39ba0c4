// Package backlog stores the private task list of each backlog widget.
package backlog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/dashka/internal/idgen"
	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/persist"
)

// ErrItemNotFound is returned when an item id is not on the board.
var ErrItemNotFound = errors.New("backlog item not found")

// Store loads and saves item lists by widget id. Lists live under their own
// key, independent of the layout and the widget registry.
type Store struct {
	adapter *persist.Adapter
}

// NewStore returns a Store writing through a.
func NewStore(a *persist.Adapter) *Store {
	return &Store{adapter: a}
}

// Load returns the items of widgetID. Absent or malformed lists are empty.
func (s *Store) Load(ctx context.Context, widgetID string) []model.BacklogItem {
	var items []model.BacklogItem
	if !s.adapter.Read(ctx, persist.BacklogKey(widgetID), &items) {
		return nil
	}
	return items
}

// Save replaces the items of widgetID.
func (s *Store) Save(ctx context.Context, widgetID string, items []model.BacklogItem) error {
	if items == nil {
		items = []model.BacklogItem{}
	}
	return s.adapter.Write(ctx, persist.BacklogKey(widgetID), items)
}

// Sorted returns items in display order: incomplete before completed, newest
// first within each group. Ties keep their stored order. items is not modified.
func Sorted(items []model.BacklogItem) []model.BacklogItem {
	out := append([]model.BacklogItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// NewItem builds an incomplete item created at now. text is trimmed and must
// not be blank; an empty priority means medium.
func NewItem(text string, priority model.Priority, now time.Time) (model.BacklogItem, error) {
	if priority == "" {
		priority = model.PriorityMedium
	}
	id, err := idgen.ItemID(now)
	if err != nil {
		return model.BacklogItem{}, err
	}
	it := model.BacklogItem{
		ID:        id,
		Text:      strings.TrimSpace(text),
		CreatedAt: now.UnixMilli(),
		Priority:  priority,
	}
	if err := model.ValidateBacklogItem(&it); err != nil {
		return model.BacklogItem{}, err
	}
	return it, nil
}

// Stats summarizes a board.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// Board is the item list of one backlog widget. Every mutation is saved
// before it returns. It is not safe for concurrent use.
type Board struct {
	store    *Store
	widgetID string
	items    []model.BacklogItem
	now      func() time.Time
}

// OpenBoard loads the board of widgetID.
func OpenBoard(ctx context.Context, s *Store, widgetID string) *Board {
	return &Board{store: s, widgetID: widgetID, items: s.Load(ctx, widgetID), now: time.Now}
}

// WidgetID returns the id of the widget the board belongs to.
func (b *Board) WidgetID() string {
	return b.widgetID
}

// Items returns the items in display order.
func (b *Board) Items() []model.BacklogItem {
	return Sorted(b.items)
}

// Add creates an item and puts it at the front of the stored list.
func (b *Board) Add(ctx context.Context, text string, priority model.Priority) (model.BacklogItem, error) {
	it, err := NewItem(text, priority, b.now())
	if err != nil {
		return model.BacklogItem{}, err
	}
	next := append([]model.BacklogItem{it}, b.items...)
	if err := b.commit(ctx, next); err != nil {
		return model.BacklogItem{}, err
	}
	return it, nil
}

// Toggle flips the completed flag of the item with id.
func (b *Board) Toggle(ctx context.Context, id string) (model.BacklogItem, error) {
	next := append([]model.BacklogItem(nil), b.items...)
	for i := range next {
		if next[i].ID == id {
			next[i].Completed = !next[i].Completed
			if err := b.commit(ctx, next); err != nil {
				return model.BacklogItem{}, err
			}
			return next[i], nil
		}
	}
	return model.BacklogItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Delete removes the item with id.
func (b *Board) Delete(ctx context.Context, id string) error {
	next := make([]model.BacklogItem, 0, len(b.items))
	for _, it := range b.items {
		if it.ID != id {
			next = append(next, it)
		}
	}
	if len(next) == len(b.items) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return b.commit(ctx, next)
}

// Stats counts the items by state.
func (b *Board) Stats() Stats {
	st := Stats{Total: len(b.items)}
	for _, it := range b.items {
		if it.Completed {
			st.Completed++
		} else {
			st.Active++
		}
	}
	return st
}

func (b *Board) commit(ctx context.Context, next []model.BacklogItem) error {
	if err := b.store.Save(ctx, b.widgetID, next); err != nil {
		return err
	}
	b.items = next
	return nil
}
