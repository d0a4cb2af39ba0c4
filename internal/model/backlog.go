package model

import "time"

// Priority ranks a backlog item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// IsValid checks whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// BacklogItem is one task in a backlog widget's private list.
type BacklogItem struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	CreatedAt int64    `json:"createdAt"` // Unix milliseconds
	Priority  Priority `json:"priority"`
}

// Created returns CreatedAt as a time.
func (it BacklogItem) Created() time.Time {
	return time.UnixMilli(it.CreatedAt)
}
