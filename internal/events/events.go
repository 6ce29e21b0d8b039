// Package events carries progress notifications from the tracker to live
// dashboards and external subscribers.
package events

import (
	"context"
	"errors"
	"time"
)

// Event types
const (
	TaskCreated   = "task.created"
	TaskUpdated   = "task.updated"
	TaskDeleted   = "task.deleted"
	LevelProgress = "level.progress"
	StatsUpdated  = "stats.updated"
)

// Event is a single notification
type Event struct {
	Type string      `json:"type"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data,omitempty"`
}

// New creates an event stamped with the current time
func New(eventType string, data interface{}) Event {
	return Event{Type: eventType, At: time.Now().UTC(), Data: data}
}

// Publisher delivers events to some audience
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Multi publishes to every publisher and joins their errors
type Multi []Publisher

// Publish implements Publisher
func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
