// Package activity fans form session events out to hooks.
package activity

import (
	"context"
	"errors"
	"maps"
	"time"
)

// Event is something that happened to a form session. ObjectID carries the
// session ID, or the form name when the session has none.
type Event struct {
	Identity
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	FormName   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Complete reports whether the event names a verb and the object it concerns.
func (e Event) Complete() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// Stamped returns a copy that owns its metadata and carries a timestamp.
func (e Event) Stamped() Event {
	if len(e.Metadata) > 0 {
		e.Metadata = maps.Clone(e.Metadata)
	} else {
		e.Metadata = nil
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return e
}

// ActivityHook receives form session events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans events out to several hooks.
type Hooks []ActivityHook

// Notify hands each hook its own stamped copy of event and joins their
// errors. Incomplete events are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 || !event.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = event.Stamped()

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event.Stamped()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
