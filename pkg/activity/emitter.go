package activity

import (
	"context"
	"strings"
	"time"
)

// DefaultChannel is stamped on events when the session names no channel.
const DefaultChannel = "forms"

// Config binds an Emitter to one form session.
type Config struct {
	SessionID string
	FormName  string
	Channel   string
	Identity  Identity
}

// Emitter builds the events of one form session and hands them to hooks.
// Without hooks every method is a no-op.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter drops nil hooks and applies DefaultChannel.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	var live Hooks
	for _, hook := range hooks {
		if hook != nil {
			live = append(live, hook)
		}
	}
	return &Emitter{hooks: live, cfg: cfg, now: time.Now}
}

// Enabled reports whether any hook is attached.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// ValuesUpdated reports a write of the named fields.
func (e *Emitter) ValuesUpdated(ctx context.Context, fields []string) error {
	if !e.Enabled() {
		return nil
	}
	input := e.input()
	input.Fields = fields
	return e.hooks.Notify(ctx, BuildValuesUpdatedEvent(input))
}

// Validated reports a completed validation pass.
func (e *Emitter) Validated(ctx context.Context, state string, errorCount int) error {
	if !e.Enabled() {
		return nil
	}
	input := e.input()
	input.State = state
	input.ErrorCount = errorCount
	return e.hooks.Notify(ctx, BuildValidatedEvent(input))
}

// Destroyed reports the session releasing its form.
func (e *Emitter) Destroyed(ctx context.Context) error {
	if !e.Enabled() {
		return nil
	}
	return e.hooks.Notify(ctx, BuildDestroyedEvent(e.input()))
}

func (e *Emitter) input() FormEventInput {
	return FormEventInput{
		Identity:   e.cfg.Identity,
		SessionID:  e.cfg.SessionID,
		FormName:   e.cfg.FormName,
		Channel:    e.cfg.Channel,
		OccurredAt: e.now(),
	}
}
