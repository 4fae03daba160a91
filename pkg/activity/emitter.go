package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "blockstate"

// Config controls activity emission defaults.
type Config struct {
	Enabled bool
	Channel string
	// ActorID and TenantID are stamped on events that do not carry their own.
	ActorID  string
	TenantID string
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	var kept Hooks
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	cfg.Enabled = cfg.Enabled && len(kept) > 0
	return &Emitter{hooks: kept, cfg: cfg}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled
}

// Emit forwards the event to all hooks after filling defaults.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.cfg.Channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.cfg.ActorID
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.cfg.TenantID
	}
	return e.hooks.Notify(ctx, event)
}
