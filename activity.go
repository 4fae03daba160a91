package blockstate

import (
	"errors"

	"github.com/goliatone/go-blockstate/pkg/activity"
)

// WithActivityHooks attaches hooks notified when a builder freezes or fails.
// Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig sets the channel, actor and tenant stamped on emitted
// events. cfg.Enabled must be true for hooks to be notified; without this
// option emission is on whenever hooks are attached.
func WithActivityConfig(cfg activity.Config) Option {
	return func(c *config) {
		c.activityConfig = cfg
		c.activityConfigured = true
	}
}

func newActivityEmitter(cfg config) *activity.Emitter {
	emitterCfg := cfg.activityConfig
	if !cfg.activityConfigured {
		emitterCfg.Enabled = true
	}
	return activity.NewEmitter(cfg.activityHooks, emitterCfg)
}

func registryFrozenEvent(reg *Registry) activity.Event {
	stats := reg.Stats()
	return activity.BuildRegistryFrozenEvent(activity.RegistryEventInput{
		RegistryID: reg.ID(),
		Registered: stats.Registered,
		Variants:   stats.Variants,
		Set:        stats.Set,
		Backfilled: stats.Backfilled,
		Groups:     stats.Groups,
	})
}

func registryFailedEvent(err error) activity.Event {
	input := activity.RegistryEventInput{Err: err}
	var regErr *RegistrationError
	if errors.As(err, &regErr) {
		id := int(regErr.ID)
		input.FailedID = &id
	}
	return activity.BuildRegistryFailedEvent(input)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
