// Package usersink forwards registry activity events to a go-users
// ActivitySink.
package usersink

import (
	"context"
	"slices"
	"strings"

	"github.com/goliatone/go-blockstate/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Verbs restricts forwarding to the listed verbs. Empty forwards all.
	Verbs []string
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if len(h.Verbs) > 0 && !slices.Contains(h.Verbs, normalized.Verb) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, toRecord(normalized))
}

func toRecord(event activity.Event) usertypes.ActivityRecord {
	actor := parseUUID(event.ActorID)
	data := map[string]any{}
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.ObjectType == activity.ObjectTypeRegistry && event.ObjectID != activity.ObjectTypeRegistry {
		data["registry_id"] = event.ObjectID
	}
	if actor == uuid.Nil && event.ActorID != "" {
		data["actor"] = event.ActorID
	}
	if len(data) == 0 {
		data = nil
	}
	return usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     actor,
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
}

// parseUUID returns uuid.Nil for anything that is not a UUID, such as a
// service name used as actor.
func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
