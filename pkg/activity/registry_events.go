package activity

import "time"

const (
	VerbRegistryFrozen = "blockstate.registry.frozen"
	VerbRegistryFailed = "blockstate.registry.failed"

	ObjectTypeRegistry = "blockstate.registry"
)

// RegistryEventInput carries the counters and identity of a registry build.
type RegistryEventInput struct {
	RegistryID string
	Registered int
	Variants   int
	Set        int
	Backfilled int
	Groups     int
	// FailedID is the legacy id whose registration aborted the build.
	FailedID   *int
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildRegistryFrozenEvent describes a successful Freeze.
func BuildRegistryFrozenEvent(input RegistryEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["registered"] = input.Registered
	metadata["variants"] = input.Variants
	metadata["set"] = input.Set
	metadata["backfilled"] = input.Backfilled
	metadata["groups"] = input.Groups
	return Event{
		Verb:       VerbRegistryFrozen,
		ObjectType: ObjectTypeRegistry,
		ObjectID:   objectID(input),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildRegistryFailedEvent describes a build aborted by a registration error.
func BuildRegistryFailedEvent(input RegistryEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Err != nil || input.FailedID != nil {
		if metadata == nil {
			metadata = map[string]any{}
		}
	}
	if input.Err != nil {
		metadata["error"] = input.Err.Error()
	}
	if input.FailedID != nil {
		metadata["failed_id"] = *input.FailedID
	}
	return Event{
		Verb:       VerbRegistryFailed,
		ObjectType: ObjectTypeRegistry,
		ObjectID:   objectID(input),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func objectID(input RegistryEventInput) string {
	if input.RegistryID != "" {
		return input.RegistryID
	}
	return ObjectTypeRegistry
}
