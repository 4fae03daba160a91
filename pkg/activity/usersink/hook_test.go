package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-blockstate/pkg/activity"
	"github.com/goliatone/go-blockstate/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsRegistryEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	registryID := uuid.NewString()

	event := activity.BuildRegistryFrozenEvent(activity.RegistryEventInput{
		RegistryID: registryID,
		Registered: 3,
		OccurredAt: now,
	})
	event.ActorID = actorID.String()
	event.TenantID = tenantID.String()
	event.Channel = "blockstate"

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID {
		t.Fatalf("expected actor %s got %s/%s", actorID, record.ActorID, record.UserID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != activity.VerbRegistryFrozen || record.ObjectType != activity.ObjectTypeRegistry || record.ObjectID != registryID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["registry_id"] != registryID || record.Data["registered"] != 3 {
		t.Fatalf("unexpected data: %+v", record.Data)
	}
}

func TestHookNotifyKeepsNonUUIDActorInData(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbRegistryFailed,
		ObjectType: activity.ObjectTypeRegistry,
		ObjectID:   activity.ObjectTypeRegistry,
		ActorID:    "world-loader",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor uuid, got %s", record.ActorID)
	}
	if record.Data["actor"] != "world-loader" {
		t.Fatalf("expected actor name in data, got %+v", record.Data)
	}
	if _, ok := record.Data["registry_id"]; ok {
		t.Fatalf("fallback object id must not be reported as registry id")
	}
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifyFiltersVerbsAndSkipsIncomplete(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Verbs: []string{activity.VerbRegistryFailed}}

	_ = hook.Notify(context.Background(), activity.Event{})
	_ = hook.Notify(context.Background(), activity.BuildRegistryFrozenEvent(activity.RegistryEventInput{}))
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}

	_ = hook.Notify(context.Background(), activity.BuildRegistryFailedEvent(activity.RegistryEventInput{}))
	if len(sink.records) != 1 {
		t.Fatalf("expected failed event forwarded, got %d", len(sink.records))
	}
}

func TestHookNotifyPropagatesSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.BuildRegistryFrozenEvent(activity.RegistryEventInput{RegistryID: "r"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
