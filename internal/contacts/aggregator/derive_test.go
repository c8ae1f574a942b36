package aggregator_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/aggregator"
	"portal_final_backend/internal/contacts/domain"
)

func boolPtr(b bool) *bool     { return &b }
func strPtr(s string) *string { return &s }

func setupAggregateWithMembers(t *testing.T, store *fakeStore, members []domain.RawContact) uuid.UUID {
	t.Helper()
	org := uuid.New()
	aggID := uuid.New()
	store.aggregates[aggID] = domain.Aggregate{ID: aggID, OrganizationID: org}
	for i := range members {
		members[i].AggregateID = &aggID
		store.addRawContact(members[i], nil)
	}
	return aggID
}

func TestDeriveFields_TimesContactedTakesMaxNotSum(t *testing.T) {
	store := newFakeStore()
	aggID := setupAggregateWithMembers(t, store, []domain.RawContact{
		{ID: uuid.New(), TimesContacted: 2},
		{ID: uuid.New(), TimesContacted: 5},
		{ID: uuid.New(), TimesContacted: 3},
	})

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	got := store.aggregates[aggID].TimesContacted
	if got != 5 {
		t.Fatalf("expected times_contacted = max(2,5,3) = 5, got %d", got)
	}
}

func TestDeriveFields_SendToVoicemailIsAndOverNonNull(t *testing.T) {
	store := newFakeStore()
	aggID := setupAggregateWithMembers(t, store, []domain.RawContact{
		{ID: uuid.New(), SendToVoicemail: boolPtr(true)},
		{ID: uuid.New(), SendToVoicemail: nil},
		{ID: uuid.New(), SendToVoicemail: boolPtr(true)},
	})

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	if !store.aggregates[aggID].SendToVoicemail {
		t.Fatal("expected send_to_voicemail = true when every non-null member is true")
	}
}

func TestDeriveFields_SendToVoicemailFalseOnAnyFalse(t *testing.T) {
	store := newFakeStore()
	aggID := setupAggregateWithMembers(t, store, []domain.RawContact{
		{ID: uuid.New(), SendToVoicemail: boolPtr(true)},
		{ID: uuid.New(), SendToVoicemail: boolPtr(false)},
	})

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	if store.aggregates[aggID].SendToVoicemail {
		t.Fatal("expected send_to_voicemail = false when any non-null member is false")
	}
}

func TestDeriveFields_StarredIsOr(t *testing.T) {
	store := newFakeStore()
	aggID := setupAggregateWithMembers(t, store, []domain.RawContact{
		{ID: uuid.New(), Starred: false},
		{ID: uuid.New(), Starred: true},
		{ID: uuid.New(), Starred: false},
	})

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	if !store.aggregates[aggID].Starred {
		t.Fatal("expected starred = true when any member is starred")
	}
}

func TestDeriveFields_CustomRingtoneFirstNonNullWins(t *testing.T) {
	store := newFakeStore()
	aggID := setupAggregateWithMembers(t, store, []domain.RawContact{
		{ID: uuid.New(), CustomRingtone: nil},
		{ID: uuid.New(), CustomRingtone: strPtr("chimes.ogg")},
		{ID: uuid.New(), CustomRingtone: strPtr("bell.ogg")},
	})

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	got := store.aggregates[aggID].CustomRingtone
	if got == nil || *got != "chimes.ogg" {
		t.Fatalf("expected first non-null ringtone \"chimes.ogg\", got %v", got)
	}
}

func TestDeriveFields_LastTimeContactedTakesMax(t *testing.T) {
	store := newFakeStore()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	aggID := setupAggregateWithMembers(t, store, []domain.RawContact{
		{ID: uuid.New(), LastTimeContacted: &early},
		{ID: uuid.New(), LastTimeContacted: &late},
	})

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	got := store.aggregates[aggID].LastTimeContacted
	if got == nil || !got.Equal(late) {
		t.Fatalf("expected last_time_contacted = %v, got %v", late, got)
	}
}

func TestDeriveFields_DisplayNamePicksMostComplex(t *testing.T) {
	store := newFakeStore()
	aggID := setupAggregateWithMembers(t, store, []domain.RawContact{
		{ID: uuid.New(), DisplayNameCache: "john doe"},
		{ID: uuid.New(), DisplayNameCache: "John Doe"},
	})

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	if got := store.aggregates[aggID].DisplayName; got != "John Doe" {
		t.Fatalf("expected the mixed-case display name to win, got %q", got)
	}
}

func TestDeriveFields_DeletesAggregateWhenNoMembersRemain(t *testing.T) {
	store := newFakeStore()
	aggID := uuid.New()
	store.aggregates[aggID] = domain.Aggregate{ID: aggID}

	tx, _ := store.Begin(context.Background())
	if err := aggregator.DeriveFields(context.Background(), tx, aggID); err != nil {
		t.Fatalf("derive fields: %v", err)
	}

	if _, ok := store.aggregates[aggID]; ok {
		t.Fatal("expected the now-memberless aggregate to be deleted")
	}
}
