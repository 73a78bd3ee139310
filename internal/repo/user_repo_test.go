package repo

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestEnsureUser_CreatesInLanguageSelection(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()

	u, created, err := EnsureUser(ctx, db, 100, strp("de"))
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true for unseen id")
	}
	if u.State() != domain.StateAwaitingLanguageSelection || u.Mode != nil || u.Locale != nil {
		t.Fatalf("unexpected new user: %+v", u)
	}
	if u.LanguageCode == nil || *u.LanguageCode != "de" {
		t.Fatalf("language code not stored: %+v", u.LanguageCode)
	}

	got, err := FindUser(ctx, db, 100)
	if err != nil || got.State() != domain.StateAwaitingLanguageSelection {
		t.Fatalf("readback: %v %+v", err, got)
	}
}

func TestEnsureUser_ExistingRefreshesLanguageCode(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()

	if _, _, err := EnsureUser(ctx, db, 1, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateConversationState(ctx, db, 1, domain.StateIdle); err != nil {
		t.Fatalf("state: %v", err)
	}

	u, created, err := EnsureUser(ctx, db, 1, strp("it"))
	if err != nil || created {
		t.Fatalf("EnsureUser existing: created=%v err=%v", created, err)
	}
	if u.State() != domain.StateIdle {
		t.Fatalf("existing state must be kept, got %q", u.State())
	}
	got, _ := FindUser(ctx, db, 1)
	if got.LanguageCode == nil || *got.LanguageCode != "it" {
		t.Fatalf("language code not refreshed: %+v", got.LanguageCode)
	}

	// nil language code leaves the stored one alone
	if _, _, err := EnsureUser(ctx, db, 1, nil); err != nil {
		t.Fatalf("EnsureUser nil code: %v", err)
	}
	got, _ = FindUser(ctx, db, 1)
	if got.LanguageCode == nil || *got.LanguageCode != "it" {
		t.Fatalf("language code should be kept: %+v", got.LanguageCode)
	}
}

func TestFindUser_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	if _, err := FindUser(context.Background(), db, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserUpdates(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()
	if _, _, err := EnsureUser(ctx, db, 5, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mode := domain.ModeCalorie
	if err := UpdateLocale(ctx, db, 5, strp("fr")); err != nil {
		t.Fatalf("UpdateLocale: %v", err)
	}
	if err := UpdateMode(ctx, db, 5, &mode); err != nil {
		t.Fatalf("UpdateMode: %v", err)
	}
	if err := UpdateConversationState(ctx, db, 5, domain.StateAdminAwaitingUserStatus); err != nil {
		t.Fatalf("UpdateConversationState: %v", err)
	}
	refs := MessageRefs{WelcomeImage: intp(1), WelcomeGreeting: intp(2), Menu: intp(3), StartCommand: intp(4)}
	if err := UpdateMessageRefs(ctx, db, 5, refs); err != nil {
		t.Fatalf("UpdateMessageRefs: %v", err)
	}

	u, err := FindUser(ctx, db, 5)
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if !u.HasLocale() || *u.Locale != "fr" || u.Mode == nil || *u.Mode != domain.ModeCalorie {
		t.Fatalf("locale/mode not stored: %+v", u)
	}
	if u.State() != domain.StateAdminAwaitingUserStatus {
		t.Fatalf("state not stored: %q", u.State())
	}
	if *u.LastWelcomeImageMessageID != 1 || *u.LastWelcomeGreetingMessageID != 2 ||
		*u.LastMenuMessageID != 3 || *u.LastStartCommandMessageID != 4 {
		t.Fatalf("refs not stored: %+v", u)
	}

	// clearing
	if err := UpdateMode(ctx, db, 5, nil); err != nil {
		t.Fatalf("clear mode: %v", err)
	}
	if err := UpdateConversationState(ctx, db, 5, domain.StateIdle); err != nil {
		t.Fatalf("clear state: %v", err)
	}
	if err := UpdateMessageRefs(ctx, db, 5, MessageRefs{Menu: intp(9)}); err != nil {
		t.Fatalf("clear refs: %v", err)
	}
	if err := UpdateMenuMessageID(ctx, db, 5, intp(10)); err != nil {
		t.Fatalf("menu id: %v", err)
	}
	u, _ = FindUser(ctx, db, 5)
	if u.Mode != nil || u.ConversationState != nil || u.LastWelcomeImageMessageID != nil || *u.LastMenuMessageID != 10 {
		t.Fatalf("fields not cleared: %+v", u)
	}
}

func TestListAllUserIDs_AndMarkBlocked(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()
	for _, id := range []int64{30, 10, 20} {
		if _, _, err := EnsureUser(ctx, db, id, nil); err != nil {
			t.Fatalf("seed %d: %v", id, err)
		}
	}
	ids, err := ListAllUserIDs(ctx, db)
	if err != nil {
		t.Fatalf("ListAllUserIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{10, 20, 30}) {
		t.Fatalf("unexpected ids: %v", ids)
	}

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := MarkBlocked(ctx, db, 20, first); err != nil {
		t.Fatalf("MarkBlocked: %v", err)
	}
	if err := MarkBlocked(ctx, db, 20, first.Add(48*time.Hour)); err != nil {
		t.Fatalf("MarkBlocked again: %v", err)
	}
	u, _ := FindUser(ctx, db, 20)
	if !u.IsBlocked || u.BlockedAt == nil || !u.BlockedAt.Equal(first) {
		t.Fatalf("blocked fields unexpected: %+v", u)
	}
}
