package services

import (
	"context"
	"testing"
	"time"

	"github.com/chatbotchef/chatbotchef/internal/repo"
)

func TestPremium_GrantFromNowAndExtend(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &PremiumService{DB: db, DefaultDays: 30, Now: fixedClock(now)}

	if ok, err := s.IsActive(ctx, 1); err != nil || ok {
		t.Fatalf("no grant should be inactive, ok=%v err=%v", ok, err)
	}
	if u, err := s.Until(ctx, 1); err != nil || u != nil {
		t.Fatalf("until=%v err=%v", u, err)
	}

	until, err := s.Grant(ctx, 1, 10)
	if err != nil || !until.Equal(now.Add(10*day)) {
		t.Fatalf("until=%v err=%v", until, err)
	}
	if ok, _ := s.IsActive(ctx, 1); !ok {
		t.Fatalf("expected active")
	}

	// active grant extends from its expiry
	until, _ = s.Grant(ctx, 1, 5)
	if !until.Equal(now.Add(15 * day)) {
		t.Fatalf("extension = %v", until)
	}

	// non-positive days fall back to the default duration
	until, _ = s.Grant(ctx, 2, 0)
	if !until.Equal(now.Add(30 * day)) {
		t.Fatalf("default duration = %v", until)
	}
}

func TestPremium_ExpiredGrantRestartsFromNow(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_ = repo.UpsertPremium(ctx, db, 1, now.Add(-48*time.Hour))

	s := &PremiumService{DB: db, DefaultDays: 30, Now: fixedClock(now)}
	if ok, _ := s.IsActive(ctx, 1); ok {
		t.Fatalf("expired grant reported active")
	}
	until, _ := s.Grant(ctx, 1, 1)
	if !until.Equal(now.Add(day)) {
		t.Fatalf("until = %v", until)
	}
}

func TestPremium_ExpiringWithinWindow(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
	seed := map[int64]time.Time{
		1: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),   // start of window
		2: time.Date(2025, 6, 4, 23, 59, 0, 0, time.UTC), // end of window
		3: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),   // next day
		4: time.Date(2025, 6, 3, 23, 59, 0, 0, time.UTC), // previous day
	}
	for id, at := range seed {
		if err := repo.UpsertPremium(ctx, db, id, at); err != nil {
			t.Fatal(err)
		}
	}
	s := &PremiumService{DB: db, Now: fixedClock(now)}
	got, err := s.ExpiringWithin(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].TelegramID != 1 || got[1].TelegramID != 2 {
		t.Fatalf("got %+v", got)
	}
}
