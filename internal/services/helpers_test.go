package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chatbotchef/chatbotchef/internal/repo"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

type sent struct {
	ChatID  int64
	Kind    string
	Text    string
	FileID  string
	Caption string
}

// fakeMessenger records deliveries; failFor returns an error per attempt.
type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sent
	tries   map[int64]int
	failFor func(chatID int64, attempt int) error
}

func (f *fakeMessenger) record(chatID int64, s sent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tries == nil {
		f.tries = map[int64]int{}
	}
	f.tries[chatID]++
	if f.failFor != nil {
		if err := f.failFor(chatID, f.tries[chatID]); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, s)
	return nil
}

func (f *fakeMessenger) SendText(_ context.Context, chatID int64, text string, _ *tgbotapi.InlineKeyboardMarkup) (int, error) {
	return 1, f.record(chatID, sent{ChatID: chatID, Kind: "text", Text: text})
}

func (f *fakeMessenger) SendPhoto(_ context.Context, chatID int64, m telegram.Media, caption string, _ *tgbotapi.InlineKeyboardMarkup) (int, error) {
	return 1, f.record(chatID, sent{ChatID: chatID, Kind: "photo", FileID: m.FileID, Caption: caption})
}

func (f *fakeMessenger) SendVideo(_ context.Context, chatID int64, m telegram.Media, caption string, _ *tgbotapi.InlineKeyboardMarkup) (int, error) {
	return 1, f.record(chatID, sent{ChatID: chatID, Kind: "video", FileID: m.FileID, Caption: caption})
}

func (f *fakeMessenger) Sent() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

func (f *fakeMessenger) Tries(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tries[chatID]
}

// echoLocalizer renders "locale|key|date".
type echoLocalizer struct{}

func (echoLocalizer) ResolvePtr(tag *string) string {
	if tag == nil {
		return "en"
	}
	return *tag
}

func (echoLocalizer) Translate(locale, key string, vars map[string]string) string {
	return locale + "|" + key + "|" + vars["date"]
}
