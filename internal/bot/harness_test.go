package bot

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

	"github.com/chatbotchef/chatbotchef/internal/config"
	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/i18n"
	"github.com/chatbotchef/chatbotchef/internal/llm"
	"github.com/chatbotchef/chatbotchef/internal/repo"
	"github.com/chatbotchef/chatbotchef/internal/retry"
	"github.com/chatbotchef/chatbotchef/internal/services"
	"github.com/chatbotchef/chatbotchef/internal/session"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

const (
	adminID   int64 = 1000
	welcomeIm       = "https://cdn.example.com/welcome.jpg"
)

type op struct {
	Method     string
	ChatID     int64
	Text       string
	MessageID  int
	Media      telegram.Media
	Markup     *tgbotapi.InlineKeyboardMarkup
	CallbackID string
}

// fakeBot records every outbound call and hands out increasing message ids.
type fakeBot struct {
	mu     sync.Mutex
	ops    []op
	nextID int
	fail   func(op) error
}

func (b *fakeBot) add(o op) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		if err := b.fail(o); err != nil {
			return 0, err
		}
	}
	b.nextID++
	b.ops = append(b.ops, o)
	return 100 + b.nextID, nil
}

func (b *fakeBot) SendText(_ context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	return b.add(op{Method: "sendMessage", ChatID: chatID, Text: text, Markup: kb})
}

func (b *fakeBot) SendPhoto(_ context.Context, chatID int64, m telegram.Media, caption string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	return b.add(op{Method: "sendPhoto", ChatID: chatID, Text: caption, Media: m, Markup: kb})
}

func (b *fakeBot) SendVideo(_ context.Context, chatID int64, m telegram.Media, caption string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	return b.add(op{Method: "sendVideo", ChatID: chatID, Text: caption, Media: m, Markup: kb})
}

func (b *fakeBot) RemoveKeyboard(_ context.Context, chatID int64, id int) error {
	_, err := b.add(op{Method: "removeKeyboard", ChatID: chatID, MessageID: id})
	return err
}

func (b *fakeBot) DeleteMessage(_ context.Context, chatID int64, id int) error {
	_, err := b.add(op{Method: "deleteMessage", ChatID: chatID, MessageID: id})
	return err
}

func (b *fakeBot) AnswerCallback(_ context.Context, id, text string) error {
	_, err := b.add(op{Method: "answerCallback", CallbackID: id, Text: text})
	return err
}

// take returns and forgets the recorded calls.
func (b *fakeBot) take() []op {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.ops
	b.ops = nil
	return out
}

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	panic bool
	calls [][]llm.Message
}

func (f *fakeLLM) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic {
		panic("completion exploded")
	}
	f.calls = append(f.calls, msgs)
	return f.reply, f.err
}

type harness struct {
	t     *testing.T
	d     *Dispatcher
	bot   *fakeBot
	llm   *fakeLLM
	db    *gorm.DB
	store *session.MemoryStore
	clock time.Time
	seq   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:bot_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	text, err := i18n.New(i18n.Options{DefaultLocale: "en"})
	if err != nil {
		t.Fatalf("i18n: %v", err)
	}

	h := &harness{t: t, bot: &fakeBot{}, llm: &fakeLLM{reply: "Try a tomato omelette."}, db: db, clock: time.Now()}
	h.store = session.NewMemoryStore(10*time.Minute, func() time.Time { return h.clock })

	accounts := services.NewAccountService(db)
	bc := services.NewBroadcastService(h.bot, accounts)
	bc.MessageDelay, bc.BatchDelay = 0, 0
	bc.Policy.Backoff = retry.Constant(0)

	h.d = New(Deps{
		Bot:       h.bot,
		LLM:       h.llm,
		Text:      text,
		Sessions:  h.store,
		Accounts:  accounts,
		Premium:   services.NewPremiumService(db, 30),
		Usage:     services.NewUsageService(db),
		History:   services.NewHistoryService(db, 20),
		Admin:     services.NewAdminService(db),
		Broadcast: bc,
		Telegram:  config.TelegramConfig{AdminIDs: []int64{adminID}, WelcomeImageURL: welcomeIm},
		Billing:   config.BillingConfig{FreeTotalLimit: 2, PremiumPrice: "4.99", PremiumDurationDays: 30},
		Help:      config.HelpConfig{WebsiteURL: "https://chatbotchef.example", SupportEmail: "help@chatbotchef.example"},
	})
	return h
}

func (h *harness) nextUpdateID() int {
	h.seq++
	return h.seq
}

// send delivers a text message from user and returns the recorded calls.
func (h *harness) send(user int64, text string) []op {
	h.t.Helper()
	id := h.nextUpdateID()
	h.d.Handle(context.Background(), tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: 10 + id,
			From:      &tgbotapi.User{ID: user, FirstName: "Ada", LanguageCode: "en"},
			Chat:      &tgbotapi.Chat{ID: user},
			Text:      text,
		},
	})
	return h.bot.take()
}

func (h *harness) sendMessage(msg *tgbotapi.Message) []op {
	h.t.Helper()
	if msg.Chat == nil {
		msg.Chat = &tgbotapi.Chat{ID: msg.From.ID}
	}
	h.d.Handle(context.Background(), tgbotapi.Update{UpdateID: h.nextUpdateID(), Message: msg})
	return h.bot.take()
}

// press delivers a button press on message menuID.
func (h *harness) press(user int64, data string, menuID int) []op {
	h.t.Helper()
	id := h.nextUpdateID()
	h.d.Handle(context.Background(), tgbotapi.Update{
		UpdateID: id,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      fmt.Sprintf("cb-%d", id),
			From:    &tgbotapi.User{ID: user, LanguageCode: "en"},
			Message: &tgbotapi.Message{MessageID: menuID, Chat: &tgbotapi.Chat{ID: user}},
			Data:    data,
		},
	})
	return h.bot.take()
}

func (h *harness) user(id int64) *domain.User {
	h.t.Helper()
	u, err := repo.FindUser(context.Background(), h.db, id)
	if err != nil {
		h.t.Fatalf("find user %d: %v", id, err)
	}
	return u
}

// onboard creates user id with a confirmed locale and an idle state.
func (h *harness) onboard(id int64, locale string) {
	h.t.Helper()
	ctx := context.Background()
	if _, _, err := repo.EnsureUser(ctx, h.db, id, nil); err != nil {
		h.t.Fatal(err)
	}
	if err := repo.UpdateLocale(ctx, h.db, id, &locale); err != nil {
		h.t.Fatal(err)
	}
	if err := repo.UpdateConversationState(ctx, h.db, id, domain.StateIdle); err != nil {
		h.t.Fatal(err)
	}
}

func (h *harness) setMode(id int64, m domain.Mode) {
	h.t.Helper()
	if err := repo.UpdateMode(context.Background(), h.db, id, &m); err != nil {
		h.t.Fatal(err)
	}
}

func texts(ops []op) []string {
	var out []string
	for _, o := range ops {
		if o.Method == "sendMessage" {
			out = append(out, o.Text)
		}
	}
	return out
}

func methods(ops []op) []string {
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = o.Method
	}
	return out
}

func lastText(t *testing.T, ops []op) string {
	t.Helper()
	ts := texts(ops)
	if len(ts) == 0 {
		t.Fatalf("no text sent; ops=%v", methods(ops))
	}
	return ts[len(ts)-1]
}
