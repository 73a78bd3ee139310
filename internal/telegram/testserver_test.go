package telegram

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/chatbotchef/chatbotchef/internal/config"
)

const testToken = "123456:SECRET-TOKEN"

type apiCall struct {
	Method string
	Form   url.Values
}

// fakeBotAPI records form-encoded Bot API calls and answers from a script.
type fakeBotAPI struct {
	mu      sync.Mutex
	calls   []apiCall
	replies map[string]string // method -> JSON response
	srv     *httptest.Server
}

func newFakeBotAPI(t *testing.T) *fakeBotAPI {
	t.Helper()
	f := &fakeBotAPI{replies: map[string]string{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := "/bot" + testToken + "/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		method := strings.TrimPrefix(r.URL.Path, prefix)
		_ = r.ParseForm()
		f.mu.Lock()
		f.calls = append(f.calls, apiCall{Method: method, Form: r.PostForm})
		body, ok := f.replies[method]
		f.mu.Unlock()
		if !ok {
			body = `{"ok":true,"result":true}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBotAPI) reply(method, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method] = body
}

func (f *fakeBotAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeBotAPI) client(mode config.ParseMode) *Client {
	return New(config.TelegramConfig{
		BotToken:    testToken,
		APIEndpoint: f.srv.URL + "/bot%s/%s",
		ParseMode:   mode,
	}, f.srv.Client())
}

const sentMessage = `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":5,"type":"private"}}}`
