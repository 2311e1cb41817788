package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"nutriplan/internal/notification"
)

type fakeTelegram struct {
	mu       sync.Mutex
	messages []map[string]string
	fail     bool
}

func (f *fakeTelegram) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Nutri","username":"nutriplan_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("Failed to parse form: %v", err)
			}
			f.mu.Lock()
			f.messages = append(f.messages, map[string]string{
				"chat_id": r.FormValue("chat_id"),
				"text":    r.FormValue("text"),
			})
			fail := f.fail
			f.mu.Unlock()
			if fail {
				w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			t.Errorf("Unexpected request: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}
}

func newTestPusher(t *testing.T, f *fakeTelegram) *Pusher {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)

	p, err := newPusher("123:abc", server.URL+"/bot%s/%s", 42, server.Client())
	if err != nil {
		t.Fatalf("newPusher failed: %v", err)
	}
	return p
}

func TestPusher_Push(t *testing.T) {
	f := &fakeTelegram{}
	p := newTestPusher(t, f)

	if p.BotName() != "nutriplan_bot" {
		t.Errorf("Expected bot name nutriplan_bot, got %q", p.BotName())
	}

	n := notification.PlanNoRecipes("n1", "Ana")
	if err := p.Push(context.Background(), n); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if len(f.messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(f.messages))
	}
	got := f.messages[0]
	if got["chat_id"] != "42" {
		t.Errorf("Expected chat 42, got %q", got["chat_id"])
	}
	if !strings.Contains(got["text"], "Meal Plan Generation Failed") || !strings.Contains(got["text"], "No suitable recipes found") {
		t.Errorf("Unexpected text: %q", got["text"])
	}
}

func TestPusher_PushError(t *testing.T) {
	f := &fakeTelegram{fail: true}
	p := newTestPusher(t, f)

	err := p.Push(context.Background(), notification.PlanFailed("n1", "Sam", errors.New("boom")))
	if err == nil {
		t.Fatal("Expected error from telegram")
	}
}

func TestNewPusher_RequiresChat(t *testing.T) {
	if _, err := newPusher("123:abc", "http://127.0.0.1:0/bot%s/%s", 0, http.DefaultClient); err == nil {
		t.Error("Expected error without chat id")
	}
}
