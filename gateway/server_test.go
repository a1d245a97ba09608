package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wayfarerlabs/tripmind/agent/contract"
	"github.com/wayfarerlabs/tripmind/analytics"
)

type fakeChatService struct {
	reply   string
	err     error
	cleared []string
	history []contract.Message

	lastUser    string
	lastMessage string
}

func (f *fakeChatService) Chat(_ context.Context, userID, message string) (string, error) {
	f.lastUser, f.lastMessage = userID, message
	return f.reply, f.err
}

func (f *fakeChatService) Clear(userID string) {
	f.cleared = append(f.cleared, userID)
}

func (f *fakeChatService) History(string) []contract.Message {
	return f.history
}

type fakeStats struct {
	stats map[string]analytics.Stats
	err   error
}

func (f *fakeStats) AllStats(context.Context) (map[string]analytics.Stats, error) {
	return f.stats, f.err
}

func newTestServer(chat *fakeChatService, stats *fakeStats) *Server {
	if stats == nil {
		stats = &fakeStats{stats: map[string]analytics.Stats{}}
	}
	return NewServer(Config{Addr: ":0"}, chat, stats)
}

func TestHandleChat(t *testing.T) {
	t.Parallel()

	chat := &fakeChatService{reply: "hello there"}
	srv := newTestServer(chat, nil)

	body := strings.NewReader(`{"user_id":"alice!","message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Response != "hello there" || resp.UserID != "alice" {
		t.Fatalf("response = %+v", resp)
	}
	if chat.lastUser != "alice" {
		t.Fatalf("user id passed through unsanitized: %q", chat.lastUser)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestHandleChatErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"invalid json", `{`, nil, http.StatusBadRequest},
		{"empty user id", `{"user_id":"!!!","message":"hi"}`, nil, http.StatusBadRequest},
		{"upstream failure", `{"user_id":"alice","message":"hi"}`, fmt.Errorf("%w: model down", contract.ErrUpstream), http.StatusBadGateway},
		{"lock timeout", `{"user_id":"alice","message":"hi"}`, fmt.Errorf("%w: busy", contract.ErrLockTimeout), http.StatusServiceUnavailable},
		{"validation", `{"user_id":"alice","message":"hi"}`, fmt.Errorf("%w: empty", contract.ErrValidation), http.StatusBadRequest},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(&fakeChatService{err: tc.err}, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestHandleClear(t *testing.T) {
	t.Parallel()

	chat := &fakeChatService{}
	srv := newTestServer(chat, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/clear", strings.NewReader(`{"user_id":"alice"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(chat.cleared) != 1 || chat.cleared[0] != "alice" {
		t.Fatalf("cleared = %v", chat.cleared)
	}
}

func TestHandleHistory(t *testing.T) {
	t.Parallel()

	chat := &fakeChatService{history: []contract.Message{
		{Role: contract.RoleUser, Content: "hi"},
		{Role: contract.RoleAssistant, Content: "hello"},
	}}
	srv := newTestServer(chat, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history/alice", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		UserID   string             `json:"user_id"`
		Count    int                `json:"count"`
		Messages []contract.Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 || len(resp.Messages) != 2 || resp.Messages[1].Content != "hello" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestHandleHistoryEmptyIsNotNull(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeChatService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history/ghost", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), `"messages":null`) {
		t.Fatalf("history serialized as null: %s", rec.Body)
	}
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	stats := &fakeStats{stats: map[string]analytics.Stats{
		"store_memory": {Calls: 3, TokensIn: 120, TokensOut: 45},
	}}
	srv := newTestServer(&fakeChatService{}, stats)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Tools map[string]analytics.Stats `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got := resp.Tools["store_memory"]; got.Calls != 3 || got.TokensIn != 120 {
		t.Fatalf("stats = %+v", resp.Tools)
	}
}

func TestServesEmbeddedUI(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeChatService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "TripMind") {
		t.Fatalf("unexpected index page: %.100s", rec.Body)
	}
}
