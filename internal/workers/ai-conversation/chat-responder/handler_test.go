// internal/workers/ai-conversation/chat-responder/handler_test.go
package chatresponder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mic-ai-service/internal/common/llm"
	"mic-ai-service/internal/common/session"
	"mic-ai-service/internal/models"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v %v", msg, l.fields, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{t: l.t, fields: merged}
}

// ==========================
// Test Doubles
// ==========================

type streamResult struct {
	answer string
	err    error
}

// queuedLLM returns one queued result per Stream call.
type queuedLLM struct {
	mu       sync.Mutex
	results  []streamResult
	requests []llm.Request
}

func (c *queuedLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	return c.Stream(ctx, req)
}

func (c *queuedLLM) Stream(_ context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.results) == 0 {
		return "", errors.New("no scripted result")
	}
	r := c.results[0]
	c.results = c.results[1:]
	return r.answer, r.err
}

type failingStore struct{}

func (failingStore) GetOrCreate(context.Context, string) (*models.ChatSession, error) {
	return nil, errors.New("store down")
}

func (failingStore) Append(context.Context, string, ...models.Turn) error {
	return errors.New("store down")
}

func (failingStore) Trim(context.Context, string, int) error {
	return errors.New("store down")
}

var fixedNow = time.Date(2025, time.March, 3, 14, 5, 0, 0, time.Local)

func newTestHandler(t *testing.T, client llm.Client, store session.Store) (*Handler, *[]time.Duration) {
	var pauses []time.Duration
	h := NewHandler(LoadConfig(), client, store, NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	h.newID = func() string { return "generated-id" }
	h.sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}
	return h, &pauses
}

func history(t *testing.T, store session.Store, id string) []models.Turn {
	t.Helper()
	s, err := store.GetOrCreate(context.Background(), id)
	require.NoError(t, err)
	return s.History
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_EmptyMessage(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{}
	h, _ := newTestHandler(t, client, store)

	for _, msg := range []string{"", "   ", "\n\t"} {
		out := h.Execute(context.Background(), &Input{Message: msg, SessionID: "s1"})
		assert.Equal(t, EmptyMessageReply, out.Response)
		assert.Equal(t, "s1", out.SessionID)
	}

	out := h.Execute(context.Background(), &Input{Message: ""})
	assert.Equal(t, "", out.SessionID)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, client.requests)
}

func TestHandler_Execute_MintsSessionID(t *testing.T) {
	store := session.NewMemoryStore()
	h, _ := newTestHandler(t, nil, store)

	out := h.Execute(context.Background(), &Input{Message: "hello"})

	assert.Equal(t, "generated-id", out.SessionID)
	assert.Len(t, history(t, store, "generated-id"), 2)
}

func TestHandler_Execute_OffTopicRedirect(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{}
	h, _ := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "Best pizza in Paris", SessionID: "s1"})

	assert.Equal(t, RedirectReply, out.Response)
	assert.Empty(t, client.requests)
	assert.Equal(t, []models.Turn{
		{Role: models.RoleUser, Content: "Best pizza in Paris"},
		{Role: models.RoleAssistant, Content: RedirectReply},
	}, history(t, store, "s1"))
}

func TestHandler_Execute_NoLLMUsesFallback(t *testing.T) {
	store := session.NewMemoryStore()
	h, _ := newTestHandler(t, nil, store)

	out := h.Execute(context.Background(), &Input{Message: "Any upcoming events?", SessionID: "s1"})

	assert.Equal(t, "We host various events including workshops, hackathons, and innovation showcases. [BUTTON:Events Page|/events]", out.Response)
	assert.Len(t, history(t, store, "s1"), 2)
}

func TestHandler_Execute_LLMAnswer(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{results: []streamResult{{answer: "**MiC** runs hackathons. MiC runs hackathons. Join us!</s>"}}}
	h, _ := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "What events does MiC run?", SessionID: "s1"})

	assert.Equal(t, "MiC runs hackathons. Join us!", out.Response)
	assert.Equal(t, []models.Turn{
		{Role: models.RoleUser, Content: "What events does MiC run?"},
		{Role: models.RoleAssistant, Content: "MiC runs hackathons. Join us!"},
	}, history(t, store, "s1"))

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, 512, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 1e-9)
	assert.InDelta(t, 0.8, req.TopP, 1e-9)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, models.RoleSystem, req.Messages[0].Role)
	assert.True(t, strings.HasPrefix(req.Messages[0].Content, "You are MAHE Innovation Centre Assistant, the official AI assistant"))
	assert.Equal(t, llm.Message{Role: models.RoleSystem, Content: "Current date/time: Monday, 03 March 2025 14:05"}, req.Messages[1])
	assert.Equal(t, llm.Message{Role: models.RoleUser, Content: "What events does MiC run?"}, req.Messages[2])
}

func TestHandler_Execute_SendsLastTenTurns(t *testing.T) {
	store := session.NewMemoryStore()
	for i := 0; i < 8; i++ {
		require.NoError(t, store.Append(context.Background(), "s1",
			models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("q%d", i)},
			models.Turn{Role: models.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		))
	}
	client := &queuedLLM{results: []streamResult{{answer: "Workshops are monthly."}}}
	h, _ := newTestHandler(t, client, store)

	h.Execute(context.Background(), &Input{Message: "When is the next workshop?", SessionID: "s1"})

	msgs := client.requests[0].Messages
	require.Len(t, msgs, 13)
	assert.Equal(t, llm.Message{Role: models.RoleUser, Content: "q3"}, msgs[2])
	assert.Equal(t, llm.Message{Role: models.RoleAssistant, Content: "a7"}, msgs[11])
}

func TestHandler_Execute_HistoryCappedAtTwenty(t *testing.T) {
	store := session.NewMemoryStore()
	h, _ := newTestHandler(t, nil, store)

	for i := 0; i < 15; i++ {
		h.Execute(context.Background(), &Input{Message: fmt.Sprintf("hello %d", i), SessionID: "s1"})
	}

	turns := history(t, store, "s1")
	require.Len(t, turns, 20)
	assert.Equal(t, "hello 5", turns[0].Content)
	assert.Equal(t, "hello 14", turns[18].Content)
}

func TestHandler_Execute_CustomAssistantName(t *testing.T) {
	client := &queuedLLM{results: []streamResult{{answer: "I can help with that."}}}
	cfg := LoadConfig()
	cfg.AssistantName = "Nova"
	h := NewHandler(cfg, client, session.NewMemoryStore(), NewTestLogger(t))

	h.Execute(context.Background(), &Input{Message: "help", SessionID: "s1"})

	assert.True(t, strings.HasPrefix(client.requests[0].Messages[0].Content, "You are Nova, the official AI assistant"))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ShortAnswer(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{results: []streamResult{{answer: " *Ok* "}}}
	h, _ := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "hi", SessionID: "s1"})

	assert.Equal(t, ShortAnswerReply, out.Response)
	assert.Empty(t, history(t, store, "s1"))
}

func TestHandler_Execute_MultibyteShortAnswer(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{results: []streamResult{{answer: "你好你好"}}}
	h, _ := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "hi", SessionID: "s1"})

	assert.Equal(t, ShortAnswerReply, out.Response)
	assert.Empty(t, history(t, store, "s1"))
}

func TestHandler_Execute_MultibyteAnswerAtMinimumLength(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{results: []streamResult{{answer: "你好你好你好"}}}
	h, _ := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "hi", SessionID: "s1"})

	assert.Equal(t, "你好你好你好", out.Response)
	assert.Len(t, history(t, store, "s1"), 2)
}

func TestHandler_Execute_RateLimitRetriesOnce(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{results: []streamResult{
		{err: fmt.Errorf("%w: 429 Too Many Requests", llm.ErrRateLimited)},
		{answer: "Our events page lists everything."},
	}}
	h, pauses := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "events?", SessionID: "s1"})

	assert.Equal(t, "Our events page lists everything.", out.Response)
	assert.Equal(t, []time.Duration{5 * time.Second}, *pauses)
	assert.Len(t, client.requests, 2)
	assert.Len(t, history(t, store, "s1"), 2)
}

func TestHandler_Execute_RateLimitTwiceFallsBack(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{results: []streamResult{
		{err: errors.New("Rate limit reached for model")},
		{err: errors.New("status 429")},
	}}
	h, pauses := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "Tell me about funding", SessionID: "s1"})

	assert.Equal(t, FallbackResponse("Tell me about funding"), out.Response)
	assert.Len(t, *pauses, 1)
	assert.Len(t, client.requests, 2)
	assert.Empty(t, history(t, store, "s1"))
}

func TestHandler_Execute_CancelledDuringPause(t *testing.T) {
	client := &queuedLLM{results: []streamResult{{err: llm.ErrRateLimited}}}
	h, _ := newTestHandler(t, client, session.NewMemoryStore())
	h.sleep = sleepContext
	h.config.RateLimitPause = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	out := h.Execute(ctx, &Input{Message: "contact details?", SessionID: "s1"})

	assert.Equal(t, FallbackResponse("contact details?"), out.Response)
	assert.Len(t, client.requests, 1)
}

func TestHandler_Execute_OtherErrorFallsBackWithoutHistory(t *testing.T) {
	store := session.NewMemoryStore()
	client := &queuedLLM{results: []streamResult{{err: llm.ErrLLMCallFailed}}}
	h, pauses := newTestHandler(t, client, store)

	out := h.Execute(context.Background(), &Input{Message: "resources for founders", SessionID: "s1"})

	assert.Equal(t, "We provide numerous resources for innovators and entrepreneurs including toolkits, guides, and mentorship materials. [BUTTON:Resources Page|/resources]", out.Response)
	assert.Empty(t, *pauses)
	assert.Empty(t, history(t, store, "s1"))
}

func TestHandler_Execute_StoreFailureStillReplies(t *testing.T) {
	client := &queuedLLM{results: []streamResult{{answer: "MiC is Manipal's innovation hub."}}}
	h, _ := newTestHandler(t, client, failingStore{})

	out := h.Execute(context.Background(), &Input{Message: "what is mic", SessionID: "s1"})

	assert.Equal(t, "MiC is Manipal's innovation hub.", out.Response)
	require.Len(t, client.requests[0].Messages, 3)
}

func TestHandler_Execute_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewRedisStore(rdb, time.Hour)
	h, _ := newTestHandler(t, nil, store)

	for i := 0; i < 12; i++ {
		h.Execute(context.Background(), &Input{Message: "hey there", SessionID: "r1"})
	}

	assert.Len(t, history(t, store, "r1"), 20)
}

// ==========================
// Helper Tests
// ==========================

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"dedupes sentences", "Great idea. Great idea. This helps users.", "Great idea. This helps users."},
		{"case insensitive", "Hello there. hello there. HELLO THERE", "Hello there"},
		{"strips markers", "**Bold** move</s>", "Bold move"},
		{"strips partial marker", "Done</s", "Done"},
		{"only artefacts", " ** ", ""},
		{"drops empty sentences", "One. . Two", "One. Two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.in))
		})
	}
}

func TestIsWebsiteRelated(t *testing.T) {
	related := []string{"Hello", "What is MiC?", "upcoming WORKSHOPS", "e-cell", "financial aid options", "where are you"}
	for _, q := range related {
		assert.True(t, IsWebsiteRelated(q), q)
	}
	for _, q := range []string{"Best pizza in Paris", "2+2", "recipe for pasta"} {
		assert.False(t, IsWebsiteRelated(q), q)
	}
}

func TestFallbackResponse_Order(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"What is MiC and its events?", fallbackRules[0].reply},
		{"events and resources", fallbackRules[1].reply},
		{"a toolkit please", fallbackRules[2].reply},
		{"how do I get in touch", fallbackRules[3].reply},
		{"who we are", fallbackRules[4].reply},
		{"startup funding", fallbackRules[5].reply},
		{"hey", fallbackRules[6].reply},
		{"explain", RedirectReply},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackResponse(tt.query))
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("")
	assert.True(t, strings.HasPrefix(p, "You are MAHE Innovation Centre Assistant,"))
	assert.Contains(t, p, `politely redirect: "`+RedirectReply+`"`)
	assert.Contains(t, p, "[BUTTON:Home Page|/]")
}
