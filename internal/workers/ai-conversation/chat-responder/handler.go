// internal/workers/ai-conversation/chat-responder/handler.go
package chatresponder

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"mic-ai-service/internal/common/llm"
	"mic-ai-service/internal/common/metrics"
	"mic-ai-service/internal/common/session"
	"mic-ai-service/internal/models"
)

const (
	TaskType = "chat-responder"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	llm    llm.Client
	store  session.Store
	logger Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	newID  func() string
}

// NewHandler builds a responder. client may be nil, in which case every
// relevant message is answered from the keyword fallbacks.
func NewHandler(config *Config, client llm.Client, store session.Store, log Logger) *Handler {
	return &Handler{
		config: config,
		llm:    client,
		store:  store,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		now:   time.Now,
		sleep: sleepContext,
		newID: uuid.NewString,
	}
}

// Execute answers one chat message. It always produces a reply; LLM and
// session store failures degrade to canned responses and log entries.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	if strings.TrimSpace(input.Message) == "" {
		metrics.ChatRepliesTotal.WithLabelValues(ModeEmpty).Inc()
		return &Output{Response: EmptyMessageReply, SessionID: input.SessionID}
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = h.newID()
	}
	log := h.logger.With(map[string]interface{}{"sessionId": sessionID})

	sess, err := h.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		log.Error("failed to load chat session", map[string]interface{}{"error": err.Error()})
	}

	if !IsWebsiteRelated(input.Message) {
		h.record(ctx, log, sessionID, input.Message, RedirectReply)
		return h.reply(ModeRedirect, RedirectReply, sessionID)
	}

	if h.llm == nil {
		resp := FallbackResponse(input.Message)
		h.record(ctx, log, sessionID, input.Message, resp)
		return h.reply(ModeFallback, resp, sessionID)
	}

	req := h.buildRequest(sess, input.Message)

	answer, err := h.llm.Stream(ctx, req)
	if err != nil && llm.IsRateLimit(err) {
		log.Warn("rate limit hit, pausing before retry", map[string]interface{}{
			"pause": h.config.RateLimitPause.String(),
		})
		metrics.ChatRateLimitRetries.Inc()
		if sleepErr := h.sleep(ctx, h.config.RateLimitPause); sleepErr != nil {
			err = sleepErr
		} else {
			answer, err = h.llm.Stream(ctx, req)
		}
		if err != nil && llm.IsRateLimit(err) {
			log.Warn("rate limit persisted after retry, using fallback", nil)
			return h.reply(ModeRateLimitFallback, FallbackResponse(input.Message), sessionID)
		}
	}
	if err != nil {
		log.Error("chat completion failed, using fallback", map[string]interface{}{"error": err.Error()})
		return h.reply(ModeErrorFallback, FallbackResponse(input.Message), sessionID)
	}

	answer = CleanResponse(answer)
	if utf8.RuneCountInString(answer) < minAnswerLength {
		return h.reply(ModeShortAnswer, ShortAnswerReply, sessionID)
	}

	h.record(ctx, log, sessionID, input.Message, answer)
	return h.reply(ModeLLM, answer, sessionID)
}

func (h *Handler) buildRequest(sess *models.ChatSession, message string) llm.Request {
	recent := sess.LastTurns(h.config.ContextTurns)

	messages := make([]llm.Message, 0, len(recent)+3)
	messages = append(messages,
		llm.Message{Role: models.RoleSystem, Content: SystemPrompt(h.config.AssistantName)},
		llm.Message{Role: models.RoleSystem, Content: RealtimeInformation(h.now())},
	)
	for _, turn := range recent {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: models.RoleUser, Content: message})

	return llm.Request{
		Messages:    messages,
		Temperature: h.config.Temperature,
		TopP:        h.config.TopP,
		MaxTokens:   h.config.MaxTokens,
	}
}

// record appends the exchange and trims the history to the configured limit.
func (h *Handler) record(ctx context.Context, log Logger, sessionID, question, answer string) {
	err := h.store.Append(ctx, sessionID,
		models.Turn{Role: models.RoleUser, Content: question},
		models.Turn{Role: models.RoleAssistant, Content: answer},
	)
	if err == nil {
		err = h.store.Trim(ctx, sessionID, h.config.HistoryLimit)
	}
	if err != nil {
		log.Error("failed to record chat turn", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) reply(mode, response, sessionID string) *Output {
	metrics.ChatRepliesTotal.WithLabelValues(mode).Inc()
	return &Output{Response: response, SessionID: sessionID}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

