package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/llm"
	"github.com/spec-kit/support-bot/internal/repository"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// Service orchestrates the conversation: it loads the session, drives the
// state machine, applies effects and persists the result.
type Service struct {
	sessions   repository.SessionRepository
	tickets    repository.TicketRepository
	ai         llm.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger

	systemPrompt string
	maxReplyLen  int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Dependencies bundles collaborators for the bot service.
type Dependencies struct {
	SessionRepo repository.SessionRepository
	TicketRepo  repository.TicketRepository
	AIClient    llm.Client
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewService constructs the service.
func NewService(deps Dependencies, aiCfg config.AIConfig) *Service {
	prompt := aiCfg.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	return &Service{
		sessions:     deps.SessionRepo,
		tickets:      deps.TicketRepo,
		ai:           deps.AIClient,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		systemPrompt: prompt,
		maxReplyLen:  aiCfg.MaxReplyLen,
		locks:        make(map[string]*sync.Mutex),
	}
}

// ProcessMessage handles one inbound message and returns the reply text.
// All domain-level problems come back as a normal reply; an error is
// returned only when a backing store is unreachable, in which case the
// transport should deliver its generic unavailable text.
//
// Messages for the same user id are serialized on a keyed lock so a
// read-modify-write of the session can never race; distinct users proceed
// in parallel, including while an AI call is in flight.
func (s *Service) ProcessMessage(ctx context.Context, userID, text string) (string, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		s.logger.Error("load session", zap.String("user_id", userID), zap.Error(err))
		return "", apperrors.NewUnavailable(err)
	}
	if session == nil {
		session = domain.NewSession(userID)
	}

	out := Transition(session.State, session.Context, Classify(text))

	reply := out.Reply
	switch effect := out.Effect.(type) {
	case CreateTicketEffect:
		if err := s.createTicket(ctx, userID, effect); err != nil {
			// session not saved: the user stays in the confirm step and
			// can retry once the store is back
			s.logger.Error("create ticket", zap.String("user_id", userID), zap.Error(err))
			return "", apperrors.NewUnavailable(err)
		}
	case AIQueryEffect:
		reply = s.consult(ctx, &out.Ctx, effect.Text)
	}

	session.State = out.State
	session.Context = out.Ctx
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("save session", zap.String("user_id", userID), zap.Error(err))
		return "", apperrors.NewUnavailable(err)
	}

	return reply, nil
}

func (s *Service) createTicket(ctx context.Context, userID string, form CreateTicketEffect) error {
	ticket := &domain.Ticket{
		ID:      uuid.NewString(),
		UserID:  userID,
		Name:    form.Name,
		Contact: form.Contact,
		Issue:   form.Issue,
		Status:  domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return err
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("user_id", userID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{UserID: userID},
	})
	return nil
}

// consult runs a single AI turn: the history before the new user turn plus
// the new text go to the client, the assistant reply is appended back into
// the context. Client failures collapse to one fallback reply and the
// conversation stays in AI chat.
func (s *Service) consult(ctx context.Context, convo *domain.Context, text string) string {
	msgs := make([]llm.Message, 0, len(convo.History)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: s.systemPrompt})
	// the transition already appended the user turn; send everything
	// before it as history and the new text as the closing user message
	for _, turn := range convo.History[:len(convo.History)-1] {
		msgs = append(msgs, llm.Message{Role: turn.Role, Content: turn.Text})
	}
	msgs = append(msgs, llm.Message{Role: domain.RoleUser, Content: text})

	resp, err := s.ai.Generate(ctx, msgs)
	if err != nil {
		s.logger.Warn("ai consultation failed", zap.Error(err))
		convo.AppendTurn(domain.RoleAssistant, aiUnavailableText)
		return aiUnavailableText
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		content = aiUnavailableText
	}
	if s.maxReplyLen > 0 {
		if runes := []rune(content); len(runes) > s.maxReplyLen {
			content = string(runes[:s.maxReplyLen]) + "…"
		}
	}

	s.logger.Info("ai reply",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens))

	convo.AppendTurn(domain.RoleAssistant, content)
	return content
}

// lockUser serializes processing per user id.
func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
