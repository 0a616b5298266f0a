package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/llm"
	"github.com/spec-kit/support-bot/internal/repository"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	getErr   error
	saveErr  error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessionRepo) Get(ctx context.Context, userID string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[userID]
	if !ok {
		return nil, nil
	}
	clone := *s
	clone.Context = s.Context.Clone()
	return &clone, nil
}

func (f *fakeSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	clone := *session
	clone.Context = session.Context.Clone()
	f.sessions[session.UserID] = &clone
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	return nil
}

func (f *fakeSessionRepo) state(userID string) domain.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[userID]; ok {
		return s.State
	}
	return ""
}

type fakeTicketRepo struct {
	mu        sync.Mutex
	created   []domain.Ticket
	createErr error
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *ticket)
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error { return nil }
func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeTicketRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	return nil, nil
}
func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeAIClient struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]llm.Message
}

func (f *fakeAIClient) Generate(ctx context.Context, messages []llm.Message) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	reply := "I hear you."
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return llm.Response{Content: reply, Model: "test-model"}, nil
}

func newTestService(sessions *fakeSessionRepo, tickets *fakeTicketRepo, ai llm.Client) *Service {
	return NewService(Dependencies{
		SessionRepo: sessions,
		TicketRepo:  tickets,
		AIClient:    ai,
		Logger:      zap.NewNop(),
	}, config.AIConfig{MaxReplyLen: 1200})
}

func TestFullSpecialistScenario(t *testing.T) {
	sessions := newFakeSessionRepo()
	tickets := &fakeTicketRepo{}
	svc := newTestService(sessions, tickets, &fakeAIClient{})
	ctx := context.Background()
	const user = "42"

	steps := []struct {
		send      string
		wantState domain.State
		wantIn    string
	}{
		{"/start", domain.StateMainMenu, "Main menu"},
		{"1", domain.StateSpecialistName, "name"},
		{"Alice", domain.StateSpecialistContact, "reach you"},
		{"   ", domain.StateSpecialistContact, emptyFieldText},
		{"alice@example.com", domain.StateSpecialistIssue, "describe"},
		{"feeling anxious lately", domain.StateSpecialistConfirm, "Alice"},
		{"yes", domain.StateMainMenu, ticketCreatedText},
	}

	for i, step := range steps {
		reply, err := svc.ProcessMessage(ctx, user, step.send)
		if err != nil {
			t.Fatalf("step %d (%q): unexpected error %v", i, step.send, err)
		}
		if !strings.Contains(reply, step.wantIn) {
			t.Fatalf("step %d (%q): reply %q missing %q", i, step.send, reply, step.wantIn)
		}
		if got := sessions.state(user); got != step.wantState {
			t.Fatalf("step %d (%q): state = %s, want %s", i, step.send, got, step.wantState)
		}
	}

	if tickets.count() != 1 {
		t.Fatalf("tickets created = %d, want 1", tickets.count())
	}
	tickets.mu.Lock()
	ticket := tickets.created[0]
	tickets.mu.Unlock()
	if ticket.UserID != user || ticket.Name != "Alice" ||
		ticket.Contact != "alice@example.com" || ticket.Issue != "feeling anxious lately" {
		t.Errorf("ticket fields wrong: %+v", ticket)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("ticket status = %s, want OPEN", ticket.Status)
	}
}

func TestDiscardedFormCreatesNoTicket(t *testing.T) {
	sessions := newFakeSessionRepo()
	tickets := &fakeTicketRepo{}
	svc := newTestService(sessions, tickets, &fakeAIClient{})
	ctx := context.Background()

	for _, msg := range []string{"/start", "1", "Alice", "alice@example.com", "help me", "no"} {
		if _, err := svc.ProcessMessage(ctx, "7", msg); err != nil {
			t.Fatalf("ProcessMessage(%q): %v", msg, err)
		}
	}
	if tickets.count() != 0 {
		t.Errorf("tickets created = %d, want 0", tickets.count())
	}
}

func TestAbandonedFormCreatesNoTicket(t *testing.T) {
	sessions := newFakeSessionRepo()
	tickets := &fakeTicketRepo{}
	svc := newTestService(sessions, tickets, &fakeAIClient{})
	ctx := context.Background()

	for _, msg := range []string{"/start", "1", "Alice", "/menu"} {
		if _, err := svc.ProcessMessage(ctx, "7", msg); err != nil {
			t.Fatalf("ProcessMessage(%q): %v", msg, err)
		}
	}
	if tickets.count() != 0 {
		t.Errorf("tickets created = %d, want 0", tickets.count())
	}
	if got := sessions.state("7"); got != domain.StateMainMenu {
		t.Errorf("state = %s, want MAIN_MENU", got)
	}
}

func TestTicketStoreFailureKeepsConfirmState(t *testing.T) {
	sessions := newFakeSessionRepo()
	tickets := &fakeTicketRepo{createErr: errors.New("db down")}
	svc := newTestService(sessions, tickets, &fakeAIClient{})
	ctx := context.Background()

	for _, msg := range []string{"/start", "1", "Alice", "alice@example.com", "help me"} {
		if _, err := svc.ProcessMessage(ctx, "9", msg); err != nil {
			t.Fatalf("ProcessMessage(%q): %v", msg, err)
		}
	}

	_, err := svc.ProcessMessage(ctx, "9", "yes")
	if err == nil {
		t.Fatal("expected an error when the ticket store is down")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("error = %v, want SERVICE_UNAVAILABLE", err)
	}
	// the session was not saved, so the user can confirm again
	if got := sessions.state("9"); got != domain.StateSpecialistConfirm {
		t.Errorf("state = %s, want SPECIALIST_FORM_CONFIRM", got)
	}

	tickets.createErr = nil
	reply, err := svc.ProcessMessage(ctx, "9", "yes")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !strings.Contains(reply, ticketCreatedText) {
		t.Errorf("retry reply = %q", reply)
	}
	if tickets.count() != 1 {
		t.Errorf("tickets created = %d, want 1", tickets.count())
	}
}

func TestSessionStoreFailureReturnsUnavailable(t *testing.T) {
	sessions := newFakeSessionRepo()
	sessions.getErr = errors.New("redis down")
	svc := newTestService(sessions, &fakeTicketRepo{}, &fakeAIClient{})

	_, err := svc.ProcessMessage(context.Background(), "1", "/start")
	if err == nil {
		t.Fatal("expected an error when the session store is down")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("error = %v, want SERVICE_UNAVAILABLE", err)
	}
}

func TestAIConsultation(t *testing.T) {
	sessions := newFakeSessionRepo()
	ai := &fakeAIClient{replies: []string{"Take a deep breath."}}
	svc := newTestService(sessions, &fakeTicketRepo{}, ai)
	ctx := context.Background()

	for _, msg := range []string{"/start", "2"} {
		if _, err := svc.ProcessMessage(ctx, "5", msg); err != nil {
			t.Fatalf("ProcessMessage(%q): %v", msg, err)
		}
	}

	reply, err := svc.ProcessMessage(ctx, "5", "I feel overwhelmed")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if reply != "Take a deep breath." {
		t.Errorf("reply = %q", reply)
	}

	ai.mu.Lock()
	call := ai.calls[0]
	ai.mu.Unlock()
	if call[0].Role != "system" {
		t.Errorf("first message role = %q, want system", call[0].Role)
	}
	if got := call[len(call)-1]; got.Role != domain.RoleUser || got.Content != "I feel overwhelmed" {
		t.Errorf("last message = %+v, want the new user text", got)
	}

	sessions.mu.Lock()
	history := sessions.sessions["5"].Context.History
	sessions.mu.Unlock()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want user + assistant", len(history))
	}
	if history[1].Role != domain.RoleAssistant || history[1].Text != "Take a deep breath." {
		t.Errorf("assistant turn = %+v", history[1])
	}
}

func TestAIFailureFallsBackAndStaysInChat(t *testing.T) {
	sessions := newFakeSessionRepo()
	ai := &fakeAIClient{err: errors.New("upstream 500")}
	svc := newTestService(sessions, &fakeTicketRepo{}, ai)
	ctx := context.Background()

	for _, msg := range []string{"/start", "2"} {
		if _, err := svc.ProcessMessage(ctx, "5", msg); err != nil {
			t.Fatalf("ProcessMessage(%q): %v", msg, err)
		}
	}

	reply, err := svc.ProcessMessage(ctx, "5", "hello?")
	if err != nil {
		t.Fatalf("client failure must not surface as an error: %v", err)
	}
	if reply != aiUnavailableText {
		t.Errorf("reply = %q, want fallback", reply)
	}
	if got := sessions.state("5"); got != domain.StateAIChat {
		t.Errorf("state = %s, want AI_CHAT", got)
	}
}

func TestAIHistoryStaysBounded(t *testing.T) {
	sessions := newFakeSessionRepo()
	svc := newTestService(sessions, &fakeTicketRepo{}, &fakeAIClient{})
	ctx := context.Background()

	for _, msg := range []string{"/start", "2"} {
		if _, err := svc.ProcessMessage(ctx, "5", msg); err != nil {
			t.Fatalf("ProcessMessage(%q): %v", msg, err)
		}
	}
	for i := 0; i < domain.MaxHistoryTurns; i++ {
		if _, err := svc.ProcessMessage(ctx, "5", "message"); err != nil {
			t.Fatalf("ProcessMessage: %v", err)
		}
	}

	sessions.mu.Lock()
	history := sessions.sessions["5"].Context.History
	sessions.mu.Unlock()
	if len(history) != domain.MaxHistoryTurns {
		t.Errorf("history length = %d, want %d", len(history), domain.MaxHistoryTurns)
	}
	// the newest exchange survives eviction
	if history[len(history)-1].Role != domain.RoleAssistant {
		t.Errorf("last turn role = %q, want assistant", history[len(history)-1].Role)
	}
}

func TestSameUserMessagesAreSerialized(t *testing.T) {
	sessions := newFakeSessionRepo()
	tickets := &fakeTicketRepo{}
	svc := newTestService(sessions, tickets, &fakeAIClient{})
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.ProcessMessage(ctx, "race", "/start"); err != nil {
				t.Errorf("ProcessMessage: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := sessions.state("race"); got != domain.StateMainMenu {
		t.Errorf("state = %s, want MAIN_MENU", got)
	}
}
