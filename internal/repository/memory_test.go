package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-bot/internal/domain"
)

func TestMemorySessionRepositoryRoundTrip(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	got, err := repo.Get(ctx, "42")
	if err != nil || got != nil {
		t.Fatalf("Get on empty store = (%v, %v), want (nil, nil)", got, err)
	}

	session := domain.NewSession("42")
	session.State = domain.StateAIChat
	session.Context.AppendTurn(domain.RoleUser, "hello")
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err = repo.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != domain.StateAIChat || len(got.Context.History) != 1 {
		t.Errorf("loaded session = %+v", got)
	}

	// mutating the loaded copy must not leak into the store
	got.Context.AppendTurn(domain.RoleUser, "again")
	reloaded, _ := repo.Get(ctx, "42")
	if len(reloaded.Context.History) != 1 {
		t.Error("store shares context with callers")
	}

	if err := repo.Delete(ctx, "42"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = repo.Get(ctx, "42")
	if err != nil || got != nil {
		t.Errorf("Get after delete = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestMemoryTicketRepositoryNotFound(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("GetByID error = %v, want pgx.ErrNoRows", err)
	}
	if err := repo.Update(ctx, &domain.Ticket{ID: "missing"}); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("Update error = %v, want pgx.ErrNoRows", err)
	}
}

func TestMemoryTicketRepositoryFilter(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	assignee := "op-1"
	tickets := []*domain.Ticket{
		{ID: "a", UserID: "1", Status: domain.TicketStatusOpen},
		{ID: "b", UserID: "1", Status: domain.TicketStatusClosed},
		{ID: "c", UserID: "2", Status: domain.TicketStatusInProgress, AssigneeID: &assignee},
	}
	for _, ticket := range tickets {
		if err := repo.Create(ctx, ticket); err != nil {
			t.Fatalf("Create(%s): %v", ticket.ID, err)
		}
	}

	user := "1"
	got, err := repo.ListWithFilter(ctx, TicketFilter{UserID: &user})
	if err != nil {
		t.Fatalf("ListWithFilter: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("user filter matched %d, want 2", len(got))
	}

	got, err = repo.ListWithFilter(ctx, TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOpen}})
	if err != nil {
		t.Fatalf("ListWithFilter: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("status filter = %+v", got)
	}

	got, err = repo.ListWithFilter(ctx, TicketFilter{AssigneeID: &assignee})
	if err != nil {
		t.Fatalf("ListWithFilter: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("assignee filter = %+v", got)
	}

	got, err = repo.ListWithFilter(ctx, TicketFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListWithFilter: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("pagination returned %d, want 1", len(got))
	}
}
