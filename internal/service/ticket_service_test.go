package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/repository"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

func seedTicket(t *testing.T, repo repository.TicketRepository, id string, status domain.TicketStatus) {
	t.Helper()
	ticket := &domain.Ticket{ID: id, UserID: "1", Name: "Alice", Contact: "a@example.com", Issue: "help", Status: status}
	if err := repo.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.EventTicketStatusChanged, func(ctx context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := NewTicketService(repo, dispatcher)
	seedTicket(t, repo, "t1", domain.TicketStatusOpen)
	ctx := context.Background()

	ticket, err := svc.UpdateStatus(ctx, "t1", domain.TicketStatusInProgress, "picked up")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s", ticket.Status)
	}

	ticket, err = svc.UpdateStatus(ctx, "t1", domain.TicketStatusClosed, "resolved")
	if err != nil {
		t.Fatalf("UpdateStatus close: %v", err)
	}
	if ticket.ClosedAt == nil {
		t.Error("ClosedAt not set on close")
	}
	if len(published) != 2 {
		t.Errorf("status events published = %d, want 2", len(published))
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	svc := NewTicketService(repo, nil)
	seedTicket(t, repo, "t1", domain.TicketStatusClosed)

	_, err := svc.UpdateStatus(context.Background(), "t1", domain.TicketStatusOpen, "")
	if err == nil {
		t.Fatal("reopening a closed ticket was allowed")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Errorf("error = %v, want CONFLICT", err)
	}
}

func TestAssignMovesTicketInProgress(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	dispatcher := events.NewInMemoryDispatcher()

	var assigned []events.Event
	dispatcher.Subscribe(events.EventTicketAssigned, func(ctx context.Context, e events.Event) error {
		assigned = append(assigned, e)
		return nil
	})

	svc := NewTicketService(repo, dispatcher)
	seedTicket(t, repo, "t1", domain.TicketStatusOpen)

	ticket, err := svc.Assign(context.Background(), "t1", "op-1")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", ticket.Status)
	}
	if ticket.AssigneeID == nil || *ticket.AssigneeID != "op-1" {
		t.Errorf("assignee = %v", ticket.AssigneeID)
	}
	if len(assigned) != 1 {
		t.Errorf("assigned events = %d, want 1", len(assigned))
	}
}

func TestAssignRejectsClosedTicket(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	svc := NewTicketService(repo, nil)
	seedTicket(t, repo, "t1", domain.TicketStatusClosed)

	if _, err := svc.Assign(context.Background(), "t1", "op-1"); err == nil {
		t.Error("assigning a closed ticket was allowed")
	}
}
