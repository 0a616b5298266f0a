package domain

import "time"

// TicketStatus enumerates lifecycle states for specialist requests.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Ticket is the persisted record of a completed specialist request.
// The form payload (Name, Contact, Issue) is immutable after creation;
// status and assignment change only through the operator workflow.
type Ticket struct {
	ID         string
	UserID     string
	Name       string
	Contact    string
	Issue      string
	Status     TicketStatus
	AssigneeID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ClosedAt   *time.Time
}
