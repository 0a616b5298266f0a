package dto

import "time"

// LoginRequest carries operator credentials.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse returns the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TicketSummary is the operator-facing ticket view.
type TicketSummary struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Contact    string     `json:"contact"`
	Issue      string     `json:"issue"`
	Status     string     `json:"status"`
	AssigneeID *string    `json:"assignee_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// UpdateStatusRequest moves a ticket along its lifecycle.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// AssignRequest hands a ticket to an operator.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}
