package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/events"
)

// Notifier delivers a plain-text notification to the operator channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NotificationService forwards domain events to the operator channel.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	notifier   Notifier
}

// NewNotificationService creates the service. A nil notifier means events
// are only logged.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, notifier Notifier) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		notifier:   notifier,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.send(ctx, fmt.Sprintf("New specialist request %s", event.TicketID))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		n.send(ctx, fmt.Sprintf("Ticket %s: %s -> %s", event.TicketID, payload.OldStatus, payload.NewStatus))
	}
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.TicketAssignedPayload); ok {
		n.send(ctx, fmt.Sprintf("Ticket %s assigned to %s", event.TicketID, payload.AssigneeID))
	}
	return nil
}

func (n *NotificationService) send(ctx context.Context, text string) {
	if n.notifier == nil {
		return
	}
	if err := n.notifier.Notify(ctx, text); err != nil {
		n.logger.Warn("operator notification failed", zap.Error(err))
	}
}
