package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/email"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
)

// NotificationService turns domain events into outbound emails. Send
// failures are logged and never propagated to the triggering request.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     email.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender email.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.HandleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.HandleTicketClosed)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.HandleCommentAdded)
}

// HandleTicketCreated confirms creation to the owning client.
func (n *NotificationService) HandleTicketCreated(ctx context.Context, event events.Event) error {
	payload := event.TicketCreated
	if payload == nil {
		return nil
	}
	n.send(payload.ClientEmail, "Ticket Created - HelpDeskPro",
		email.TicketCreatedBody(payload.ClientName, event.TicketID, payload.Title))
	return nil
}

// HandleTicketClosed tells the client their ticket was closed.
func (n *NotificationService) HandleTicketClosed(ctx context.Context, event events.Event) error {
	payload := event.TicketClosed
	if payload == nil {
		return nil
	}
	n.send(payload.ClientEmail, "Ticket Closed - HelpDeskPro",
		email.TicketClosedBody(payload.ClientName, event.TicketID, payload.Title))
	return nil
}

// HandleCommentAdded notifies the client about staff responses. Client
// comments produce no email.
func (n *NotificationService) HandleCommentAdded(ctx context.Context, event events.Event) error {
	payload := event.CommentAdded
	if payload == nil || !payload.AuthorRole.IsStaff() {
		return nil
	}
	n.send(payload.ClientEmail, "New Response on Your Ticket - HelpDeskPro",
		email.TicketResponseBody(payload.ClientName, event.TicketID, payload.Title, payload.AuthorName, payload.Content))
	return nil
}

func (n *NotificationService) send(to, subject, body string) {
	if err := n.sender.Send(to, subject, body); err != nil {
		n.logger.Warn("notification email failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	n.logger.Info("notification email sent",
		zap.String("to", to),
		zap.String("subject", subject))
}
