package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
)

type mockTicketRepository struct {
	CreateFunc               func(ctx context.Context, ticket *domain.Ticket) error
	UpdateFunc               func(ctx context.Context, ticket *domain.Ticket) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Ticket, error)
	DeleteFunc               func(ctx context.Context, id string) error
	ListWithFilterFunc       func(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error)
	ListAwaitingResponseFunc func(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	ListClosedBetweenFunc    func(ctx context.Context, from, to time.Time) ([]domain.Ticket, error)
	ListUnassignedOpenFunc   func(ctx context.Context) ([]domain.Ticket, error)
}

func (m *mockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ticket)
	}
	ticket.ID = "ticket-1"
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	return nil
}

func (m *mockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ticket)
	}
	return nil
}

func (m *mockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockTicketRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTicketRepository) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if m.ListWithFilterFunc != nil {
		return m.ListWithFilterFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockTicketRepository) ListAwaitingResponse(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	if m.ListAwaitingResponseFunc != nil {
		return m.ListAwaitingResponseFunc(ctx, cutoff)
	}
	return nil, nil
}

func (m *mockTicketRepository) ListClosedBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	if m.ListClosedBetweenFunc != nil {
		return m.ListClosedBetweenFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockTicketRepository) ListUnassignedOpen(ctx context.Context) ([]domain.Ticket, error) {
	if m.ListUnassignedOpenFunc != nil {
		return m.ListUnassignedOpenFunc(ctx)
	}
	return nil, nil
}

type mockCommentRepository struct {
	CreateFunc         func(ctx context.Context, comment *domain.Comment) error
	ListByTicketFunc   func(ctx context.Context, ticketID string) ([]domain.Comment, error)
	DeleteByTicketFunc func(ctx context.Context, ticketID string) error
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	comment.ID = "comment-1"
	comment.CreatedAt = time.Now()
	return nil
}

func (m *mockCommentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	if m.ListByTicketFunc != nil {
		return m.ListByTicketFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockCommentRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	if m.DeleteByTicketFunc != nil {
		return m.DeleteByTicketFunc(ctx, ticketID)
	}
	return nil
}

type mockUserRepository struct {
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	ListByRoleFunc func(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = "user-1"
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepository) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	if m.ListByRoleFunc != nil {
		return m.ListByRoleFunc(ctx, role)
	}
	return nil, nil
}

// capturingDispatcher records every published event.
type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *capturingDispatcher) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// mockSender records outbound emails and can be told to fail.
type mockSender struct {
	SendFunc func(to, subject, htmlBody string) error
	sent     []sentEmail
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (m *mockSender) Send(to, subject, htmlBody string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(to, subject, htmlBody); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}
