package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/auth"
	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
	apperrors "github.com/helpdeskpro/helpdesk-service/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle: creation, reads, updates,
// deletion and the comment thread. Every mutation is gated by the
// authorization policy before it touches the store.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
}

// TicketPatch carries a partial update. Empty strings mean "leave the
// field unchanged", never "clear it".
type TicketPatch struct {
	Title           string
	Description     string
	Status          domain.TicketStatus
	Priority        domain.TicketPriority
	Category        string
	AssignedAgentID string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Status       domain.TicketStatus
	Priority     domain.TicketPriority
	AssignedToMe bool
}

// CreateTicket opens a new ticket owned by the acting user. The client
// name and email are snapshotted at creation time.
func (s *TicketService) CreateTicket(ctx context.Context, actor auth.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if decision := auth.Authorize(actor, auth.TicketRef{}, auth.ActionCreate); !decision.Allowed {
		return nil, denialError(decision)
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	category := strings.TrimSpace(input.Category)
	if title == "" || description == "" || input.Priority == "" || category == "" {
		return nil, apperrors.NewValidationError("title, description, priority, category required", nil)
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", nil)
	}

	client, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewDependencyFailure(err)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Category:    category,
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewDependencyFailure(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		TicketCreated: &events.TicketCreatedPayload{
			Title:       ticket.Title,
			ClientName:  ticket.ClientName,
			ClientEmail: ticket.ClientEmail,
		},
	})
	return ticket, nil
}

// GetTicket returns a ticket with its comment thread, ordered oldest
// first.
func (s *TicketService) GetTicket(ctx context.Context, actor auth.Actor, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if decision := auth.Authorize(actor, ticketRef(ticket), auth.ActionView); !decision.Allowed {
		return nil, nil, denialError(decision)
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.NewDependencyFailure(err)
	}
	return ticket, comments, nil
}

// UpdateTicket applies a partial update. Clients may touch only title,
// description and priority on their own tickets; any status or
// assignment they send is silently ignored. Agents and admins may set
// every field, including arbitrary status jumps.
func (s *TicketService) UpdateTicket(ctx context.Context, actor auth.Actor, ticketID string, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	action := auth.UpdateActionFor(actor.Role)
	if decision := auth.Authorize(actor, ticketRef(ticket), action); !decision.Allowed {
		return nil, denialError(decision)
	}

	if patch.Status != "" && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", nil)
	}
	if patch.Priority != "" && !patch.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", nil)
	}

	previousStatus := ticket.Status

	if patch.Title != "" {
		ticket.Title = strings.TrimSpace(patch.Title)
	}
	if patch.Description != "" {
		ticket.Description = strings.TrimSpace(patch.Description)
	}
	if patch.Priority != "" {
		ticket.Priority = patch.Priority
	}

	if action == auth.ActionUpdateFull {
		if patch.Category != "" {
			ticket.Category = strings.TrimSpace(patch.Category)
		}
		if patch.Status != "" {
			ticket.Status = patch.Status
			// closedAt marks the first closure only; reopening leaves
			// it untouched and re-closing does not move it.
			if patch.Status == domain.TicketStatusClosed && previousStatus != domain.TicketStatusClosed {
				now := time.Now()
				ticket.ClosedAt = &now
			}
		}
		if patch.AssignedAgentID != "" {
			s.applyReassignment(ctx, ticket, patch.AssignedAgentID)
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.NewDependencyFailure(err)
	}

	if previousStatus != domain.TicketStatusClosed && ticket.Status == domain.TicketStatusClosed {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketClosed,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			TicketClosed: &events.TicketClosedPayload{
				Title:       ticket.Title,
				ClientName:  ticket.ClientName,
				ClientEmail: ticket.ClientEmail,
			},
		})
	}
	return ticket, nil
}

// applyReassignment resolves the candidate and snapshots their name.
// An id that does not resolve to an agent is silently ignored.
func (s *TicketService) applyReassignment(ctx context.Context, ticket *domain.Ticket, agentID string) {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil || agent.Role != domain.RoleAgent {
		return
	}
	ticket.AssignedAgentID = &agent.ID
	ticket.AssignedAgentName = &agent.Name
}

// DeleteTicket removes a ticket and its whole comment thread.
func (s *TicketService) DeleteTicket(ctx context.Context, actor auth.Actor, ticketID string) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if decision := auth.Authorize(actor, ticketRef(ticket), auth.ActionDelete); !decision.Allowed {
		return denialError(decision)
	}

	if err := s.comments.DeleteByTicket(ctx, ticket.ID); err != nil {
		return apperrors.NewDependencyFailure(err)
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return apperrors.NewDependencyFailure(err)
	}
	return nil
}

// ListForActor returns tickets visible to the actor, newest first.
// Clients are always scoped to their own tickets no matter what
// filters they send.
func (s *TicketService) ListForActor(ctx context.Context, actor auth.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor.UserID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	repoFilter := repository.TicketFilter{}
	if filter.Status != "" {
		repoFilter.Statuses = []domain.TicketStatus{filter.Status}
	}
	if filter.Priority != "" {
		repoFilter.Priorities = []domain.TicketPriority{filter.Priority}
	}

	switch actor.Role {
	case domain.RoleClient:
		clientID := actor.UserID
		repoFilter.ClientID = &clientID
	case domain.RoleAgent:
		if filter.AssignedToMe {
			agentID := actor.UserID
			repoFilter.AssignedAgentID = &agentID
		}
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewDependencyFailure(err)
	}
	return tickets, nil
}

// ListAgents returns the agent directory. Clients are denied.
func (s *TicketService) ListAgents(ctx context.Context, actor auth.Actor) ([]domain.User, error) {
	if decision := auth.CanListAgents(actor); !decision.Allowed {
		return nil, denialError(decision)
	}
	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, apperrors.NewDependencyFailure(err)
	}
	return agents, nil
}

// AddComment appends to the ticket thread, snapshots the author and
// bumps the ticket's lastResponseAt. Staff comments notify the client.
func (s *TicketService) AddComment(ctx context.Context, actor auth.Actor, ticketID, content string) (*domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if decision := auth.Authorize(actor, ticketRef(ticket), auth.ActionComment); !decision.Allowed {
		return nil, denialError(decision)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content required", nil)
	}

	author, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewDependencyFailure(err)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		UserID:   author.ID,
		UserName: author.Name,
		UserRole: author.Role,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewDependencyFailure(err)
	}

	ticket.LastResponseAt = &comment.CreatedAt
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewDependencyFailure(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		CommentAdded: &events.CommentAddedPayload{
			Title:       ticket.Title,
			ClientName:  ticket.ClientName,
			ClientEmail: ticket.ClientEmail,
			AuthorName:  author.Name,
			AuthorRole:  author.Role,
			Content:     comment.Content,
		},
	})
	return comment, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	// ids are uuids; anything else can never match a row and would only
	// trip a type error in postgres
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.NewDependencyFailure(err)
	}
	return ticket, nil
}

// publishEvent hands the event to the dispatcher. Dispatch failures are
// logged and swallowed; notifications never fail the operation that
// triggered them.
func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func ticketRef(ticket *domain.Ticket) auth.TicketRef {
	return auth.TicketRef{
		ClientID:        ticket.ClientID,
		AssignedAgentID: ticket.AssignedAgentID,
		Status:          ticket.Status,
	}
}

func eventActor(actor auth.Actor) events.Actor {
	return events.Actor{UserID: actor.UserID, Role: actor.Role}
}

func denialError(decision auth.Decision) error {
	if decision.Reason == auth.DenyNotAuthenticated {
		return apperrors.NewUnauthorized("authentication required")
	}
	return apperrors.NewForbidden("insufficient permissions")
}
