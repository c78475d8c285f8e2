package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/auth"
	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/events"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
	apperrors "github.com/helpdeskpro/helpdesk-service/pkg/util/errorutil"
)

const testTicketID = "0d4e7a2c-9f13-4c57-a4b2-1f2e3d4c5b6a"

func newTestTicketService(tickets *mockTicketRepository, comments *mockCommentRepository, users *mockUserRepository, dispatcher events.Dispatcher) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		CommentRepo: comments,
		UserRepo:    users,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
	})
}

func clientActor() auth.Actor {
	return auth.Actor{UserID: "client-1", Email: "alice@example.com", Role: domain.RoleClient}
}

func agentActor() auth.Actor {
	return auth.Actor{UserID: "agent-1", Email: "bob@example.com", Role: domain.RoleAgent}
}

func adminActor() auth.Actor {
	return auth.Actor{UserID: "admin-1", Email: "carol@example.com", Role: domain.RoleAdmin}
}

func clientUser() *domain.User {
	return &domain.User{
		ID:    "client-1",
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  domain.RoleClient,
	}
}

func openTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:          testTicketID,
		Title:       "Printer on fire",
		Description: "It is literally on fire",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityHigh,
		Category:    "hardware",
		ClientID:    "client-1",
		ClientName:  "Alice",
		ClientEmail: "alice@example.com",
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	return domainErr.Code
}

func TestCreateTicketDefaults(t *testing.T) {
	users := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return clientUser(), nil
		},
	}
	dispatcher := &capturingDispatcher{}
	svc := newTestTicketService(&mockTicketRepository{}, &mockCommentRepository{}, users, dispatcher)

	ticket, err := svc.CreateTicket(context.Background(), clientActor(), TicketCreateInput{
		Title:       "  Printer on fire  ",
		Description: "It is literally on fire",
		Priority:    domain.TicketPriorityHigh,
		Category:    "hardware",
	})
	require.NoError(t, err)

	assert.Equal(t, "Printer on fire", ticket.Title)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.AssignedAgentID)
	assert.Nil(t, ticket.LastResponseAt)
	assert.Nil(t, ticket.ClosedAt)
	assert.Equal(t, "Alice", ticket.ClientName)
	assert.Equal(t, "alice@example.com", ticket.ClientEmail)

	created := dispatcher.ofType(events.EventTicketCreated)
	require.Len(t, created, 1)
	require.NotNil(t, created[0].TicketCreated)
	assert.Equal(t, "alice@example.com", created[0].TicketCreated.ClientEmail)
	assert.NotEmpty(t, created[0].ID)
	assert.False(t, created[0].Timestamp.IsZero())
}

func TestCreateTicketValidation(t *testing.T) {
	svc := newTestTicketService(&mockTicketRepository{}, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	tests := []struct {
		name  string
		input TicketCreateInput
	}{
		{"missing title", TicketCreateInput{Description: "d", Priority: domain.TicketPriorityLow, Category: "c"}},
		{"missing description", TicketCreateInput{Title: "t", Priority: domain.TicketPriorityLow, Category: "c"}},
		{"missing priority", TicketCreateInput{Title: "t", Description: "d", Category: "c"}},
		{"missing category", TicketCreateInput{Title: "t", Description: "d", Priority: domain.TicketPriorityLow}},
		{"unknown priority", TicketCreateInput{Title: "t", Description: "d", Priority: "apocalyptic", Category: "c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTicket(context.Background(), clientActor(), tc.input)
			assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
		})
	}
}

func TestCreateTicketUnauthenticated(t *testing.T) {
	svc := newTestTicketService(&mockTicketRepository{}, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	_, err := svc.CreateTicket(context.Background(), auth.Actor{}, TicketCreateInput{
		Title: "t", Description: "d", Priority: domain.TicketPriorityLow, Category: "c",
	})
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestGetTicketOwnership(t *testing.T) {
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return openTicket(), nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	_, _, err := svc.GetTicket(context.Background(), clientActor(), testTicketID)
	assert.NoError(t, err)

	stranger := auth.Actor{UserID: "client-2", Role: domain.RoleClient}
	_, _, err = svc.GetTicket(context.Background(), stranger, testTicketID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	_, _, err = svc.GetTicket(context.Background(), agentActor(), testTicketID)
	assert.NoError(t, err)
}

func TestGetTicketNotFoundBeforePolicy(t *testing.T) {
	// A missing ticket is a 404 for everyone, authenticated or not owner.
	svc := newTestTicketService(&mockTicketRepository{}, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	_, _, err := svc.GetTicket(context.Background(), clientActor(), "nope")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestUpdateTicketClientLimitedFields(t *testing.T) {
	stored := openTicket()
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return stored, nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	updated, err := svc.UpdateTicket(context.Background(), clientActor(), testTicketID, TicketPatch{
		Title:    "New title",
		Priority: domain.TicketPriorityUrgent,
		Status:   domain.TicketStatusClosed,
		Category: "sneaky",
	})
	require.NoError(t, err)

	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
	// Status and category changes from a client are dropped, not errored.
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	assert.Equal(t, "hardware", updated.Category)
	assert.Nil(t, updated.ClosedAt)
}

func TestUpdateTicketEmptyStringsLeaveFieldsAlone(t *testing.T) {
	stored := openTicket()
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return stored, nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	updated, err := svc.UpdateTicket(context.Background(), adminActor(), testTicketID, TicketPatch{})
	require.NoError(t, err)

	assert.Equal(t, "Printer on fire", updated.Title)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
}

func TestUpdateTicketInvalidStatus(t *testing.T) {
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return openTicket(), nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	_, err := svc.UpdateTicket(context.Background(), adminActor(), testTicketID, TicketPatch{Status: "archived"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestUpdateTicketCloseSetsClosedAtOnce(t *testing.T) {
	stored := openTicket()
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return stored, nil
		},
	}
	dispatcher := &capturingDispatcher{}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, dispatcher)

	updated, err := svc.UpdateTicket(context.Background(), agentActor(), testTicketID, TicketPatch{Status: domain.TicketStatusClosed})
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedAt)
	firstClosedAt := *updated.ClosedAt

	closed := dispatcher.ofType(events.EventTicketClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, "alice@example.com", closed[0].TicketClosed.ClientEmail)

	// Re-closing an already closed ticket moves neither closedAt nor
	// re-notifies the client.
	updated, err = svc.UpdateTicket(context.Background(), agentActor(), testTicketID, TicketPatch{Status: domain.TicketStatusClosed})
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, firstClosedAt, *updated.ClosedAt)
	assert.Len(t, dispatcher.ofType(events.EventTicketClosed), 1)
}

func TestUpdateTicketReopenKeepsClosedAt(t *testing.T) {
	closedAt := time.Now().Add(-time.Hour)
	stored := openTicket()
	stored.Status = domain.TicketStatusClosed
	stored.ClosedAt = &closedAt

	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return stored, nil
		},
	}
	dispatcher := &capturingDispatcher{}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, dispatcher)

	updated, err := svc.UpdateTicket(context.Background(), agentActor(), testTicketID, TicketPatch{Status: domain.TicketStatusOpen})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, closedAt, *updated.ClosedAt)
	assert.Empty(t, dispatcher.ofType(events.EventTicketClosed))
}

func TestUpdateTicketReassignment(t *testing.T) {
	stored := openTicket()
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return stored, nil
		},
	}
	users := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			switch id {
			case "agent-2":
				return &domain.User{ID: "agent-2", Name: "Dave", Email: "dave@example.com", Role: domain.RoleAgent}, nil
			case "client-1":
				return clientUser(), nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, users, &capturingDispatcher{})

	updated, err := svc.UpdateTicket(context.Background(), adminActor(), testTicketID, TicketPatch{AssignedAgentID: "agent-2"})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedAgentID)
	assert.Equal(t, "agent-2", *updated.AssignedAgentID)
	require.NotNil(t, updated.AssignedAgentName)
	assert.Equal(t, "Dave", *updated.AssignedAgentName)
}

func TestUpdateTicketReassignmentToNonAgentIgnored(t *testing.T) {
	stored := openTicket()
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return stored, nil
		},
	}
	users := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			if id == "client-1" {
				return clientUser(), nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, users, &capturingDispatcher{})

	// Assignment to a client: silently dropped, the rest of the patch
	// still lands.
	updated, err := svc.UpdateTicket(context.Background(), adminActor(), testTicketID, TicketPatch{
		Title:           "Still broken",
		AssignedAgentID: "client-1",
	})
	require.NoError(t, err)
	assert.Nil(t, updated.AssignedAgentID)
	assert.Equal(t, "Still broken", updated.Title)

	// Assignment to an unknown id: same silent drop.
	updated, err = svc.UpdateTicket(context.Background(), adminActor(), testTicketID, TicketPatch{AssignedAgentID: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, updated.AssignedAgentID)
}

func TestDeleteTicketAdminOnlyAndCascade(t *testing.T) {
	var calls []string
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return openTicket(), nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			calls = append(calls, "ticket:"+id)
			return nil
		},
	}
	comments := &mockCommentRepository{
		DeleteByTicketFunc: func(ctx context.Context, ticketID string) error {
			calls = append(calls, "comments:"+ticketID)
			return nil
		},
	}
	svc := newTestTicketService(tickets, comments, &mockUserRepository{}, &capturingDispatcher{})

	err := svc.DeleteTicket(context.Background(), agentActor(), testTicketID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	err = svc.DeleteTicket(context.Background(), clientActor(), testTicketID)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	require.NoError(t, svc.DeleteTicket(context.Background(), adminActor(), testTicketID))
	// Comments go first so a failure never orphans the thread.
	assert.Equal(t, []string{"comments:" + testTicketID, "ticket:" + testTicketID}, calls)
}

func TestListForActorClientAlwaysScoped(t *testing.T) {
	var captured repository.TicketFilter
	tickets := &mockTicketRepository{
		ListWithFilterFunc: func(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	_, err := svc.ListForActor(context.Background(), clientActor(), TicketListFilter{
		Status:       domain.TicketStatusOpen,
		AssignedToMe: true,
	})
	require.NoError(t, err)
	require.NotNil(t, captured.ClientID)
	assert.Equal(t, "client-1", *captured.ClientID)
	assert.Nil(t, captured.AssignedAgentID)
	assert.Equal(t, []domain.TicketStatus{domain.TicketStatusOpen}, captured.Statuses)
}

func TestListForActorAgentScoping(t *testing.T) {
	var captured repository.TicketFilter
	tickets := &mockTicketRepository{
		ListWithFilterFunc: func(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	_, err := svc.ListForActor(context.Background(), agentActor(), TicketListFilter{})
	require.NoError(t, err)
	assert.Nil(t, captured.ClientID)
	assert.Nil(t, captured.AssignedAgentID)

	_, err = svc.ListForActor(context.Background(), agentActor(), TicketListFilter{AssignedToMe: true})
	require.NoError(t, err)
	require.NotNil(t, captured.AssignedAgentID)
	assert.Equal(t, "agent-1", *captured.AssignedAgentID)
}

func TestListAgentsDeniedToClients(t *testing.T) {
	users := &mockUserRepository{
		ListByRoleFunc: func(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
			return []domain.User{{ID: "agent-1", Name: "Bob", Role: domain.RoleAgent}}, nil
		},
	}
	svc := newTestTicketService(&mockTicketRepository{}, &mockCommentRepository{}, users, &capturingDispatcher{})

	_, err := svc.ListAgents(context.Background(), clientActor())
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	agents, err := svc.ListAgents(context.Background(), agentActor())
	require.NoError(t, err)
	assert.Len(t, agents, 1)
}

func TestAddCommentBumpsLastResponse(t *testing.T) {
	stored := openTicket()
	var savedTicket *domain.Ticket
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return stored, nil
		},
		UpdateFunc: func(ctx context.Context, ticket *domain.Ticket) error {
			savedTicket = ticket
			return nil
		},
	}
	users := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return clientUser(), nil
		},
	}
	dispatcher := &capturingDispatcher{}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, users, dispatcher)

	comment, err := svc.AddComment(context.Background(), clientActor(), testTicketID, "  any update?  ")
	require.NoError(t, err)

	assert.Equal(t, "any update?", comment.Content)
	assert.Equal(t, "Alice", comment.UserName)
	assert.Equal(t, domain.RoleClient, comment.UserRole)

	require.NotNil(t, savedTicket)
	require.NotNil(t, savedTicket.LastResponseAt)
	assert.Equal(t, comment.CreatedAt, *savedTicket.LastResponseAt)

	added := dispatcher.ofType(events.EventTicketCommentAdded)
	require.Len(t, added, 1)
	assert.Equal(t, domain.RoleClient, added[0].CommentAdded.AuthorRole)
}

func TestAddCommentValidation(t *testing.T) {
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return openTicket(), nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	_, err := svc.AddComment(context.Background(), clientActor(), testTicketID, "   ")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestAddCommentForeignTicketForbidden(t *testing.T) {
	tickets := &mockTicketRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return openTicket(), nil
		},
	}
	svc := newTestTicketService(tickets, &mockCommentRepository{}, &mockUserRepository{}, &capturingDispatcher{})

	stranger := auth.Actor{UserID: "client-2", Role: domain.RoleClient}
	_, err := svc.AddComment(context.Background(), stranger, testTicketID, "hi")
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}
