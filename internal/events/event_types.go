package events

import (
	"time"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketClosed       EventType = "ticket_closed"
	EventTicketCommentAdded EventType = "ticket_comment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services. Payloads carry
// the denormalized fields notification rendering needs, so consumers
// never read the store.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`

	TicketCreated *TicketCreatedPayload `json:"ticket_created,omitempty"`
	TicketClosed  *TicketClosedPayload  `json:"ticket_closed,omitempty"`
	CommentAdded  *CommentAddedPayload  `json:"comment_added,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title       string `json:"title"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Title       string `json:"title"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	Title       string          `json:"title"`
	ClientName  string          `json:"client_name"`
	ClientEmail string          `json:"client_email"`
	AuthorName  string          `json:"author_name"`
	AuthorRole  domain.UserRole `json:"author_role"`
	Content     string          `json:"content"`
}
