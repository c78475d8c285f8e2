package dto

import (
	"time"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload for opening a ticket.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
}

// UpdateTicketRequest carries a partial update; omitted or empty fields
// leave the ticket unchanged.
type UpdateTicketRequest struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	Category        string                `json:"category"`
	AssignedAgentID string                `json:"assigned_agent_id"`
}

// CreateCommentRequest payload for appending to the thread.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID                string                `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Status            domain.TicketStatus   `json:"status"`
	Priority          domain.TicketPriority `json:"priority"`
	Category          string                `json:"category"`
	ClientID          string                `json:"client_id"`
	ClientName        string                `json:"client_name"`
	ClientEmail       string                `json:"client_email"`
	AssignedAgentID   *string               `json:"assigned_agent_id,omitempty"`
	AssignedAgentName *string               `json:"assigned_agent_name,omitempty"`
	LastResponseAt    *time.Time            `json:"last_response_at,omitempty"`
	ClosedAt          *time.Time            `json:"closed_at,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// TicketDetailResponse is a ticket with its comment thread.
type TicketDetailResponse struct {
	TicketResponse
	Comments []CommentResponse `json:"comments"`
}

// CommentResponse is the wire form of a comment.
type CommentResponse struct {
	ID        string          `json:"id"`
	TicketID  string          `json:"ticket_id"`
	UserID    string          `json:"user_id"`
	UserName  string          `json:"user_name"`
	UserRole  domain.UserRole `json:"user_role"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}
