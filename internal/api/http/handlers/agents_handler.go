package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskpro/helpdesk-service/internal/api/dto"
	"github.com/helpdeskpro/helpdesk-service/internal/auth"
	"github.com/helpdeskpro/helpdesk-service/internal/service"
	apperrors "github.com/helpdeskpro/helpdesk-service/pkg/util/errorutil"
)

// AgentsHandler exposes the agent directory.
type AgentsHandler struct {
	service *service.TicketService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(ticketService *service.TicketService) *AgentsHandler {
	return &AgentsHandler{service: ticketService}
}

// ListAgents GET /agents.
func (h *AgentsHandler) ListAgents(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	agents, err := h.service.ListAgents(c.Context(), actor)
	if err != nil {
		return err
	}

	items := make([]dto.AgentResponse, 0, len(agents))
	for _, agent := range agents {
		items = append(items, dto.AgentResponse{
			ID:    agent.ID,
			Name:  agent.Name,
			Email: agent.Email,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
