package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/email"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
)

// SweepService implements the three time-driven notification sweeps.
// Each sweep returns how many notifications went out; a failure for one
// ticket is logged and never aborts the rest of the run.
type SweepService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	sender  email.Sender
	logger  *zap.Logger

	staleAfter time.Duration
	now        func() time.Time
}

// SweepDependencies bundles collaborators for the sweep service.
type SweepDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Sender     email.Sender
	Logger     *zap.Logger
	StaleAfter time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewSweepService constructs the service.
func NewSweepService(deps SweepDependencies) *SweepService {
	staleAfter := deps.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &SweepService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		sender:     deps.Sender,
		logger:     deps.Logger,
		staleAfter: staleAfter,
		now:        nowFn,
	}
}

// RemindStaleTickets emails the assigned agent of every open or
// in-progress ticket that has gone longer than the threshold without a
// response.
func (s *SweepService) RemindStaleTickets(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.staleAfter)

	tickets, err := s.tickets.ListAwaitingResponse(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range tickets {
		ticket := &tickets[i]
		if ticket.AssignedAgentID == nil {
			continue
		}
		agent, err := s.users.GetByID(ctx, *ticket.AssignedAgentID)
		if err != nil {
			s.logger.Warn("stale sweep: agent lookup failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}

		lastActivity := ticket.CreatedAt
		if ticket.LastResponseAt != nil {
			lastActivity = *ticket.LastResponseAt
		}
		hoursSince := int(now.Sub(lastActivity).Hours())

		subject := "Reminder: Ticket " + ticket.ID + " awaiting response"
		body := email.AgentReminderBody(agent.Name, ticket.ID, ticket.Title, hoursSince)
		if err := s.sender.Send(agent.Email, subject, body); err != nil {
			s.logger.Warn("stale sweep: reminder email failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("to", agent.Email),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// SendClosureSurveys emails a satisfaction survey to the client of
// every ticket closed during the prior full calendar day.
func (s *SweepService) SendClosureSurveys(ctx context.Context) (int, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	tickets, err := s.tickets.ListClosedBetween(ctx, yesterday, today)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range tickets {
		ticket := &tickets[i]
		subject := "How was our support? - HelpDeskPro"
		body := email.SurveyBody(ticket.ClientName, ticket.ID, ticket.Title)
		if err := s.sender.Send(ticket.ClientEmail, subject, body); err != nil {
			s.logger.Warn("survey sweep: email failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("to", ticket.ClientEmail),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// AlertUnassignedTickets tells every agent how many open tickets sit
// unassigned. Nothing is sent when the queue is empty.
func (s *SweepService) AlertUnassignedTickets(ctx context.Context) (int, error) {
	tickets, err := s.tickets.ListUnassignedOpen(ctx)
	if err != nil {
		return 0, err
	}
	if len(tickets) == 0 {
		return 0, nil
	}

	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range agents {
		agent := &agents[i]
		subject := "Tickets pending assignment - HelpDeskPro"
		body := email.UnassignedAlertBody(agent.Name, len(tickets))
		if err := s.sender.Send(agent.Email, subject, body); err != nil {
			s.logger.Warn("unassigned sweep: email failed",
				zap.String("to", agent.Email),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
