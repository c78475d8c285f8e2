package auth

import "github.com/helpdeskpro/helpdesk-service/internal/domain"

// Action enumerates the operations the policy can gate.
type Action string

const (
	ActionView          Action = "view"
	ActionCreate        Action = "create"
	ActionUpdateLimited Action = "update_limited"
	ActionUpdateFull    Action = "update_full"
	ActionReassign      Action = "reassign"
	ActionClose         Action = "close"
	ActionDelete        Action = "delete"
	ActionComment       Action = "comment"
)

// DenyReason tags why a request was denied. A denial never carries
// ticket content, so a client probing a foreign ticket learns nothing
// beyond "forbidden".
type DenyReason string

const (
	DenyNotAuthenticated DenyReason = "not_authenticated"
	DenyForbiddenRole    DenyReason = "forbidden_role"
	DenyNotOwner         DenyReason = "not_owner"
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	UserID string
	Email  string
	Role   domain.UserRole
}

// TicketRef is the slice of ticket state the policy needs.
type TicketRef struct {
	ClientID        string
	AssignedAgentID *string
	Status          domain.TicketStatus
}

// Decision is the policy outcome.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authorize is a pure decision function mapping (actor, ticket, action)
// to allow/deny. It performs no I/O.
func Authorize(actor Actor, ticket TicketRef, action Action) Decision {
	if actor.UserID == "" {
		return deny(DenyNotAuthenticated)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleAgent:
		switch action {
		case ActionView, ActionCreate, ActionComment, ActionUpdateFull, ActionReassign, ActionClose:
			return allow()
		}
		return deny(DenyForbiddenRole)
	case domain.RoleClient:
		switch action {
		case ActionCreate:
			return allow()
		case ActionView, ActionUpdateLimited, ActionComment:
			if ticket.ClientID == actor.UserID {
				return allow()
			}
			return deny(DenyNotOwner)
		}
		return deny(DenyForbiddenRole)
	}
	return deny(DenyForbiddenRole)
}

// CanListAgents gates the agent directory: any authenticated staff
// member may list agents, clients may not.
func CanListAgents(actor Actor) Decision {
	if actor.UserID == "" {
		return deny(DenyNotAuthenticated)
	}
	if actor.Role.IsStaff() {
		return allow()
	}
	return deny(DenyForbiddenRole)
}

// UpdateActionFor maps the actor's role to the update variant the
// policy understands.
func UpdateActionFor(role domain.UserRole) Action {
	if role.IsStaff() {
		return ActionUpdateFull
	}
	return ActionUpdateLimited
}
