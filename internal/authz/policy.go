// Package authz holds the pure authorization policy for tickets. Every rule
// is a predicate over (principal, ticket) looked up in a per-role capability
// table; nothing here performs I/O.
package authz

import "github.com/spec-kit/support-desk/internal/domain"

// Principal is the authenticated caller as seen by services.
type Principal struct {
	ID   string
	Role domain.Role
}

// Capability identifies one guarded ticket operation.
type Capability int

const (
	CapabilityView Capability = iota
	CapabilityEditFields
	CapabilityAssign
	CapabilityDelete
	CapabilityComment
)

// TicketPredicate decides whether a principal may exercise a capability on a
// specific ticket.
type TicketPredicate func(principalID string, t *domain.Ticket) bool

func always(string, *domain.Ticket) bool { return true }
func never(string, *domain.Ticket) bool  { return false }

func isCreator(principalID string, t *domain.Ticket) bool {
	return t.CreatedByID == principalID
}

// isParticipant matches the ticket's creator or current assignee.
func isParticipant(principalID string, t *domain.Ticket) bool {
	if t.CreatedByID == principalID {
		return true
	}
	return t.AssignedToID != nil && *t.AssignedToID == principalID
}

// capabilityTable is the single source of truth for ticket permissions,
// evaluated once per request instead of re-derived per endpoint.
var capabilityTable = map[domain.Role]map[Capability]TicketPredicate{
	domain.RoleCustomer: {
		CapabilityView:       isCreator,
		CapabilityEditFields: isCreator,
		CapabilityAssign:     never,
		CapabilityDelete:     never,
		CapabilityComment:    isCreator,
	},
	domain.RoleAgent: {
		CapabilityView:       isParticipant,
		CapabilityEditFields: isParticipant,
		CapabilityAssign:     isParticipant,
		CapabilityDelete:     never,
		CapabilityComment:    isParticipant,
	},
	domain.RoleAdmin: {
		CapabilityView:       always,
		CapabilityEditFields: always,
		CapabilityAssign:     always,
		CapabilityDelete:     always,
		CapabilityComment:    always,
	},
}

// Allows reports whether the principal may exercise the capability on the
// ticket. Unknown roles are denied everything.
func Allows(p Principal, capability Capability, t *domain.Ticket) bool {
	caps, ok := capabilityTable[p.Role]
	if !ok {
		return false
	}
	predicate, ok := caps[capability]
	if !ok {
		return false
	}
	return predicate(p.ID, t)
}

// CanDelete reports whether the role may delete tickets at all. Deletion is
// role-gated before the ticket is even looked up.
func CanDelete(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// ListScope is the subset of tickets a role may enumerate before filters
// apply.
type ListScope struct {
	// All grants visibility of every ticket.
	All bool
	// CreatedByID restricts to tickets created by this user.
	CreatedByID *string
	// ParticipantID restricts to tickets created by or assigned to this user.
	ParticipantID *string
}

// ScopeFor returns the enumeration scope for the principal. Unknown roles see
// nothing beyond their own created tickets.
func ScopeFor(p Principal) ListScope {
	switch p.Role {
	case domain.RoleAdmin:
		return ListScope{All: true}
	case domain.RoleAgent:
		id := p.ID
		return ListScope{ParticipantID: &id}
	default:
		id := p.ID
		return ListScope{CreatedByID: &id}
	}
}
