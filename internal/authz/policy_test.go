package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

func ticketOwnedBy(creator string, assignee *string) *domain.Ticket {
	return &domain.Ticket{ID: "t1", CreatedByID: creator, AssignedToID: assignee}
}

func TestCustomerCapabilities(t *testing.T) {
	p := Principal{ID: "c1", Role: domain.RoleCustomer}
	own := ticketOwnedBy("c1", nil)
	foreign := ticketOwnedBy("c2", nil)

	require.True(t, Allows(p, CapabilityView, own))
	require.True(t, Allows(p, CapabilityEditFields, own))
	require.True(t, Allows(p, CapabilityComment, own))
	require.False(t, Allows(p, CapabilityAssign, own))
	require.False(t, Allows(p, CapabilityDelete, own))

	require.False(t, Allows(p, CapabilityView, foreign))
	require.False(t, Allows(p, CapabilityComment, foreign))
}

func TestAgentCapabilities(t *testing.T) {
	p := Principal{ID: "a1", Role: domain.RoleAgent}
	agentID := "a1"
	created := ticketOwnedBy("a1", nil)
	assigned := ticketOwnedBy("c1", &agentID)
	unrelated := ticketOwnedBy("c1", nil)

	for _, ticket := range []*domain.Ticket{created, assigned} {
		require.True(t, Allows(p, CapabilityView, ticket))
		require.True(t, Allows(p, CapabilityEditFields, ticket))
		require.True(t, Allows(p, CapabilityAssign, ticket))
		require.True(t, Allows(p, CapabilityComment, ticket))
		require.False(t, Allows(p, CapabilityDelete, ticket))
	}

	require.False(t, Allows(p, CapabilityView, unrelated))
	require.False(t, Allows(p, CapabilityAssign, unrelated))
}

func TestAdminCapabilities(t *testing.T) {
	p := Principal{ID: "adm", Role: domain.RoleAdmin}
	foreign := ticketOwnedBy("c1", nil)

	require.True(t, Allows(p, CapabilityView, foreign))
	require.True(t, Allows(p, CapabilityEditFields, foreign))
	require.True(t, Allows(p, CapabilityAssign, foreign))
	require.True(t, Allows(p, CapabilityDelete, foreign))
	require.True(t, Allows(p, CapabilityComment, foreign))
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	p := Principal{ID: "x", Role: "superuser"}
	own := ticketOwnedBy("x", nil)

	require.False(t, Allows(p, CapabilityView, own))
	require.False(t, Allows(p, CapabilityComment, own))
}

func TestCanDelete(t *testing.T) {
	require.True(t, CanDelete(domain.RoleAdmin))
	require.False(t, CanDelete(domain.RoleAgent))
	require.False(t, CanDelete(domain.RoleCustomer))
}

func TestScopeFor(t *testing.T) {
	admin := ScopeFor(Principal{ID: "adm", Role: domain.RoleAdmin})
	require.True(t, admin.All)
	require.Nil(t, admin.CreatedByID)
	require.Nil(t, admin.ParticipantID)

	agent := ScopeFor(Principal{ID: "a1", Role: domain.RoleAgent})
	require.False(t, agent.All)
	require.NotNil(t, agent.ParticipantID)
	require.Equal(t, "a1", *agent.ParticipantID)

	customer := ScopeFor(Principal{ID: "c1", Role: domain.RoleCustomer})
	require.NotNil(t, customer.CreatedByID)
	require.Equal(t, "c1", *customer.CreatedByID)
	require.Nil(t, customer.ParticipantID)
}
