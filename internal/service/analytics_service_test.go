package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

func TestAnalyticsSnapshot(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		total:  5,
		open:   3,
		closed: 2,
		byCategory: []repository.CategoryCount{
			{Category: domain.TicketCategoryBilling, Count: 2},
			{Category: domain.TicketCategoryTechnicalIssue, Count: 3},
		},
		byPriority: []repository.PriorityCount{
			{Priority: domain.TicketPriorityMedium, Count: 5},
		},
		delays: []time.Duration{time.Hour, 3 * time.Hour},
		recent: []repository.ActivityFeedEntry{
			{
				Activity: domain.TicketActivity{ID: "a1", Action: domain.ActionCreated, Description: "Ticket created: x"},
				Actor:    domain.Profile{ID: "u1", Name: "Casey", Role: domain.RoleCustomer},
				TicketID: "t1",
				Title:    "x",
			},
		},
	}
	svc := NewAnalyticsService(repo, nil, 0, zap.NewNop())

	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, snapshot.TotalTickets)
	require.Equal(t, 3, snapshot.OpenTickets)
	require.Equal(t, 2, snapshot.ClosedTickets)
	require.Equal(t, 2, snapshot.AverageResponseTimeHours)
	require.Len(t, snapshot.TicketsByCategory, 2)
	require.Len(t, snapshot.TicketsByPriority, 1)

	require.Len(t, snapshot.RecentActivity, 1)
	entry := snapshot.RecentActivity[0]
	require.Equal(t, "a1", entry.ID)
	require.Equal(t, "Casey", entry.User.Name)
	require.Equal(t, "t1", entry.Ticket.ID)
	require.Equal(t, "x", entry.Ticket.Title)
}

func TestAnalyticsSnapshotNoComments(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsRepo{total: 2, open: 2}, nil, 0, zap.NewNop())

	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.AverageResponseTimeHours)
	require.Empty(t, snapshot.RecentActivity)
}

func TestAverageHoursRounding(t *testing.T) {
	require.Equal(t, 0, averageHours(nil))
	require.Equal(t, 2, averageHours([]time.Duration{90 * time.Minute}))
	require.Equal(t, 1, averageHours([]time.Duration{80 * time.Minute}))
	require.Equal(t, 0, averageHours([]time.Duration{20 * time.Minute}))
	require.Equal(t, 2, averageHours([]time.Duration{time.Hour, 3 * time.Hour}))
}
