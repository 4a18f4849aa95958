package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
)

const snapshotCacheKey = "analytics:snapshot"

// Snapshot is the admin analytics rollup. Grouped counts only list values
// present in the data; absent categories/priorities are omitted.
type Snapshot struct {
	TotalTickets  int `json:"total_tickets"`
	OpenTickets   int `json:"open_tickets"`
	ClosedTickets int `json:"closed_tickets"`
	// AverageResponseTimeHours averages, over tickets with at least one
	// comment, the time from creation to first comment, rounded to whole
	// hours. Zero when no ticket has a comment.
	AverageResponseTimeHours int                        `json:"average_response_time_hours"`
	TicketsByCategory        []repository.CategoryCount `json:"tickets_by_category"`
	TicketsByPriority        []repository.PriorityCount `json:"tickets_by_priority"`
	RecentActivity           []FeedEntry                `json:"recent_activity"`
}

// FeedEntry is one recent activity with actor profile and parent ticket
// reference.
type FeedEntry struct {
	ID          string                `json:"id"`
	Action      domain.ActivityAction `json:"action"`
	Description string                `json:"description"`
	CreatedAt   time.Time             `json:"created_at"`
	User        domain.Profile        `json:"user"`
	Ticket      TicketRef             `json:"ticket"`
}

// TicketRef names an activity's parent ticket.
type TicketRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AnalyticsService computes the admin snapshot, with a short-lived Redis
// cache in front of the aggregate queries.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	cache     *persistence.Redis
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAnalyticsService constructs the service. cache may be nil; a zero TTL
// disables caching.
func NewAnalyticsService(analytics repository.AnalyticsRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		analytics: analytics,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Snapshot returns the current rollup, serving a cached copy when one is
// fresh. Cache failures degrade to recomputation, never to an error.
func (s *AnalyticsService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	snapshot, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, snapshot)
	return snapshot, nil
}

func (s *AnalyticsService) compute(ctx context.Context) (*Snapshot, error) {
	total, err := s.analytics.CountTickets(ctx, nil)
	if err != nil {
		return nil, err
	}
	open, err := s.analytics.CountTickets(ctx, []domain.TicketStatus{
		domain.TicketStatusOpen, domain.TicketStatusInProgress,
	})
	if err != nil {
		return nil, err
	}
	closed, err := s.analytics.CountTickets(ctx, []domain.TicketStatus{
		domain.TicketStatusResolved, domain.TicketStatusClosed,
	})
	if err != nil {
		return nil, err
	}
	byCategory, err := s.analytics.TicketsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.analytics.TicketsByPriority(ctx)
	if err != nil {
		return nil, err
	}
	delays, err := s.analytics.FirstResponseDelays(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.analytics.RecentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}

	feed := make([]FeedEntry, 0, len(recent))
	for _, entry := range recent {
		feed = append(feed, FeedEntry{
			ID:          entry.Activity.ID,
			Action:      entry.Activity.Action,
			Description: entry.Activity.Description,
			CreatedAt:   entry.Activity.CreatedAt,
			User:        entry.Actor,
			Ticket:      TicketRef{ID: entry.TicketID, Title: entry.Title},
		})
	}

	return &Snapshot{
		TotalTickets:             total,
		OpenTickets:              open,
		ClosedTickets:            closed,
		AverageResponseTimeHours: averageHours(delays),
		TicketsByCategory:        byCategory,
		TicketsByPriority:        byPriority,
		RecentActivity:           feed,
	}, nil
}

// averageHours rounds the mean delay to the nearest whole hour. Tickets
// without comments never reach here; an empty input yields zero.
func averageHours(delays []time.Duration) int {
	if len(delays) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range delays {
		total += d
	}
	mean := total / time.Duration(len(delays))
	return int(math.Round(mean.Hours()))
}

func (s *AnalyticsService) fromCache(ctx context.Context) *Snapshot {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.GetString(ctx, snapshotCacheKey)
	if err != nil {
		s.logger.Debug("analytics cache read failed", zap.Error(err))
		return nil
	}
	if raw == "" {
		return nil
	}
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		s.logger.Debug("analytics cache decode failed", zap.Error(err))
		return nil
	}
	return &snapshot
}

func (s *AnalyticsService) toCache(ctx context.Context, snapshot *Snapshot) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.SetString(ctx, snapshotCacheKey, string(raw), s.cacheTTL); err != nil {
		s.logger.Debug("analytics cache write failed", zap.Error(err))
	}
}
