package service

import (
	"context"
	"math"
	"time"

	"github.com/examhub-dev/examhub/biz/task/structs"
)

const statsTTL = 60 * time.Second

// DashboardStats summarizes the tasks visible to the actor. Results are
// served from the ephemeral store for a short window because the counts
// are aggregation-heavy and tolerate slight staleness.
func (s *Service) DashboardStats(ctx context.Context, actor structs.Principal) (*structs.DashboardStats, error) {
	if cached, err := s.stats.Get(ctx, actor.ID); err == nil && cached != nil {
		return cached, nil
	}

	total, err := s.tasks.Count(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.tasks.CountsByStatus(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tasks.CountsByPriority(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.CountOverdue(ctx, actor.ID, time.Now())
	if err != nil {
		return nil, err
	}
	avgDays, err := s.tasks.AvgCompletionDays(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	stats := &structs.DashboardStats{
		TotalTasks:        total,
		CompletedTasks:    byStatus[structs.StatusCompleted],
		InProgressTasks:   byStatus[structs.StatusInProgress],
		ReviewTasks:       byStatus[structs.StatusReview],
		NotStartedTasks:   byStatus[structs.StatusNotStarted],
		OverdueTasks:      overdue,
		HighPriorityTasks: byPriority[structs.PriorityHigh],
		MediumPriority:    byPriority[structs.PriorityMedium],
		LowPriorityTasks:  byPriority[structs.PriorityLow],
		AvgCompletionDays: math.Round(avgDays*10) / 10,
	}
	if total > 0 {
		stats.CompletionRate = math.Round(float64(byStatus[structs.StatusCompleted])/float64(total)*1000) / 10
	}

	if err := s.stats.Set(ctx, actor.ID, stats, statsTTL); err != nil {
		s.log.Warn(ctx, "failed to cache dashboard stats", "error", err)
	}
	return stats, nil
}
