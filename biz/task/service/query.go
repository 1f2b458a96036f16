package service

import (
	"context"
	"sort"
	"time"

	"github.com/examhub-dev/examhub/biz/task/structs"
	"github.com/examhub-dev/examhub/paging"
)

// NotStartedTasks lists not started tasks the actor created or is assigned
// to, newest first.
func (s *Service) NotStartedTasks(ctx context.Context, actor structs.Principal) ([]structs.Task, error) {
	return s.tasks.FindMine(ctx, actor.ID, structs.StatusNotStarted)
}

// InProgressTasks lists in progress tasks the actor created or is assigned
// to. Tasks in review are not included.
func (s *Service) InProgressTasks(ctx context.Context, actor structs.Principal) ([]structs.Task, error) {
	return s.tasks.FindMine(ctx, actor.ID, structs.StatusInProgress)
}

// ReviewTasks lists tasks in review the actor created or is assigned to.
func (s *Service) ReviewTasks(ctx context.Context, actor structs.Principal) ([]structs.Task, error) {
	return s.tasks.FindMine(ctx, actor.ID, structs.StatusReview)
}

// CompletedTasks lists completed tasks where the actor is an assignee, or
// the creator of a task that was never assigned. Sorted by completion
// date, most recent first.
func (s *Service) CompletedTasks(ctx context.Context, actor structs.Principal) ([]structs.Task, error) {
	return s.tasks.FindCompletedFor(ctx, actor.ID)
}

// AssignedToMe lists tasks assigned to the actor by someone else.
func (s *Service) AssignedToMe(ctx context.Context, actor structs.Principal) ([]structs.Task, error) {
	return s.tasks.FindAssignedToMe(ctx, actor.ID)
}

// AssignedByMe lists tasks the actor created and delegated to others.
func (s *Service) AssignedByMe(ctx context.Context, actor structs.Principal) ([]structs.Task, error) {
	return s.tasks.FindAssignedByMe(ctx, actor.ID)
}

// OverdueTasks lists non-completed tasks past their due date, most overdue
// first.
func (s *Service) OverdueTasks(ctx context.Context, actor structs.Principal) ([]structs.Task, error) {
	return s.tasks.FindOverdue(ctx, actor.ID, time.Now())
}

// UpcomingTasks lists non-completed tasks due within the next n days.
func (s *Service) UpcomingTasks(ctx context.Context, actor structs.Principal, days int) ([]structs.Task, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	return s.tasks.FindUpcoming(ctx, actor.ID, now, now.AddDate(0, 0, days))
}

// ListTasks lists tasks matching the filter with cursor pagination over
// creation time, newest first.
func (s *Service) ListTasks(ctx context.Context, actor structs.Principal, params *structs.ListTasksParams) (*paging.Result[structs.Task], error) {
	pp := paging.Params{Cursor: params.Cursor, Limit: params.Limit}

	return paging.Paginate(pp, func(cursor string, limit int) ([]structs.Task, int, string, error) {
		var before *time.Time
		if cursor != "" {
			t, err := paging.DecodeCursor(cursor)
			if err != nil {
				return nil, 0, "", err
			}
			before = &t
		}

		tasks, total, err := s.tasks.List(ctx, params, before, limit)
		if err != nil {
			return nil, 0, "", err
		}

		var next string
		if len(tasks) == limit {
			next = paging.EncodeCursor(tasks[len(tasks)-2].CreatedAt)
		}
		return tasks, total, next, nil
	})
}

// AllActivity flattens the audit trails of every task visible to the actor
// into one stream, optionally filtered by date range, actor or action.
// Newest entries come first.
func (s *Service) AllActivity(ctx context.Context, actor structs.Principal, params *structs.ActivityParams) ([]structs.TaskActivity, error) {
	tasks, err := s.tasks.FindForActivity(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	out := make([]structs.TaskActivity, 0)
	for i := range tasks {
		for _, entry := range tasks[i].ActivityLogs {
			if params.StartDate != nil && entry.Timestamp.Before(*params.StartDate) {
				continue
			}
			if params.EndDate != nil && entry.Timestamp.After(params.EndDate.AddDate(0, 0, 1)) {
				continue
			}
			if params.UserID != "" && entry.ByUser != params.UserID {
				continue
			}
			if params.Action != "" && entry.Action != params.Action {
				continue
			}
			out = append(out, structs.TaskActivity{
				ActivityLog: entry,
				TaskID:      tasks[i].ID,
				TaskTitle:   tasks[i].Title,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
