// Package service implements the task workflow engine, the read views and
// the dashboard statistics on top of the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examhub-dev/examhub/biz/task/activity"
	"github.com/examhub-dev/examhub/biz/task/structs"
	"github.com/examhub-dev/examhub/cache"
	"github.com/examhub-dev/examhub/data/repository"
	"github.com/examhub-dev/examhub/ecode"
	"github.com/examhub-dev/examhub/logging/logger"
	"github.com/examhub-dev/examhub/nanoid"
	"github.com/examhub-dev/examhub/validation/validator"

	"github.com/redis/go-redis/v9"
)

// Domain sentinel errors surfaced to the HTTP layer.
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("referenced user not found")
	ErrForbidden       = errors.New("operation not permitted for this user")
	ErrInvalidState    = errors.New("operation not valid in the current task status")
	ErrConflict        = errors.New("task was modified concurrently, retry")
)

// ValidationError reports a request field that failed a domain rule not
// covered by binding tags.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Concurrent writers race on the task version; a bounded number of
// re-reads absorbs transient losses before giving up.
const maxUpdateRetries = 3

// Service is the task workflow engine.
type Service struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	log   *logger.Logger
	stats *cache.Cache[structs.DashboardStats]
}

// New creates the task service. rc may be nil, which disables the stats
// cache.
func New(tasks repository.TaskRepository, users repository.UserRepository, rc *redis.Client, log *logger.Logger) *Service {
	return &Service{
		tasks: tasks,
		users: users,
		log:   log,
		stats: cache.NewCache[structs.DashboardStats](rc, "examhub:stats"),
	}
}

// mutate loads the task, applies fn and persists the result, retrying when
// a concurrent writer bumped the version first. fn returning an error
// aborts without persisting anything.
func (s *Service) mutate(ctx context.Context, taskID string, fn func(task *structs.Task) error) (*structs.Task, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		task, err := s.tasks.FindByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, err
		}

		if err := fn(task); err != nil {
			return nil, err
		}

		err = s.tasks.Update(ctx, task)
		if err == nil {
			return task, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			s.log.Debug(ctx, "task update lost a version race", "task_id", taskID, "attempt", attempt+1)
			continue
		}
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return nil, ErrConflict
}

// assigneeNames resolves ids to display names joined for the audit message,
// preserving the id order of the request.
func (s *Service) assigneeNames(ctx context.Context, ids []string) (string, error) {
	names, err := s.users.FindNamesByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, names[id])
	}
	return strings.Join(ordered, ", "), nil
}

// CreateTask creates a task owned by the actor. A non-empty assignee set
// is resolved against the user directory and logged alongside the creation
// entry.
func (s *Service) CreateTask(ctx context.Context, actor structs.Principal, req *structs.CreateTaskRequest) (*structs.Task, error) {
	if req.DueDate == nil {
		return nil, &ValidationError{Field: "due_date", Reason: ecode.FieldIsRequired()}
	}

	priority := req.Priority
	if priority == "" {
		priority = structs.PriorityMedium
	}
	assignedTo := req.AssignedTo
	if assignedTo == nil {
		assignedTo = []string{}
	}

	var assignedNames string
	if len(assignedTo) > 0 {
		var err error
		assignedNames, err = s.assigneeNames(ctx, assignedTo)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	task := &structs.Task{
		ID:              nanoid.PrimaryKey(),
		Title:           req.Title,
		Description:     req.Description,
		RelatedTo:       req.RelatedTo,
		CreatedBy:       actor.ID,
		AssignedTo:      assignedTo,
		Priority:        priority,
		Status:          structs.StatusNotStarted,
		CurrentProgress: 0,
		DueDate:         *req.DueDate,
		Notes:           req.Notes,
		Comments:        []structs.Comment{},
		ActivityLogs:    []structs.ActivityLog{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	task.AddActivity(activity.ActionTaskCreated, actor.ID, actor.Name, nil)
	if len(assignedTo) > 0 {
		task.AddActivity(activity.ActionTaskAssigned, actor.ID, actor.Name, map[string]any{
			"assigned_to":    assignedTo,
			"assigned_names": assignedNames,
		})
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "task created", "task_id", task.ID, "created_by", actor.ID)
	return task, nil
}

// GetTask returns a single task by id.
func (s *Service) GetTask(ctx context.Context, actor structs.Principal, taskID string) (*structs.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// UpdateTask updates the descriptive fields a creator may edit. Priority
// and due date get dedicated audit entries; any change at all produces a
// task_updated entry.
func (s *Service) UpdateTask(ctx context.Context, actor structs.Principal, taskID string, req *structs.UpdateTaskRequest) (*structs.Task, error) {
	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		if !task.IsCreator(actor.ID) {
			return ErrForbidden
		}

		changed := false
		if req.Title != nil && *req.Title != task.Title {
			task.Title = *req.Title
			changed = true
		}
		if req.Description != nil && *req.Description != task.Description {
			task.Description = *req.Description
			changed = true
		}
		if req.RelatedTo != nil && *req.RelatedTo != task.RelatedTo {
			task.RelatedTo = *req.RelatedTo
			changed = true
		}
		if req.Notes != nil && *req.Notes != task.Notes {
			task.Notes = *req.Notes
			changed = true
		}
		if req.Priority != nil && *req.Priority != task.Priority {
			old := task.Priority
			task.Priority = *req.Priority
			task.AddActivity(activity.ActionPriorityChanged, actor.ID, actor.Name, map[string]any{
				"from": old,
				"to":   *req.Priority,
			})
			changed = true
		}
		if req.DueDate != nil && !req.DueDate.Equal(task.DueDate) {
			old := task.DueDate
			task.DueDate = *req.DueDate
			task.AddActivity(activity.ActionDueDateChanged, actor.ID, actor.Name, map[string]any{
				"from": old,
				"to":   *req.DueDate,
			})
			changed = true
		}

		if changed {
			task.AddActivity(activity.ActionTaskUpdated, actor.ID, actor.Name, nil)
		}
		return nil
	})
}

// UpdateProgress sets the progress percentage. Moving a not started task
// off zero implicitly transitions it to in progress, with the status
// change logged before the progress change.
func (s *Service) UpdateProgress(ctx context.Context, actor structs.Principal, taskID string, progress int) (*structs.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, &ValidationError{Field: "current_progress", Reason: "must be between 0 and 100"}
	}

	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		if !task.CanModify(actor.ID) {
			return ErrForbidden
		}

		old := task.CurrentProgress
		if old == 0 && progress > 0 && task.Status == structs.StatusNotStarted {
			from := task.SetStatus(structs.StatusInProgress, time.Now())
			task.AddActivity(activity.ActionStatusChanged, actor.ID, actor.Name, map[string]any{
				"from": from,
				"to":   structs.StatusInProgress,
			})
		}

		task.CurrentProgress = progress
		task.AddActivity(activity.ActionProgressUpdated, actor.ID, actor.Name, map[string]any{
			"from": old,
			"to":   progress,
		})
		return nil
	})
}

// SubmitForReview moves a task to review. Only assignees may submit; the
// creator cannot push their own task through review.
func (s *Service) SubmitForReview(ctx context.Context, actor structs.Principal, taskID string) (*structs.Task, error) {
	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		if !task.IsAssignee(actor.ID) {
			return ErrForbidden
		}
		if task.Status == structs.StatusCompleted {
			return ErrInvalidState
		}

		from := task.SetStatus(structs.StatusReview, time.Now())
		task.AddActivity(activity.ActionSubmittedForReview, actor.ID, actor.Name, map[string]any{
			"from": from,
			"to":   structs.StatusReview,
		})
		return nil
	})
}

// RequestChanges sends a task under review back to in progress. Optional
// feedback is recorded as a comment authored by the actor.
func (s *Service) RequestChanges(ctx context.Context, actor structs.Principal, taskID, feedback string) (*structs.Task, error) {
	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		if !task.IsCreator(actor.ID) {
			return ErrForbidden
		}
		if task.Status != structs.StatusReview {
			return ErrInvalidState
		}

		now := time.Now()
		if feedback != "" {
			task.Comments = append(task.Comments, structs.Comment{
				ID:        nanoid.PrimaryKey(),
				Author:    actor.ID,
				Text:      feedback,
				CreatedAt: now,
			})
		}

		from := task.SetStatus(structs.StatusInProgress, now)
		task.AddActivity(activity.ActionChangesRequested, actor.ID, actor.Name, map[string]any{
			"from": from,
			"to":   structs.StatusInProgress,
		})
		return nil
	})
}

// ApproveTask completes a task from any non-completed status. Progress is
// forced to 100 and the completion date stamped.
func (s *Service) ApproveTask(ctx context.Context, actor structs.Principal, taskID string) (*structs.Task, error) {
	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		if !task.IsCreator(actor.ID) {
			return ErrForbidden
		}
		if task.Status == structs.StatusCompleted {
			return ErrInvalidState
		}

		now := time.Now()
		from := task.SetStatus(structs.StatusCompleted, now)
		task.AddActivity(activity.ActionStatusChanged, actor.ID, actor.Name, map[string]any{
			"from": from,
			"to":   structs.StatusCompleted,
		})
		task.AddActivity(activity.ActionTaskCompleted, actor.ID, actor.Name, map[string]any{
			"completed_at": *task.CompletionDate,
		})
		return nil
	})
}

// AssignTask replaces the assignee set and logs the new assignees by name.
func (s *Service) AssignTask(ctx context.Context, actor structs.Principal, taskID string, assigneeIDs []string) (*structs.Task, error) {
	return s.replaceAssignees(ctx, actor, taskID, assigneeIDs, activity.ActionTaskAssigned)
}

// ReassignTask is AssignTask with a reassignment audit entry.
func (s *Service) ReassignTask(ctx context.Context, actor structs.Principal, taskID string, assigneeIDs []string) (*structs.Task, error) {
	return s.replaceAssignees(ctx, actor, taskID, assigneeIDs, activity.ActionTaskReassigned)
}

func (s *Service) replaceAssignees(ctx context.Context, actor structs.Principal, taskID string, assigneeIDs []string, action string) (*structs.Task, error) {
	if len(assigneeIDs) == 0 {
		return nil, &ValidationError{Field: "assigned_to", Reason: ecode.FieldIsEmpty()}
	}

	assignedNames, err := s.assigneeNames(ctx, assigneeIDs)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		task.AssignedTo = append([]string{}, assigneeIDs...)
		task.AddActivity(action, actor.ID, actor.Name, map[string]any{
			"assigned_to":    assigneeIDs,
			"assigned_names": assignedNames,
		})
		return nil
	})
}

// UnassignTask removes a single assignee from the set.
func (s *Service) UnassignTask(ctx context.Context, actor structs.Principal, taskID, userID string) (*structs.Task, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		if !task.IsAssignee(userID) {
			return &ValidationError{Field: "user_id", Reason: ecode.NotExist("assignment")}
		}

		kept := make([]string, 0, len(task.AssignedTo))
		for _, id := range task.AssignedTo {
			if id != userID {
				kept = append(kept, id)
			}
		}
		task.AssignedTo = kept
		task.AddActivity(activity.ActionTaskUpdated, actor.ID, actor.Name, map[string]any{
			"unassigned":      userID,
			"unassigned_name": user.Name,
		})
		return nil
	})
}

// AddComment appends a comment and its audit entry.
func (s *Service) AddComment(ctx context.Context, actor structs.Principal, taskID, text string) (*structs.Task, error) {
	if validator.IsEmpty(text) {
		return nil, &ValidationError{Field: "comment", Reason: ecode.FieldIsEmpty()}
	}

	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		if !task.CanModify(actor.ID) {
			return ErrForbidden
		}

		task.Comments = append(task.Comments, structs.Comment{
			ID:        nanoid.PrimaryKey(),
			Author:    actor.ID,
			Text:      text,
			CreatedAt: time.Now(),
		})
		task.AddActivity(activity.ActionCommentAdded, actor.ID, actor.Name, nil)
		return nil
	})
}

// DeleteComment removes a comment. Only the comment author or the task
// creator may delete. No activity entry is recorded for removal.
func (s *Service) DeleteComment(ctx context.Context, actor structs.Principal, taskID, commentID string) (*structs.Task, error) {
	return s.mutate(ctx, taskID, func(task *structs.Task) error {
		comment, idx := task.FindComment(commentID)
		if comment == nil {
			return ErrCommentNotFound
		}
		if comment.Author != actor.ID && !task.IsCreator(actor.ID) {
			return ErrForbidden
		}
		task.RemoveComment(idx)
		return nil
	})
}

// DeleteTask removes a task and everything embedded in it.
func (s *Service) DeleteTask(ctx context.Context, actor structs.Principal, taskID string) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	if !task.IsCreator(actor.ID) {
		return ErrForbidden
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.log.Info(ctx, "task deleted", "task_id", taskID, "deleted_by", actor.ID)
	return nil
}

// GetComments returns the comment sequence of a task.
func (s *Service) GetComments(ctx context.Context, actor structs.Principal, taskID string) ([]structs.Comment, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return task.Comments, nil
}

// GetActivityLogs returns the audit trail of a task, oldest first.
func (s *Service) GetActivityLogs(ctx context.Context, actor structs.Principal, taskID string) ([]structs.ActivityLog, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return task.ActivityLogs, nil
}
