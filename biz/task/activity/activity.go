// Package activity generates the human-readable audit messages recorded
// alongside structured change payloads on a task's activity log.
package activity

import (
	"fmt"
	"time"
)

// Audit actions recorded by the workflow engine.
const (
	ActionTaskCreated        = "task_created"
	ActionTaskAssigned       = "task_assigned"
	ActionTaskReassigned     = "task_reassigned"
	ActionStatusChanged      = "status_changed"
	ActionPriorityChanged    = "priority_changed"
	ActionProgressUpdated    = "progress_updated"
	ActionDueDateChanged     = "due_date_changed"
	ActionTaskCompleted      = "task_completed"
	ActionCommentAdded       = "comment_added"
	ActionTaskUpdated        = "task_updated"
	ActionSubmittedForReview = "submitted_for_review"
	ActionChangesRequested   = "changes_requested"
)

// statusLabels humanizes status values for display.
var statusLabels = map[string]string{
	"not_started": "Not Started",
	"in_progress": "In Progress",
	"review":      "Review",
	"completed":   "Completed",
}

// StatusLabel returns the display label for a status value.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// Message renders the audit sentence for an action. Missing change fields
// render as empty strings; unknown actions fall back to a generic message.
func Message(action string, changes map[string]any, actorName string) string {
	switch action {
	case ActionTaskCreated:
		return fmt.Sprintf("Task created by %s", actorName)
	case ActionTaskAssigned:
		return fmt.Sprintf("Task assigned to %s by %s", str(changes, "assigned_names"), actorName)
	case ActionTaskReassigned:
		return fmt.Sprintf("Task reassigned to %s by %s", str(changes, "assigned_names"), actorName)
	case ActionStatusChanged:
		return fmt.Sprintf("Status changed from %q to %q by %s",
			StatusLabel(str(changes, "from")), StatusLabel(str(changes, "to")), actorName)
	case ActionPriorityChanged:
		return fmt.Sprintf("Priority changed from %q to %q by %s",
			str(changes, "from"), str(changes, "to"), actorName)
	case ActionProgressUpdated:
		return fmt.Sprintf("Progress updated from %d%% to %d%% by %s",
			number(changes, "from"), number(changes, "to"), actorName)
	case ActionDueDateChanged:
		return fmt.Sprintf("Due date changed from %s to %s by %s",
			date(changes, "from"), date(changes, "to"), actorName)
	case ActionTaskCompleted:
		return fmt.Sprintf("Task completed by %s at %s", actorName, datetime(changes, "completed_at"))
	case ActionCommentAdded:
		return fmt.Sprintf("Comment added by %s", actorName)
	case ActionTaskUpdated:
		return fmt.Sprintf("Task updated by %s", actorName)
	case ActionSubmittedForReview:
		return fmt.Sprintf("Task submitted for review by %s", actorName)
	case ActionChangesRequested:
		return fmt.Sprintf("Changes requested by %s", actorName)
	default:
		return fmt.Sprintf("Task modified by %s", actorName)
	}
}

func str(changes map[string]any, key string) string {
	if changes == nil {
		return ""
	}
	if s, ok := changes[key].(string); ok {
		return s
	}
	return ""
}

func number(changes map[string]any, key string) int {
	if changes == nil {
		return 0
	}
	switch n := changes[key].(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asTime(changes map[string]any, key string) (time.Time, bool) {
	if changes == nil {
		return time.Time{}, false
	}
	if t, ok := changes[key].(time.Time); ok {
		return t, true
	}
	return time.Time{}, false
}

func date(changes map[string]any, key string) string {
	t, ok := asTime(changes, key)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

func datetime(changes map[string]any, key string) string {
	t, ok := asTime(changes, key)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
