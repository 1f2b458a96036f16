// Package structs defines the task domain model and its invariants.
package structs

import (
	"time"

	"github.com/examhub-dev/examhub/biz/task/activity"
)

// Task statuses.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusCompleted  = "completed"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Principal is the authenticated actor supplied by the HTTP layer.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Comment is a single task comment. Comments are append-only and
// individually deletable by their author or the task creator.
type Comment struct {
	ID        string    `bson:"id" json:"id"`
	Author    string    `bson:"author" json:"author"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ActivityLog is one immutable audit record. The sequence on a task only
// ever grows.
type ActivityLog struct {
	Action    string         `bson:"action" json:"action"`
	ByUser    string         `bson:"by_user" json:"by_user"`
	Changes   map[string]any `bson:"changes,omitempty" json:"changes,omitempty"`
	Message   string         `bson:"message" json:"message"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
}

// Task is a unit of work tracked through the workflow engine.
type Task struct {
	ID              string        `bson:"_id" json:"id"`
	Title           string        `bson:"title" json:"title"`
	Description     string        `bson:"description,omitempty" json:"description,omitempty"`
	RelatedTo       string        `bson:"related_to" json:"related_to"`
	CreatedBy       string        `bson:"created_by" json:"created_by"`
	AssignedTo      []string      `bson:"assigned_to" json:"assigned_to"`
	Priority        string        `bson:"priority" json:"priority"`
	Status          string        `bson:"status" json:"status"`
	CurrentProgress int           `bson:"current_progress" json:"current_progress"`
	DueDate         time.Time     `bson:"due_date" json:"due_date"`
	CompletionDate  *time.Time    `bson:"completion_date,omitempty" json:"completion_date,omitempty"`
	Notes           string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Comments        []Comment     `bson:"comments" json:"comments"`
	ActivityLogs    []ActivityLog `bson:"activity_logs" json:"activity_logs"`
	Version         int64         `bson:"version" json:"-"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
}

// SetStatus transitions the task status and enforces the coupling rules:
// entering completed forces progress to 100 and stamps the completion date
// if unset; leaving completed clears the completion date. Returns the
// previous status.
func (t *Task) SetStatus(status string, now time.Time) string {
	old := t.Status
	t.Status = status

	if status == StatusCompleted {
		if t.CompletionDate == nil {
			completed := now
			t.CompletionDate = &completed
		}
		if t.CurrentProgress < 100 {
			t.CurrentProgress = 100
		}
	} else if old == StatusCompleted {
		t.CompletionDate = nil
	}

	return old
}

// IsCreator reports whether uid created the task.
func (t *Task) IsCreator(uid string) bool {
	return t.CreatedBy == uid
}

// IsAssignee reports whether uid is in the assignee set.
func (t *Task) IsAssignee(uid string) bool {
	for _, id := range t.AssignedTo {
		if id == uid {
			return true
		}
	}
	return false
}

// CanModify reports whether uid is the creator or an assignee.
func (t *Task) CanModify(uid string) bool {
	return t.IsCreator(uid) || t.IsAssignee(uid)
}

// AddActivity appends one audit record with its generated message.
func (t *Task) AddActivity(action, actorID, actorName string, changes map[string]any) {
	t.ActivityLogs = append(t.ActivityLogs, ActivityLog{
		Action:    action,
		ByUser:    actorID,
		Changes:   changes,
		Message:   activity.Message(action, changes, actorName),
		Timestamp: time.Now(),
	})
}

// FindComment returns the comment with the given id and its index, or
// (nil, -1) when absent.
func (t *Task) FindComment(commentID string) (*Comment, int) {
	for i := range t.Comments {
		if t.Comments[i].ID == commentID {
			return &t.Comments[i], i
		}
	}
	return nil, -1
}

// RemoveComment deletes the comment at index i preserving order.
func (t *Task) RemoveComment(i int) {
	t.Comments = append(t.Comments[:i], t.Comments[i+1:]...)
}
