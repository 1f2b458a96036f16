package structs

import "time"

// CreateTaskRequest creates a new task.
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=100"`
	Description string     `json:"description" binding:"omitempty,max=1000"`
	RelatedTo   string     `json:"related_to" binding:"required,relatedto"`
	AssignedTo  []string   `json:"assigned_to" binding:"omitempty"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date" binding:"required"`
	Notes       string     `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateTaskRequest updates mutable descriptive fields. The field set here
// is the static allow-list; anything else in the payload is ignored.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	RelatedTo   *string    `json:"related_to" binding:"omitempty,relatedto"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date" binding:"omitempty"`
	Notes       *string    `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateProgressRequest sets the task progress percentage.
type UpdateProgressRequest struct {
	CurrentProgress *int `json:"current_progress" binding:"required,min=0,max=100"`
}

// AssignTaskRequest replaces the assignee set wholesale.
type AssignTaskRequest struct {
	AssignedTo []string `json:"assigned_to" binding:"required,min=1"`
}

// UnassignTaskRequest removes a single assignee.
type UnassignTaskRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// RequestChangesRequest optionally carries review feedback.
type RequestChangesRequest struct {
	Feedback string `json:"feedback" binding:"omitempty,max=500"`
}

// AddCommentRequest appends a comment to a task.
type AddCommentRequest struct {
	Comment string `json:"comment" binding:"required,max=500"`
}

// ListTasksParams filters and sorts the task listing.
type ListTasksParams struct {
	Status    string `form:"status" binding:"omitempty,oneof=not_started in_progress review completed"`
	Priority  string `form:"priority" binding:"omitempty,oneof=low medium high"`
	RelatedTo string `form:"related_to" binding:"omitempty,relatedto"`
	CreatedBy string `form:"created_by"`
	Assignee  string `form:"assigned_to"`
	Search    string `form:"search"`
	Cursor    string `form:"cursor"`
	Limit     int    `form:"limit"`
}

// ActivityParams filters the flattened activity listing.
type ActivityParams struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	UserID    string     `form:"user_id"`
	Action    string     `form:"action"`
}

// TaskActivity is one flattened activity entry with its task context.
type TaskActivity struct {
	ActivityLog `bson:",inline" json:",inline"`
	TaskID      string `json:"task_id"`
	TaskTitle   string `json:"task_title"`
}

// DashboardStats summarizes the task collection.
type DashboardStats struct {
	TotalTasks        int64   `json:"total_tasks"`
	CompletedTasks    int64   `json:"completed_tasks"`
	InProgressTasks   int64   `json:"in_progress_tasks"`
	ReviewTasks       int64   `json:"review_tasks"`
	NotStartedTasks   int64   `json:"not_started_tasks"`
	OverdueTasks      int64   `json:"overdue_tasks"`
	HighPriorityTasks int64   `json:"high_priority_tasks"`
	MediumPriority    int64   `json:"medium_priority_tasks"`
	LowPriorityTasks  int64   `json:"low_priority_tasks"`
	CompletionRate    float64 `json:"completion_rate"`
	AvgCompletionDays float64 `json:"avg_completion_days"`
}
