// Package handler exposes the task workflow engine over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/examhub-dev/examhub/biz/task/service"
	"github.com/examhub-dev/examhub/biz/task/structs"
	"github.com/examhub-dev/examhub/ctxutil"
	"github.com/examhub-dev/examhub/logging/logger"
	"github.com/examhub-dev/examhub/net/resp"

	"github.com/gin-gonic/gin"
)

// Handler wires the task service into gin.
type Handler struct {
	svc *service.Service
	log *logger.Logger
}

// New creates a task handler.
func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes registers all task routes on the given group. The group
// is expected to carry the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	{
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		tasks.GET("/views/:view", h.viewTasks)
		tasks.GET("/activity", h.allActivity)
		tasks.GET("/stats", h.dashboardStats)
		tasks.GET("/overdue", h.overdueTasks)
		tasks.GET("/upcoming", h.upcomingTasks)

		tasks.GET("/:task_id", h.getTask)
		tasks.PUT("/:task_id", h.updateTask)
		tasks.DELETE("/:task_id", h.deleteTask)
		tasks.PATCH("/:task_id/progress", h.updateProgress)
		tasks.POST("/:task_id/submit-review", h.submitForReview)
		tasks.POST("/:task_id/request-changes", h.requestChanges)
		tasks.POST("/:task_id/approve", h.approveTask)
		tasks.PUT("/:task_id/assign", h.assignTask)
		tasks.PUT("/:task_id/reassign", h.reassignTask)
		tasks.POST("/:task_id/unassign", h.unassignTask)
		tasks.GET("/:task_id/comments", h.getComments)
		tasks.POST("/:task_id/comments", h.addComment)
		tasks.DELETE("/:task_id/comments/:comment_id", h.deleteComment)
		tasks.GET("/:task_id/activity", h.getActivityLogs)
	}
}

// principal reads the actor the auth middleware stored on the context.
func principal(ctx context.Context) structs.Principal {
	return structs.Principal{
		ID:   ctxutil.GetUserID(ctx),
		Name: ctxutil.GetUsername(ctx),
		Role: ctxutil.GetUserRole(ctx),
	}
}

// fail translates domain errors to the response envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		resp.Fail(c.Writer, resp.BadRequest(ve.Error()))
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		resp.Fail(c.Writer, resp.NotFound(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		resp.Fail(c.Writer, resp.Forbidden(err.Error()))
	case errors.Is(err, service.ErrInvalidState):
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
	case errors.Is(err, service.ErrConflict):
		resp.Fail(c.Writer, resp.Conflict(err.Error()))
	default:
		h.log.Error(ctxutil.FromGinContext(c), "task request failed", "error", err, "path", c.FullPath())
		resp.Fail(c.Writer, resp.InternalServer("internal server error"))
	}
}

func (h *Handler) createTask(c *gin.Context) {
	var req structs.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.CreateTask(ctx, principal(ctx), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) getTask(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.GetTask(ctx, principal(ctx), c.Param("task_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) updateTask(c *gin.Context) {
	var req structs.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.UpdateTask(ctx, principal(ctx), c.Param("task_id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) deleteTask(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	if err := h.svc.DeleteTask(ctx, principal(ctx), c.Param("task_id")); err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer)
}

func (h *Handler) updateProgress(c *gin.Context) {
	var req structs.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.UpdateProgress(ctx, principal(ctx), c.Param("task_id"), *req.CurrentProgress)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) submitForReview(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.SubmitForReview(ctx, principal(ctx), c.Param("task_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) requestChanges(c *gin.Context) {
	// Feedback is optional and so is the body itself.
	var req structs.RequestChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.RequestChanges(ctx, principal(ctx), c.Param("task_id"), req.Feedback)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) approveTask(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.ApproveTask(ctx, principal(ctx), c.Param("task_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) assignTask(c *gin.Context) {
	h.replaceAssignees(c, h.svc.AssignTask)
}

func (h *Handler) reassignTask(c *gin.Context) {
	h.replaceAssignees(c, h.svc.ReassignTask)
}

func (h *Handler) replaceAssignees(c *gin.Context, op func(context.Context, structs.Principal, string, []string) (*structs.Task, error)) {
	var req structs.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	task, err := op(ctx, principal(ctx), c.Param("task_id"), req.AssignedTo)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) unassignTask(c *gin.Context) {
	var req structs.UnassignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.UnassignTask(ctx, principal(ctx), c.Param("task_id"), req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) getComments(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	comments, err := h.svc.GetComments(ctx, principal(ctx), c.Param("task_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, comments)
}

func (h *Handler) addComment(c *gin.Context) {
	var req structs.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.AddComment(ctx, principal(ctx), c.Param("task_id"), req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) deleteComment(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	task, err := h.svc.DeleteComment(ctx, principal(ctx), c.Param("task_id"), c.Param("comment_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, task)
}

func (h *Handler) getActivityLogs(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	logs, err := h.svc.GetActivityLogs(ctx, principal(ctx), c.Param("task_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, logs)
}

func (h *Handler) listTasks(c *gin.Context) {
	var params structs.ListTasksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	result, err := h.svc.ListTasks(ctx, principal(ctx), &params)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, result)
}

func (h *Handler) viewTasks(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	p := principal(ctx)

	var (
		tasks []structs.Task
		err   error
	)
	switch c.Param("view") {
	case "not-started":
		tasks, err = h.svc.NotStartedTasks(ctx, p)
	case "in-progress":
		tasks, err = h.svc.InProgressTasks(ctx, p)
	case "review":
		tasks, err = h.svc.ReviewTasks(ctx, p)
	case "completed":
		tasks, err = h.svc.CompletedTasks(ctx, p)
	case "assigned-to-me":
		tasks, err = h.svc.AssignedToMe(ctx, p)
	case "assigned-by-me":
		tasks, err = h.svc.AssignedByMe(ctx, p)
	default:
		resp.Fail(c.Writer, resp.NotFound("unknown task view"))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, tasks)
}

func (h *Handler) allActivity(c *gin.Context) {
	var params structs.ActivityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	entries, err := h.svc.AllActivity(ctx, principal(ctx), &params)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, entries)
}

func (h *Handler) dashboardStats(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	stats, err := h.svc.DashboardStats(ctx, principal(ctx))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, stats)
}

func (h *Handler) overdueTasks(c *gin.Context) {
	ctx := ctxutil.FromGinContext(c)
	tasks, err := h.svc.OverdueTasks(ctx, principal(ctx))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, tasks)
}

func (h *Handler) upcomingTasks(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		resp.Fail(c.Writer, resp.BadRequest("days must be an integer"))
		return
	}

	ctx := ctxutil.FromGinContext(c)
	tasks, err := h.svc.UpcomingTasks(ctx, principal(ctx), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp.Success(c.Writer, tasks)
}
