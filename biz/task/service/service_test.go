package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/examhub-dev/examhub/biz/task/activity"
	"github.com/examhub-dev/examhub/biz/task/structs"
	"github.com/examhub-dev/examhub/data/repository"
	"github.com/examhub-dev/examhub/logging/logger"
)

var (
	alice = structs.Principal{ID: "u-alice", Name: "Alice", Role: "manager"}
	bob   = structs.Principal{ID: "u-bob", Name: "Bob", Role: "member"}
	eve   = structs.Principal{ID: "u-eve", Name: "Eve", Role: "member"}
)

func cloneTask(t *structs.Task) *structs.Task {
	cp := *t
	cp.AssignedTo = append([]string(nil), t.AssignedTo...)
	cp.Comments = append([]structs.Comment(nil), t.Comments...)
	cp.ActivityLogs = append([]structs.ActivityLog(nil), t.ActivityLogs...)
	if t.CompletionDate != nil {
		d := *t.CompletionDate
		cp.CompletionDate = &d
	}
	return &cp
}

type fakeTaskRepo struct {
	tasks map[string]*structs.Task

	// when positive, the next Update calls fail with a version conflict.
	failUpdates int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*structs.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *structs.Task) error {
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*structs.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *structs.Task) error {
	if r.failUpdates > 0 {
		r.failUpdates--
		return repository.ErrVersionConflict
	}
	stored, ok := r.tasks[task.ID]
	if !ok {
		return repository.ErrTaskNotFound
	}
	if stored.Version != task.Version {
		return repository.ErrVersionConflict
	}
	task.Version++
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) all() []structs.Task {
	out := make([]structs.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeTaskRepo) FindMine(_ context.Context, uid, status string) ([]structs.Task, error) {
	var out []structs.Task
	for _, t := range r.all() {
		if t.Status == status && t.CanModify(uid) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindCompletedFor(_ context.Context, uid string) ([]structs.Task, error) {
	var out []structs.Task
	for _, t := range r.all() {
		if t.Status != structs.StatusCompleted {
			continue
		}
		if t.IsAssignee(uid) || (t.IsCreator(uid) && len(t.AssignedTo) == 0) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindAssignedToMe(_ context.Context, uid string) ([]structs.Task, error) {
	var out []structs.Task
	for _, t := range r.all() {
		if t.IsAssignee(uid) && !t.IsCreator(uid) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindAssignedByMe(_ context.Context, uid string) ([]structs.Task, error) {
	var out []structs.Task
	for _, t := range r.all() {
		if t.IsCreator(uid) && len(t.AssignedTo) > 0 {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindOverdue(_ context.Context, uid string, now time.Time) ([]structs.Task, error) {
	var out []structs.Task
	for _, t := range r.all() {
		if t.CanModify(uid) && t.Status != structs.StatusCompleted && t.DueDate.Before(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) FindUpcoming(_ context.Context, uid string, from, to time.Time) ([]structs.Task, error) {
	var out []structs.Task
	for _, t := range r.all() {
		if t.CanModify(uid) && t.Status != structs.StatusCompleted &&
			!t.DueDate.Before(from) && !t.DueDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) List(_ context.Context, params *structs.ListTasksParams, before *time.Time, limit int) ([]structs.Task, int, error) {
	var matched []structs.Task
	for _, t := range r.all() {
		if params.Status != "" && t.Status != params.Status {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(params.Search)) {
			continue
		}
		matched = append(matched, t)
	}
	total := len(matched)

	var page []structs.Task
	for _, t := range matched {
		if before != nil && !t.CreatedAt.Before(*before) {
			continue
		}
		page = append(page, t)
		if len(page) == limit {
			break
		}
	}
	return page, total, nil
}

func (r *fakeTaskRepo) FindForActivity(_ context.Context, uid string) ([]structs.Task, error) {
	var out []structs.Task
	for _, t := range r.all() {
		if t.CanModify(uid) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Count(_ context.Context, uid string) (int64, error) {
	var n int64
	for _, t := range r.all() {
		if t.CanModify(uid) {
			n++
		}
	}
	return n, nil
}

func (r *fakeTaskRepo) CountsByStatus(_ context.Context, uid string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, t := range r.all() {
		if t.CanModify(uid) {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (r *fakeTaskRepo) CountsByPriority(_ context.Context, uid string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, t := range r.all() {
		if t.CanModify(uid) {
			counts[t.Priority]++
		}
	}
	return counts, nil
}

func (r *fakeTaskRepo) CountOverdue(ctx context.Context, uid string, now time.Time) (int64, error) {
	tasks, _ := r.FindOverdue(ctx, uid, now)
	return int64(len(tasks)), nil
}

func (r *fakeTaskRepo) AvgCompletionDays(_ context.Context, uid string) (float64, error) {
	var sum float64
	var n int
	for _, t := range r.all() {
		if t.CanModify(uid) && t.Status == structs.StatusCompleted && t.CompletionDate != nil {
			sum += t.CompletionDate.Sub(t.CreatedAt).Hours() / 24
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

type fakeUserRepo struct {
	names map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{names: map[string]string{
		alice.ID: alice.Name,
		bob.ID:   bob.Name,
		eve.ID:   eve.Name,
	}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	name, ok := r.names[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &repository.User{ID: id, Name: name}, nil
}

func (r *fakeUserRepo) FindNamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		name, ok := r.names[id]
		if !ok {
			return nil, repository.ErrUserNotFound
		}
		out[id] = name
	}
	return out, nil
}

func newTestService() (*Service, *fakeTaskRepo) {
	repo := newFakeTaskRepo()
	return New(repo, newFakeUserRepo(), nil, logger.StdLogger()), repo
}

func createTask(t *testing.T, svc *Service, req *structs.CreateTaskRequest) *structs.Task {
	t.Helper()
	if req == nil {
		due := time.Now().AddDate(0, 0, 7)
		req = &structs.CreateTaskRequest{
			Title:     "Audit Q3",
			RelatedTo: "finance",
			DueDate:   &due,
		}
	}
	task, err := svc.CreateTask(context.Background(), alice, req)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func actions(logs []structs.ActivityLog) []string {
	out := make([]string, len(logs))
	for i, entry := range logs {
		out[i] = entry.Action
	}
	return out
}

func sameActions(got []structs.ActivityLog, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, entry := range got {
		if entry.Action != want[i] {
			return false
		}
	}
	return true
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, _ := newTestService()
	task := createTask(t, svc, nil)

	if task.Status != structs.StatusNotStarted {
		t.Errorf("status = %q, want %q", task.Status, structs.StatusNotStarted)
	}
	if task.Priority != structs.PriorityMedium {
		t.Errorf("priority = %q, want default medium", task.Priority)
	}
	if task.CurrentProgress != 0 {
		t.Errorf("progress = %d, want 0", task.CurrentProgress)
	}
	if !sameActions(task.ActivityLogs, activity.ActionTaskCreated) {
		t.Errorf("log actions = %v", actions(task.ActivityLogs))
	}
}

func TestCreateTaskWithAssignees(t *testing.T) {
	svc, _ := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Prep material",
		RelatedTo:  "learning-and-development",
		DueDate:    &due,
		AssignedTo: []string{bob.ID, eve.ID},
	})

	if !sameActions(task.ActivityLogs, activity.ActionTaskCreated, activity.ActionTaskAssigned) {
		t.Fatalf("log actions = %v", actions(task.ActivityLogs))
	}
	if msg := task.ActivityLogs[1].Message; msg != "Task assigned to Bob, Eve by Alice" {
		t.Errorf("assign message = %q", msg)
	}
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	svc, repo := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	_, err := svc.CreateTask(context.Background(), alice, &structs.CreateTaskRequest{
		Title:      "Broken",
		RelatedTo:  "tech",
		DueDate:    &due,
		AssignedTo: []string{"u-ghost"},
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if len(repo.tasks) != 0 {
		t.Error("task persisted despite user lookup failure")
	}
}

func TestValidationErrorMessages(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	task := createTask(t, svc, nil)

	var ve *ValidationError

	_, err := svc.CreateTask(ctx, alice, &structs.CreateTaskRequest{Title: "No date", RelatedTo: "tech"})
	if !errors.As(err, &ve) || ve.Error() != "due_date: required" {
		t.Errorf("missing due date err = %v, want due_date: required", err)
	}

	_, err = svc.AssignTask(ctx, alice, task.ID, nil)
	if !errors.As(err, &ve) || ve.Error() != "assigned_to: empty" {
		t.Errorf("empty assignees err = %v, want assigned_to: empty", err)
	}

	// Whitespace-only comments are rejected like empty ones.
	_, err = svc.AddComment(ctx, alice, task.ID, "   ")
	if !errors.As(err, &ve) || ve.Error() != "comment: empty" {
		t.Errorf("blank comment err = %v, want comment: empty", err)
	}
}

func TestUpdateProgressAutoTransition(t *testing.T) {
	svc, _ := newTestService()
	task := createTask(t, svc, nil)
	baseline := len(task.ActivityLogs)

	updated, err := svc.UpdateProgress(context.Background(), alice, task.ID, 40)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	if updated.Status != structs.StatusInProgress {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}
	if updated.CurrentProgress != 40 {
		t.Errorf("progress = %d, want 40", updated.CurrentProgress)
	}

	added := updated.ActivityLogs[baseline:]
	if !sameActions(added, activity.ActionStatusChanged, activity.ActionProgressUpdated) {
		t.Fatalf("new log actions = %v, want status_changed then progress_updated", actions(added))
	}
}

func TestUpdateProgressNoAutoTransitionWhenStarted(t *testing.T) {
	svc, _ := newTestService()
	task := createTask(t, svc, nil)

	if _, err := svc.UpdateProgress(context.Background(), alice, task.ID, 20); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	updated, err := svc.UpdateProgress(context.Background(), alice, task.ID, 60)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	last := updated.ActivityLogs[len(updated.ActivityLogs)-1]
	if last.Action != activity.ActionProgressUpdated {
		t.Errorf("last action = %q, want progress_updated only", last.Action)
	}
	count := 0
	for _, entry := range updated.ActivityLogs {
		if entry.Action == activity.ActionStatusChanged {
			count++
		}
	}
	if count != 1 {
		t.Errorf("status_changed entries = %d, want 1", count)
	}
}

func TestUpdateProgressForbidden(t *testing.T) {
	svc, repo := newTestService()
	task := createTask(t, svc, nil)

	_, err := svc.UpdateProgress(context.Background(), eve, task.ID, 50)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	stored := repo.tasks[task.ID]
	if stored.CurrentProgress != 0 || stored.Status != structs.StatusNotStarted {
		t.Error("task state changed despite Forbidden")
	}
	if len(stored.ActivityLogs) != len(task.ActivityLogs) {
		t.Error("activity log grew despite Forbidden")
	}
}

func TestUpdateProgressOutOfRange(t *testing.T) {
	svc, _ := newTestService()
	task := createTask(t, svc, nil)

	var ve *ValidationError
	if _, err := svc.UpdateProgress(context.Background(), alice, task.ID, 101); !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestSubmitForReviewAssigneeOnly(t *testing.T) {
	svc, _ := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Draft report",
		RelatedTo:  "research-and-development",
		DueDate:    &due,
		AssignedTo: []string{bob.ID},
	})

	// The creator cannot push their own task into review.
	if _, err := svc.SubmitForReview(context.Background(), alice, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("creator submit err = %v, want ErrForbidden", err)
	}

	updated, err := svc.SubmitForReview(context.Background(), bob, task.ID)
	if err != nil {
		t.Fatalf("SubmitForReview: %v", err)
	}
	if updated.Status != structs.StatusReview {
		t.Errorf("status = %q, want review", updated.Status)
	}
	last := updated.ActivityLogs[len(updated.ActivityLogs)-1]
	if last.Action != activity.ActionSubmittedForReview {
		t.Errorf("last action = %q", last.Action)
	}
}

func TestSubmitForReviewCompletedInvalidState(t *testing.T) {
	svc, repo := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Done already",
		RelatedTo:  "administration",
		DueDate:    &due,
		AssignedTo: []string{bob.ID},
	})
	if _, err := svc.ApproveTask(context.Background(), alice, task.ID); err != nil {
		t.Fatalf("ApproveTask: %v", err)
	}
	before := cloneTask(repo.tasks[task.ID])

	_, err := svc.SubmitForReview(context.Background(), bob, task.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}

	after := repo.tasks[task.ID]
	if after.Status != before.Status || len(after.ActivityLogs) != len(before.ActivityLogs) {
		t.Error("task changed despite InvalidState")
	}
}

func TestRequestChanges(t *testing.T) {
	svc, _ := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Slides",
		RelatedTo:  "marketing",
		DueDate:    &due,
		AssignedTo: []string{bob.ID},
	})

	// Not in review yet.
	if _, err := svc.RequestChanges(context.Background(), alice, task.ID, "typo"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}

	if _, err := svc.SubmitForReview(context.Background(), bob, task.ID); err != nil {
		t.Fatalf("SubmitForReview: %v", err)
	}

	// Only the creator reviews.
	if _, err := svc.RequestChanges(context.Background(), bob, task.ID, "typo"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	updated, err := svc.RequestChanges(context.Background(), alice, task.ID, "fix the intro")
	if err != nil {
		t.Fatalf("RequestChanges: %v", err)
	}
	if updated.Status != structs.StatusInProgress {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}
	if len(updated.Comments) != 1 || updated.Comments[0].Text != "fix the intro" || updated.Comments[0].Author != alice.ID {
		t.Errorf("feedback comment = %+v", updated.Comments)
	}
	last := updated.ActivityLogs[len(updated.ActivityLogs)-1]
	if last.Action != activity.ActionChangesRequested {
		t.Errorf("last action = %q", last.Action)
	}
}

func TestRequestChangesWithoutFeedback(t *testing.T) {
	svc, _ := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Budget",
		RelatedTo:  "finance",
		DueDate:    &due,
		AssignedTo: []string{bob.ID},
	})
	if _, err := svc.SubmitForReview(context.Background(), bob, task.ID); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.RequestChanges(context.Background(), alice, task.ID, "")
	if err != nil {
		t.Fatalf("RequestChanges: %v", err)
	}
	if len(updated.Comments) != 0 {
		t.Errorf("comments = %d, want none for empty feedback", len(updated.Comments))
	}
}

func TestRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	task := createTask(t, svc, nil)

	if _, err := svc.AssignTask(context.Background(), alice, task.ID, []string{bob.ID}); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if _, err := svc.SubmitForReview(context.Background(), bob, task.ID); err != nil {
		t.Fatalf("SubmitForReview: %v", err)
	}

	mid, err := svc.GetTask(context.Background(), alice, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if mid.Status != structs.StatusReview {
		t.Fatalf("status after submit = %q, want review", mid.Status)
	}

	final, err := svc.ApproveTask(context.Background(), alice, task.ID)
	if err != nil {
		t.Fatalf("ApproveTask: %v", err)
	}

	if final.Status != structs.StatusCompleted {
		t.Errorf("status = %q, want completed", final.Status)
	}
	if final.CurrentProgress != 100 {
		t.Errorf("progress = %d, want 100", final.CurrentProgress)
	}
	if final.CompletionDate == nil {
		t.Error("completion date not set")
	}
	if !sameActions(final.ActivityLogs,
		activity.ActionTaskCreated,
		activity.ActionTaskAssigned,
		activity.ActionSubmittedForReview,
		activity.ActionStatusChanged,
		activity.ActionTaskCompleted,
	) {
		t.Errorf("log actions = %v", actions(final.ActivityLogs))
	}
}

func TestApproveTaskShortCircuit(t *testing.T) {
	svc, _ := newTestService()
	task := createTask(t, svc, nil)

	final, err := svc.ApproveTask(context.Background(), alice, task.ID)
	if err != nil {
		t.Fatalf("ApproveTask: %v", err)
	}
	if final.Status != structs.StatusCompleted || final.CurrentProgress != 100 {
		t.Error("short-circuit approval did not complete the task")
	}

	if _, err := svc.ApproveTask(context.Background(), alice, task.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second approve err = %v, want ErrInvalidState", err)
	}
}

func TestCommentLifecycle(t *testing.T) {
	svc, repo := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Notes",
		RelatedTo:  "others",
		DueDate:    &due,
		AssignedTo: []string{bob.ID},
	})

	if _, err := svc.AddComment(context.Background(), eve, task.ID, "drive-by"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider comment err = %v, want ErrForbidden", err)
	}

	updated, err := svc.AddComment(context.Background(), bob, task.ID, "halfway there")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(updated.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(updated.Comments))
	}
	last := updated.ActivityLogs[len(updated.ActivityLogs)-1]
	if last.Action != activity.ActionCommentAdded {
		t.Errorf("last action = %q", last.Action)
	}
	if strings.Contains(last.Message, "halfway there") {
		t.Error("audit message repeats comment text")
	}

	commentID := updated.Comments[0].ID
	logCount := len(updated.ActivityLogs)

	// Eve is neither author nor creator.
	if _, err := svc.DeleteComment(context.Background(), eve, task.ID, commentID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if len(repo.tasks[task.ID].Comments) != 1 {
		t.Error("comment removed despite Forbidden")
	}

	// The creator may delete any comment; removal is not audited.
	after, err := svc.DeleteComment(context.Background(), alice, task.ID, commentID)
	if err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if len(after.Comments) != 0 {
		t.Error("comment not removed")
	}
	if len(after.ActivityLogs) != logCount {
		t.Error("comment removal appended an activity entry")
	}

	if _, err := svc.DeleteComment(context.Background(), alice, task.ID, commentID); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("err = %v, want ErrCommentNotFound", err)
	}
}

func TestReassignAndUnassign(t *testing.T) {
	svc, _ := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Rotate",
		RelatedTo:  "tech",
		DueDate:    &due,
		AssignedTo: []string{bob.ID},
	})

	updated, err := svc.ReassignTask(context.Background(), alice, task.ID, []string{bob.ID, eve.ID})
	if err != nil {
		t.Fatalf("ReassignTask: %v", err)
	}
	if len(updated.AssignedTo) != 2 {
		t.Fatalf("assignees = %v", updated.AssignedTo)
	}
	last := updated.ActivityLogs[len(updated.ActivityLogs)-1]
	if last.Action != activity.ActionTaskReassigned {
		t.Errorf("last action = %q", last.Action)
	}

	updated, err = svc.UnassignTask(context.Background(), alice, task.ID, bob.ID)
	if err != nil {
		t.Fatalf("UnassignTask: %v", err)
	}
	if len(updated.AssignedTo) != 1 || updated.AssignedTo[0] != eve.ID {
		t.Errorf("assignees after unassign = %v", updated.AssignedTo)
	}

	var ve *ValidationError
	if _, err := svc.UnassignTask(context.Background(), alice, task.ID, bob.ID); !errors.As(err, &ve) {
		t.Errorf("unassigning absent user err = %v, want ValidationError", err)
	}
}

func TestUpdateTaskChangeTracking(t *testing.T) {
	svc, _ := newTestService()
	task := createTask(t, svc, nil)
	baseline := len(task.ActivityLogs)

	high := "high"
	newDue := time.Now().AddDate(0, 0, 14).Truncate(time.Second)
	title := "Audit Q3 and Q4"
	updated, err := svc.UpdateTask(context.Background(), alice, task.ID, &structs.UpdateTaskRequest{
		Title:    &title,
		Priority: &high,
		DueDate:  &newDue,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if updated.Title != title || updated.Priority != "high" || !updated.DueDate.Equal(newDue) {
		t.Error("fields not applied")
	}
	added := updated.ActivityLogs[baseline:]
	if !sameActions(added,
		activity.ActionPriorityChanged,
		activity.ActionDueDateChanged,
		activity.ActionTaskUpdated,
	) {
		t.Errorf("new log actions = %v", actions(added))
	}

	// A no-op update records nothing.
	same := updated.Title
	again, err := svc.UpdateTask(context.Background(), alice, task.ID, &structs.UpdateTaskRequest{Title: &same})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(again.ActivityLogs) != len(updated.ActivityLogs) {
		t.Error("no-op update appended activity entries")
	}

	if _, err := svc.UpdateTask(context.Background(), bob, task.ID, &structs.UpdateTaskRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-creator update err = %v, want ErrForbidden", err)
	}
}

func TestDeleteTask(t *testing.T) {
	svc, repo := newTestService()
	task := createTask(t, svc, nil)

	if err := svc.DeleteTask(context.Background(), bob, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-creator delete err = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteTask(context.Background(), alice, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if len(repo.tasks) != 0 {
		t.Error("task still present after delete")
	}
	if err := svc.DeleteTask(context.Background(), alice, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestUpdateRetriesThenConflict(t *testing.T) {
	svc, repo := newTestService()
	task := createTask(t, svc, nil)

	// Two lost races are absorbed by the retry loop.
	repo.failUpdates = 2
	if _, err := svc.UpdateProgress(context.Background(), alice, task.ID, 30); err != nil {
		t.Fatalf("UpdateProgress after transient conflicts: %v", err)
	}

	// Exhausting every retry surfaces Conflict.
	repo.failUpdates = maxUpdateRetries
	if _, err := svc.UpdateProgress(context.Background(), alice, task.ID, 70); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestTaskNotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.GetTask(context.Background(), alice, "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask err = %v, want ErrTaskNotFound", err)
	}
	if _, err := svc.UpdateProgress(context.Background(), alice, "missing", 10); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("UpdateProgress err = %v, want ErrTaskNotFound", err)
	}
}

func TestActivityLogMonotonic(t *testing.T) {
	svc, _ := newTestService()
	due := time.Now().AddDate(0, 0, 3)
	task := createTask(t, svc, &structs.CreateTaskRequest{
		Title:      "Grow only",
		RelatedTo:  "tech",
		DueDate:    &due,
		AssignedTo: []string{bob.ID},
	})

	prev := len(task.ActivityLogs)
	step := func(name string, fn func() (*structs.Task, error)) {
		t.Helper()
		updated, err := fn()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(updated.ActivityLogs) < prev {
			t.Fatalf("%s shrank the activity log", name)
		}
		prev = len(updated.ActivityLogs)
	}

	ctx := context.Background()
	step("UpdateProgress", func() (*structs.Task, error) { return svc.UpdateProgress(ctx, bob, task.ID, 50) })
	step("AddComment", func() (*structs.Task, error) { return svc.AddComment(ctx, bob, task.ID, "wip") })
	step("SubmitForReview", func() (*structs.Task, error) { return svc.SubmitForReview(ctx, bob, task.ID) })
	step("RequestChanges", func() (*structs.Task, error) { return svc.RequestChanges(ctx, alice, task.ID, "more detail") })
	step("SubmitForReview", func() (*structs.Task, error) { return svc.SubmitForReview(ctx, bob, task.ID) })
	step("ApproveTask", func() (*structs.Task, error) { return svc.ApproveTask(ctx, alice, task.ID) })
}
