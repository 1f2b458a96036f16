// Package repository provides MongoDB-backed persistence for the task
// workflow engine.
package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/examhub-dev/examhub/biz/task/structs"
	"github.com/examhub-dev/examhub/logging/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const taskCollection = "tasks"

// TaskRepository defines the persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *structs.Task) error
	FindByID(ctx context.Context, id string) (*structs.Task, error)
	// Update replaces the stored document only when its version still
	// matches task.Version, then bumps the version. A lost race returns
	// ErrVersionConflict.
	Update(ctx context.Context, task *structs.Task) error
	Delete(ctx context.Context, id string) error

	FindMine(ctx context.Context, uid, status string) ([]structs.Task, error)
	FindCompletedFor(ctx context.Context, uid string) ([]structs.Task, error)
	FindAssignedToMe(ctx context.Context, uid string) ([]structs.Task, error)
	FindAssignedByMe(ctx context.Context, uid string) ([]structs.Task, error)
	FindOverdue(ctx context.Context, uid string, now time.Time) ([]structs.Task, error)
	FindUpcoming(ctx context.Context, uid string, from, to time.Time) ([]structs.Task, error)

	List(ctx context.Context, params *structs.ListTasksParams, before *time.Time, limit int) ([]structs.Task, int, error)
	FindForActivity(ctx context.Context, uid string) ([]structs.Task, error)

	Count(ctx context.Context, uid string) (int64, error)
	CountsByStatus(ctx context.Context, uid string) (map[string]int64, error)
	CountsByPriority(ctx context.Context, uid string) (map[string]int64, error)
	CountOverdue(ctx context.Context, uid string, now time.Time) (int64, error)
	AvgCompletionDays(ctx context.Context, uid string) (float64, error)
}

type taskRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewTaskRepository creates a task repository and ensures its indexes.
func NewTaskRepository(db *mongo.Database, log *logger.Logger) TaskRepository {
	r := &taskRepository{coll: db.Collection(taskCollection), log: log}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.ensureIndexes(ctx); err != nil {
		log.Warn(ctx, "failed to create task indexes", "error", err)
	}
	return r
}

func (r *taskRepository) ensureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "related_to", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, models)
	return err
}

func (r *taskRepository) Create(ctx context.Context, task *structs.Task) error {
	_, err := r.coll.InsertOne(ctx, task)
	return err
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*structs.Task, error) {
	var task structs.Task
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *structs.Task) error {
	expected := task.Version
	task.Version = expected + 1
	task.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": task.ID, "version": expected}, task)
	if err != nil {
		task.Version = expected
		return err
	}
	if res.MatchedCount == 0 {
		task.Version = expected
		// Distinguish a missing document from a stale version.
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": task.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTaskNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// visibleTo matches tasks the user created or is assigned to.
func visibleTo(uid string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"created_by": uid},
		bson.M{"assigned_to": uid},
	}}
}

func (r *taskRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]structs.Task, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []structs.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindMine(ctx context.Context, uid, status string) ([]structs.Task, error) {
	filter := visibleTo(uid)
	filter["status"] = status
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) FindCompletedFor(ctx context.Context, uid string) ([]structs.Task, error) {
	filter := bson.M{
		"status": structs.StatusCompleted,
		"$or": bson.A{
			bson.M{"created_by": uid, "assigned_to": bson.M{"$size": 0}},
			bson.M{"assigned_to": uid},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "completion_date", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) FindAssignedToMe(ctx context.Context, uid string) ([]structs.Task, error) {
	filter := bson.M{
		"assigned_to": uid,
		"created_by":  bson.M{"$ne": uid},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) FindAssignedByMe(ctx context.Context, uid string) ([]structs.Task, error) {
	filter := bson.M{
		"created_by":  uid,
		"assigned_to": bson.M{"$exists": true, "$not": bson.M{"$size": 0}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) FindOverdue(ctx context.Context, uid string, now time.Time) ([]structs.Task, error) {
	filter := visibleTo(uid)
	filter["status"] = bson.M{"$ne": structs.StatusCompleted}
	filter["due_date"] = bson.M{"$lt": now}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) FindUpcoming(ctx context.Context, uid string, from, to time.Time) ([]structs.Task, error) {
	filter := visibleTo(uid)
	filter["status"] = bson.M{"$ne": structs.StatusCompleted}
	filter["due_date"] = bson.M{"$gte": from, "$lte": to}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *taskRepository) List(ctx context.Context, params *structs.ListTasksParams, before *time.Time, limit int) ([]structs.Task, int, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = params.Status
	}
	if params.Priority != "" {
		filter["priority"] = params.Priority
	}
	if params.RelatedTo != "" {
		filter["related_to"] = params.RelatedTo
	}
	if params.CreatedBy != "" {
		filter["created_by"] = params.CreatedBy
	}
	if params.Assignee != "" {
		filter["assigned_to"] = params.Assignee
	}
	if params.Search != "" {
		pattern := regexp.QuoteMeta(params.Search)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if before != nil {
		filter["created_at"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	tasks, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return tasks, int(total), nil
}

func (r *taskRepository) FindForActivity(ctx context.Context, uid string) ([]structs.Task, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "title": 1, "activity_logs": 1}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return r.find(ctx, visibleTo(uid), opts)
}

func (r *taskRepository) Count(ctx context.Context, uid string) (int64, error) {
	return r.coll.CountDocuments(ctx, visibleTo(uid))
}

func (r *taskRepository) countsBy(ctx context.Context, uid, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: visibleTo(uid)}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

func (r *taskRepository) CountsByStatus(ctx context.Context, uid string) (map[string]int64, error) {
	return r.countsBy(ctx, uid, "status")
}

func (r *taskRepository) CountsByPriority(ctx context.Context, uid string) (map[string]int64, error) {
	return r.countsBy(ctx, uid, "priority")
}

func (r *taskRepository) CountOverdue(ctx context.Context, uid string, now time.Time) (int64, error) {
	filter := visibleTo(uid)
	filter["status"] = bson.M{"$ne": structs.StatusCompleted}
	filter["due_date"] = bson.M{"$lt": now}
	return r.coll.CountDocuments(ctx, filter)
}

func (r *taskRepository) AvgCompletionDays(ctx context.Context, uid string) (float64, error) {
	match := visibleTo(uid)
	match["status"] = structs.StatusCompleted
	match["completion_date"] = bson.M{"$ne": nil}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{
			"duration": bson.M{"$subtract": bson.A{"$completion_date", "$created_at"}},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$duration"}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Avg float64 `bson:"avg"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		// duration is milliseconds
		return row.Avg / float64(24*time.Hour/time.Millisecond), nil
	}
	return 0, cur.Err()
}
