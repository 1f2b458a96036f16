package repository

import (
	"context"
	"errors"

	"github.com/examhub-dev/examhub/logging/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const userCollection = "users"

// User is the directory record for an account referenced by tasks.
type User struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Role  string `bson:"role" json:"role"`
}

// UserRepository resolves user ids to directory records.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	// FindNamesByIDs resolves every id to a display name. Any unknown id
	// fails the whole lookup with ErrUserNotFound.
	FindNamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type userRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *mongo.Database, log *logger.Logger) UserRepository {
	return &userRepository{coll: db.Collection(userCollection), log: log}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	names := make(map[string]string, len(ids))
	for cur.Next(ctx) {
		var user User
		if err := cur.Decode(&user); err != nil {
			return nil, err
		}
		names[user.ID] = user.Name
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, ErrUserNotFound
		}
	}
	return names, nil
}
