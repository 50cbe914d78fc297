package repository

import (
	"context"

	"opengalaxy/apperr"
	"opengalaxy/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo struct {
	collection *mongo.Collection
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.New(apperr.KindConflict, "user with GitHub ID %s already exists", user.GithubID)
		}
		return apperr.Internal(err, "failed to create user")
	}
	return nil
}

func (r *UserRepo) Save(ctx context.Context, user *model.User) error {
	return replaceOne(ctx, r.collection, user.ID, user, "user")
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := parseID("user", id)
	if err != nil {
		return nil, err
	}
	return findOne[model.User](ctx, r.collection, bson.M{"_id": oid}, "user", id)
}

func (r *UserRepo) FindByGithubID(ctx context.Context, githubID string) (*model.User, error) {
	return findOne[model.User](ctx, r.collection, bson.M{"githubId": githubID}, "user for GitHub ID", githubID)
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	return findMany[model.User](ctx, r.collection, bson.M{"_id": bson.M{"$in": parseIDs(ids)}})
}

func (r *UserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	return findMany[model.User](ctx, r.collection, bson.M{})
}
