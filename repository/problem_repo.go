package repository

import (
	"context"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProblemRepo struct {
	collection *mongo.Collection
}

func (r *ProblemRepo) Create(ctx context.Context, problem *model.Problem) error {
	if problem.ID.IsZero() {
		problem.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, problem); err != nil {
		return apperr.Internal(err, "failed to create problem")
	}
	return nil
}

func (r *ProblemRepo) Save(ctx context.Context, problem *model.Problem) error {
	return replaceOne(ctx, r.collection, problem.ID, problem, "problem")
}

func (r *ProblemRepo) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	oid, err := parseID("problem", id)
	if err != nil {
		return nil, err
	}
	return findOne[model.Problem](ctx, r.collection, bson.M{"_id": oid}, "problem", id)
}

func (r *ProblemRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Problem, error) {
	return findMany[model.Problem](ctx, r.collection, bson.M{"_id": bson.M{"$in": parseIDs(ids)}}, newestFirst())
}

func (r *ProblemRepo) FindByPostedBy(ctx context.Context, userID string) ([]model.Problem, error) {
	return findMany[model.Problem](ctx, r.collection, bson.M{"postedBy": userID}, newestFirst())
}

func (r *ProblemRepo) FindAll(ctx context.Context) ([]model.Problem, error) {
	return findMany[model.Problem](ctx, r.collection, bson.M{}, newestFirst())
}

func (r *ProblemRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if status != model.ProblemStatusOpen && status != model.ProblemStatusSolved {
		return apperr.Invalid("invalid status: %s", status)
	}
	oid, err := parseID("problem", id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return apperr.Internal(err, "failed to update problem status")
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("problem not found with ID: %s", id)
	}
	return nil
}

func (r *ProblemRepo) Delete(ctx context.Context, id string) error {
	oid, err := parseID("problem", id)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.Internal(err, "failed to delete problem")
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("problem not found with ID: %s", id)
	}
	return nil
}
