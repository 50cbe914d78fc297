package repository

import (
	"context"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SolutionRepo struct {
	collection *mongo.Collection
}

func (r *SolutionRepo) Create(ctx context.Context, solution *model.Solution) error {
	if solution.ID.IsZero() {
		solution.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, solution); err != nil {
		return apperr.Internal(err, "failed to create solution")
	}
	return nil
}

func (r *SolutionRepo) Save(ctx context.Context, solution *model.Solution) error {
	return replaceOne(ctx, r.collection, solution.ID, solution, "solution")
}

func (r *SolutionRepo) FindByID(ctx context.Context, id string) (*model.Solution, error) {
	oid, err := parseID("solution", id)
	if err != nil {
		return nil, err
	}
	return findOne[model.Solution](ctx, r.collection, bson.M{"_id": oid}, "solution", id)
}

func (r *SolutionRepo) FindByProblemID(ctx context.Context, problemID string) ([]model.Solution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isAccepted", Value: -1}, {Key: "upvoteCount", Value: -1}, {Key: "createdAt", Value: 1}})
	return findMany[model.Solution](ctx, r.collection, bson.M{"problemId": problemID}, opts)
}

func (r *SolutionRepo) FindBySubmittedBy(ctx context.Context, userID string) ([]model.Solution, error) {
	return findMany[model.Solution](ctx, r.collection, bson.M{"submittedBy": userID}, newestFirst())
}

func (r *SolutionRepo) UnacceptOthers(ctx context.Context, problemID, keepID string) (int64, error) {
	filter := bson.M{"problemId": problemID, "isAccepted": true}
	if oid, err := primitive.ObjectIDFromHex(keepID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	update := bson.M{"$set": bson.M{"isAccepted": false, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, apperr.Internal(err, "failed to unaccept solutions of problem %s", problemID)
	}
	return result.ModifiedCount, nil
}

func (r *SolutionRepo) Delete(ctx context.Context, id string) error {
	oid, err := parseID("solution", id)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.Internal(err, "failed to delete solution")
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("solution not found with ID: %s", id)
	}
	return nil
}

func (r *SolutionRepo) DeleteByProblemID(ctx context.Context, problemID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"problemId": problemID}); err != nil {
		return apperr.Internal(err, "failed to delete solutions of problem %s", problemID)
	}
	return nil
}

func (r *SolutionRepo) TallyBetween(ctx context.Context, start, end time.Time) ([]model.SolutionTally, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$submittedBy",
			"solutionCount": bson.M{"$sum": 1},
			"acceptedCount": bson.M{"$sum": bson.M{"$cond": bson.A{"$isAccepted", 1, 0}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Internal(err, "failed to aggregate solutions")
	}
	defer cursor.Close(ctx)
	tallies := []model.SolutionTally{}
	if err := cursor.All(ctx, &tallies); err != nil {
		return nil, apperr.Internal(err, "failed to decode solution tallies")
	}
	return tallies, nil
}
