package repository

import (
	"context"
	"errors"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByGithubID(ctx context.Context, githubID string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
}

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	Save(ctx context.Context, problem *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Problem, error)
	FindByPostedBy(ctx context.Context, userID string) ([]model.Problem, error)
	FindAll(ctx context.Context) ([]model.Problem, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type SolutionRepository interface {
	Create(ctx context.Context, solution *model.Solution) error
	Save(ctx context.Context, solution *model.Solution) error
	FindByID(ctx context.Context, id string) (*model.Solution, error)
	FindByProblemID(ctx context.Context, problemID string) ([]model.Solution, error)
	FindBySubmittedBy(ctx context.Context, userID string) ([]model.Solution, error)
	// UnacceptOthers clears isAccepted on every solution of the problem except
	// keepID and returns how many were changed.
	UnacceptOthers(ctx context.Context, problemID, keepID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByProblemID(ctx context.Context, problemID string) error
	// TallyBetween groups solutions created in [start, end] by submitter.
	TallyBetween(ctx context.Context, start, end time.Time) ([]model.SolutionTally, error)
}

type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	FindByID(ctx context.Context, id string) (*model.Certificate, error)
	FindActiveByUserID(ctx context.Context, userID string) (*model.Certificate, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Certificate, error)
}

// Repositories bundles one implementation of every store.
type Repositories struct {
	Users        UserRepository
	Problems     ProblemRepository
	Solutions    SolutionRepository
	Certificates CertificateRepository
}

func NewRepository(client *mongo.Client, dbName string) Repositories {
	db := client.Database(dbName)
	return Repositories{
		Users:        &UserRepo{collection: db.Collection("users")},
		Problems:     &ProblemRepo{collection: db.Collection("problems")},
		Solutions:    &SolutionRepo{collection: db.Collection("solutions")},
		Certificates: &CertificateRepo{collection: db.Collection("certificates")},
	}
}

// EnsureIndexes creates the indexes the queries above rely on.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "githubId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"problems": {
			{Keys: bson.D{{Key: "postedBy", Value: 1}}},
		},
		"solutions": {
			{Keys: bson.D{{Key: "problemId", Value: 1}}},
			{Keys: bson.D{{Key: "submittedBy", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
		"certificates": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return apperr.Internal(err, "failed to create indexes on %s", coll)
		}
	}
	return nil
}

func parseID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid("invalid %s ID: %s", kind, id)
	}
	return oid, nil
}

func parseIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, kind, id string) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("%s not found with ID: %s", kind, id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load %s %s", kind, id)
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, apperr.Internal(err, "failed to query %s", coll.Name())
	}
	defer cursor.Close(ctx)
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Internal(err, "failed to decode %s", coll.Name())
	}
	return out, nil
}

func replaceOne(ctx context.Context, coll *mongo.Collection, id any, doc any, kind string) error {
	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return apperr.Internal(err, "failed to save %s", kind)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("%s not found", kind)
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}
