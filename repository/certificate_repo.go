package repository

import (
	"context"

	"opengalaxy/apperr"
	"opengalaxy/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type CertificateRepo struct {
	collection *mongo.Collection
}

func (r *CertificateRepo) Create(ctx context.Context, cert *model.Certificate) error {
	if cert.ID == "" {
		return apperr.Invalid("certificate ID is required")
	}
	if _, err := r.collection.InsertOne(ctx, cert); err != nil {
		return apperr.Internal(err, "failed to create certificate")
	}
	return nil
}

func (r *CertificateRepo) FindByID(ctx context.Context, id string) (*model.Certificate, error) {
	return findOne[model.Certificate](ctx, r.collection, bson.M{"_id": id}, "certificate", id)
}

func (r *CertificateRepo) FindActiveByUserID(ctx context.Context, userID string) (*model.Certificate, error) {
	return findOne[model.Certificate](ctx, r.collection, bson.M{"userId": userID, "isActive": true}, "active certificate for user", userID)
}

func (r *CertificateRepo) FindByUserID(ctx context.Context, userID string) ([]model.Certificate, error) {
	return findMany[model.Certificate](ctx, r.collection, bson.M{"userId": userID})
}
