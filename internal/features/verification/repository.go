package verification

import (
	"context"
	"fmt"

	"go-negotiation/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type VerificationRepository interface {
	Create(ctx context.Context, v *ValueVerification) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*ValueVerification, error)
	Update(ctx context.Context, v *ValueVerification) error
	List(ctx context.Context, filter ListFilter) ([]ValueVerification, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type VerificationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewVerificationRepository(mongodb *database.MongodbDB) VerificationRepository {
	return &VerificationRepositoryImpl{
		Collection: mongodb.DB.Collection("value_verifications"),
	}
}

func (r *VerificationRepositoryImpl) Create(ctx context.Context, v *ValueVerification) error {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if _, err := r.Collection.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("insert value verification: %w", err)
	}
	return nil
}

func (r *VerificationRepositoryImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*ValueVerification, error) {
	return database.FindByID[ValueVerification](ctx, r.Collection, id, "value verification")
}

func (r *VerificationRepositoryImpl) Update(ctx context.Context, v *ValueVerification) error {
	expected := v.Version
	v.Version = expected + 1
	if err := database.ReplaceVersioned(ctx, r.Collection, v.ID, expected, v); err != nil {
		v.Version = expected
		return err
	}
	return nil
}

func (r *VerificationRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]ValueVerification, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.EntityType != "" {
		query["entity_type"] = filter.EntityType
	}
	if filter.EntityID != "" {
		query["entity_id"] = filter.EntityID
	}
	if filter.HasMismatch != nil {
		query["has_mismatch"] = *filter.HasMismatch
	}
	return database.FindPage[ValueVerification](ctx, r.Collection, query, filter.Page)
}

func (r *VerificationRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "has_mismatch", Value: 1}}},
	})
	return err
}
