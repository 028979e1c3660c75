package scheduling

import (
	"context"
	"fmt"

	"go-negotiation/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SchedulingRepository interface {
	Create(ctx context.Context, e *SchedulingException) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*SchedulingException, error)
	Update(ctx context.Context, e *SchedulingException) error
	List(ctx context.Context, filter ListFilter) ([]SchedulingException, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type SchedulingRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSchedulingRepository(mongodb *database.MongodbDB) SchedulingRepository {
	return &SchedulingRepositoryImpl{
		Collection: mongodb.DB.Collection("scheduling_exceptions"),
	}
}

func (r *SchedulingRepositoryImpl) Create(ctx context.Context, e *SchedulingException) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if _, err := r.Collection.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert scheduling exception: %w", err)
	}
	return nil
}

func (r *SchedulingRepositoryImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*SchedulingException, error) {
	return database.FindByID[SchedulingException](ctx, r.Collection, id, "scheduling exception")
}

func (r *SchedulingRepositoryImpl) Update(ctx context.Context, e *SchedulingException) error {
	expected := e.Version
	e.Version = expected + 1
	if err := database.ReplaceVersioned(ctx, r.Collection, e.ID, expected, e); err != nil {
		e.Version = expected
		return err
	}
	return nil
}

func (r *SchedulingRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]SchedulingException, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.SolicitationID != "" {
		query["solicitation_id"] = filter.SolicitationID
	}
	if filter.ProviderID != "" {
		query["provider_id"] = filter.ProviderID
	}
	return database.FindPage[SchedulingException](ctx, r.Collection, query, filter.Page)
}

func (r *SchedulingRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "solicitation_id", Value: 1}}},
	})
	return err
}
