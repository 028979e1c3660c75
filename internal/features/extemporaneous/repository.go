package extemporaneous

import (
	"context"
	"fmt"

	"go-negotiation/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ExtemporaneousRepository interface {
	Create(ctx context.Context, e *ExtemporaneousNegotiation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*ExtemporaneousNegotiation, error)
	Update(ctx context.Context, e *ExtemporaneousNegotiation) error
	List(ctx context.Context, filter ListFilter) ([]ExtemporaneousNegotiation, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type ExtemporaneousRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewExtemporaneousRepository(mongodb *database.MongodbDB) ExtemporaneousRepository {
	return &ExtemporaneousRepositoryImpl{
		Collection: mongodb.DB.Collection("extemporaneous_negotiations"),
	}
}

func (r *ExtemporaneousRepositoryImpl) Create(ctx context.Context, e *ExtemporaneousNegotiation) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if _, err := r.Collection.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert extemporaneous negotiation: %w", err)
	}
	return nil
}

func (r *ExtemporaneousRepositoryImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*ExtemporaneousNegotiation, error) {
	return database.FindByID[ExtemporaneousNegotiation](ctx, r.Collection, id, "extemporaneous negotiation")
}

func (r *ExtemporaneousRepositoryImpl) Update(ctx context.Context, e *ExtemporaneousNegotiation) error {
	expected := e.Version
	e.Version = expected + 1
	if err := database.ReplaceVersioned(ctx, r.Collection, e.ID, expected, e); err != nil {
		e.Version = expected
		return err
	}
	return nil
}

func (r *ExtemporaneousRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]ExtemporaneousNegotiation, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.NegotiableID != "" {
		query["negotiable.id"] = filter.NegotiableID
	}
	if filter.Urgency != "" {
		query["urgency_level"] = filter.Urgency
	}
	return database.FindPage[ExtemporaneousNegotiation](ctx, r.Collection, query, filter.Page)
}

func (r *ExtemporaneousRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "urgency_level", Value: 1}}},
		{Keys: bson.D{{Key: "negotiable.id", Value: 1}}},
	})
	return err
}
