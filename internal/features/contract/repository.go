package contract

import (
	"context"
	"errors"
	"fmt"

	"go-negotiation/internal/common/errs"
	"go-negotiation/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContractRepository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Contract, error)
	Update(ctx context.Context, c *Contract) error
	List(ctx context.Context, filter ListFilter) ([]Contract, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type ContractRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewContractRepository(mongodb *database.MongodbDB) ContractRepository {
	return &ContractRepositoryImpl{
		Collection: mongodb.DB.Collection("contracts"),
	}
}

func (r *ContractRepositoryImpl) Create(ctx context.Context, c *Contract) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.Collection.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.State("a contract already exists for negotiation %s", c.NegotiationID.Hex())
		}
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (r *ContractRepositoryImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*Contract, error) {
	var c Contract
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("contract %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("find contract: %w", err)
	}
	return &c, nil
}

func (r *ContractRepositoryImpl) Update(ctx context.Context, c *Contract) error {
	expected := c.Version
	c.Version = expected + 1
	if err := database.ReplaceVersioned(ctx, r.Collection, c.ID, expected, c); err != nil {
		c.Version = expected
		return err
	}
	return nil
}

func (r *ContractRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Contract, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.NegotiationID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.NegotiationID)
		if err != nil {
			return nil, 0, errs.Validation("invalid negotiation id %q", filter.NegotiationID)
		}
		query["negotiation_id"] = oid
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	opts := options.Find().SetLimit(page.Limit).SetSkip(page.Offset()).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	contracts := []Contract{}
	if err := cursor.All(ctx, &contracts); err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *ContractRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "negotiation_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "current_step", Value: 1}}},
	})
	return err
}
