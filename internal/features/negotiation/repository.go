package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-negotiation/internal/common/errs"
	"go-negotiation/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NegotiationRepository interface {
	Create(ctx context.Context, n *Negotiation) error
	CreateMany(ctx context.Context, ns []*Negotiation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Negotiation, error)
	GetByItemID(ctx context.Context, itemID primitive.ObjectID) (*Negotiation, error)
	// Update replaces n if its stored version still equals n.Version and
	// advances n.Version on success.
	Update(ctx context.Context, n *Negotiation) error
	// UpdateItem writes a single answered item while the negotiation is still
	// in the response phase of the same cycle and the item still carries
	// prevRespondedAt. Other items may be answered concurrently.
	UpdateItem(ctx context.Context, n *Negotiation, item NegotiationItem, prevRespondedAt *time.Time) error
	List(ctx context.Context, filter ListFilter) ([]Negotiation, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type NegotiationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewNegotiationRepository(mongodb *database.MongodbDB) NegotiationRepository {
	return &NegotiationRepositoryImpl{
		Collection: mongodb.DB.Collection("negotiations"),
	}
}

func (r *NegotiationRepositoryImpl) Create(ctx context.Context, n *Negotiation) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, n)
	return err
}

func (r *NegotiationRepositoryImpl) CreateMany(ctx context.Context, ns []*Negotiation) error {
	if len(ns) == 0 {
		return nil
	}
	docs := make([]interface{}, len(ns))
	for i, n := range ns {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		docs[i] = n
	}
	_, err := r.Collection.InsertMany(ctx, docs)
	return err
}

func (r *NegotiationRepositoryImpl) findOne(ctx context.Context, filter bson.M, what string) (*Negotiation, error) {
	var n Negotiation
	err := r.Collection.FindOne(ctx, filter).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("%s not found", what)
	}
	if err != nil {
		return nil, fmt.Errorf("find negotiation: %w", err)
	}
	return &n, nil
}

func (r *NegotiationRepositoryImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*Negotiation, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "negotiation "+id.Hex())
}

func (r *NegotiationRepositoryImpl) GetByItemID(ctx context.Context, itemID primitive.ObjectID) (*Negotiation, error) {
	return r.findOne(ctx, bson.M{"items._id": itemID}, "negotiation item "+itemID.Hex())
}

func (r *NegotiationRepositoryImpl) Update(ctx context.Context, n *Negotiation) error {
	expected := n.Version
	n.Version = expected + 1
	if err := database.ReplaceVersioned(ctx, r.Collection, n.ID, expected, n); err != nil {
		n.Version = expected
		return err
	}
	return nil
}

func (r *NegotiationRepositoryImpl) UpdateItem(ctx context.Context, n *Negotiation, item NegotiationItem, prevRespondedAt *time.Time) error {
	elem := bson.M{"_id": item.ID}
	if prevRespondedAt == nil {
		elem["responded_at"] = nil
	} else {
		elem["responded_at"] = *prevRespondedAt
	}

	filter := bson.M{
		"_id":               n.ID,
		"status":            bson.M{"$in": []Status{StatusSubmitted, StatusPending}},
		"negotiation_cycle": n.NegotiationCycle,
		"items":             bson.M{"$elemMatch": elem},
	}
	update := bson.M{
		"$set": bson.M{
			"items.$":    item,
			"updated_by": item.UpdatedBy,
			"updated_at": item.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update negotiation item %s: %w", item.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return database.MissingOrConflict(ctx, r.Collection, n.ID)
	}
	n.Version++
	return nil
}

func (r *NegotiationRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Negotiation, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.NegotiableType != "" {
		query["negotiable.type"] = filter.NegotiableType
	}
	if filter.NegotiableID != "" {
		query["negotiable.id"] = filter.NegotiableID
	}
	if filter.ParentID != "" {
		pid, err := primitive.ObjectIDFromHex(filter.ParentID)
		if err != nil {
			return nil, 0, errs.Validation("invalid parent id %q", filter.ParentID)
		}
		query["parent_negotiation_id"] = pid
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	opts := options.Find().
		SetLimit(page.Limit).
		SetSkip(page.Offset()).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	negotiations := []Negotiation{}
	if err := cursor.All(ctx, &negotiations); err != nil {
		return nil, 0, err
	}
	return negotiations, total, nil
}

// EnsureIndexes creates the lookup indexes and the unique item ownership
// index. An item id can live in one negotiation document only.
func (r *NegotiationRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "items._id", Value: 1}},
			Options: options.Index().
				SetName("items_id_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"items._id": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "negotiable.type", Value: 1}, {Key: "negotiable.id", Value: 1}}},
		{Keys: bson.D{{Key: "parent_negotiation_id", Value: 1}}},
	})
	return err
}
