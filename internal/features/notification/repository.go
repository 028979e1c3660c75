package notification

import (
	"context"
	"time"

	"go-negotiation/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListPending(ctx context.Context, limit int64) ([]Notification, error)
	MarkDelivered(ctx context.Context, ids []primitive.ObjectID, at time.Time) error
	IncrementAttempts(ctx context.Context, ids []primitive.ObjectID) error
	ListForRecipients(ctx context.Context, recipients []string, limit, offset int64) ([]Notification, int64, error)
}

type NotificationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewNotificationRepository(mongodb *database.MongodbDB) NotificationRepository {
	return &NotificationRepositoryImpl{
		Collection: mongodb.DB.Collection("notifications"),
	}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepositoryImpl) ListPending(ctx context.Context, limit int64) ([]Notification, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.M{"created_at": 1})
	cursor, err := r.Collection.Find(ctx, bson.M{"status": DeliveryPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Notification
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationRepositoryImpl) MarkDelivered(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.Collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"status": DeliveryDelivered, "delivered_at": at}, "$inc": bson.M{"attempts": 1}},
	)
	return err
}

func (r *NotificationRepositoryImpl) IncrementAttempts(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.Collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$inc": bson.M{"attempts": 1}})
	return err
}

func (r *NotificationRepositoryImpl) ListForRecipients(ctx context.Context, recipients []string, limit, offset int64) ([]Notification, int64, error) {
	filter := bson.M{"recipient": bson.M{"$in": recipients}}

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"created_at": -1})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	out := []Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
