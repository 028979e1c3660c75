package database

import (
	"context"
	"errors"
	"fmt"

	"go-negotiation/internal/common/errs"
	"go-negotiation/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindByID decodes the document with id, or returns NotFound naming kind.
func FindByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, kind string) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("%s %s not found", kind, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", kind, id.Hex(), err)
	}
	return &doc, nil
}

// FindPage returns one page of matches, newest first, and the total count.
func FindPage[T any](ctx context.Context, coll *mongo.Collection, query bson.M, page models.Page) ([]T, int64, error) {
	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	p := page.Normalize()
	opts := options.Find().
		SetLimit(p.Limit).
		SetSkip(p.Offset()).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
