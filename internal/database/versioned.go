package database

import (
	"context"
	"fmt"

	"go-negotiation/internal/common/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReplaceVersioned replaces the document identified by id only while it still
// carries the expected version. doc must already hold the next version.
// A missing document yields NotFound, a stale version Conflict.
func ReplaceVersioned(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, expected int64, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id, "version": expected}, doc)
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", coll.Name(), id.Hex(), err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return missingOrConflict(ctx, coll, id)
}

func missingOrConflict(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count %s/%s: %w", coll.Name(), id.Hex(), err)
	}
	if n == 0 {
		return errs.NotFound("%s %s not found", coll.Name(), id.Hex())
	}
	return errs.Conflict("%s %s was modified concurrently; reload and retry", coll.Name(), id.Hex())
}

// MissingOrConflict classifies a guarded update that matched nothing.
func MissingOrConflict(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	return missingOrConflict(ctx, coll, id)
}

// ParseID converts a hex id, reporting malformed ids as NotFound.
func ParseID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.NotFound("%s %q not found", kind, id)
	}
	return oid, nil
}
