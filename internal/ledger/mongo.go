// mongo.go - MongoDB ledger backend ("payments" collection)

package ledger

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// PaymentsCollection is the collection name used by MongoBackend
const PaymentsCollection = "payments"

// MongoBackend stores entries as documents with a unique index on hash
type MongoBackend struct {
	coll *mongo.Collection
}

// NewMongoBackend creates the backend and ensures the hash index
func NewMongoBackend(ctx context.Context, db *mongo.Database) (*MongoBackend, error) {
	coll := db.Collection(PaymentsCollection)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// partial filter keeps payments without a hash out of the unique constraint
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "hash", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"hash": bson.M{"$gt": ""}}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payments hash index: %w", err)
	}
	return &MongoBackend{coll: coll}, nil
}

// Append implements Backend
func (b *MongoBackend) Append(ctx context.Context, entry models.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := b.coll.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// Hashes implements Backend
func (b *MongoBackend) Hashes(ctx context.Context) (map[string]struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	values, err := b.coll.Distinct(ctx, "hash", bson.M{"hash": bson.M{"$gt": ""}})
	if err != nil {
		return nil, fmt.Errorf("failed to list payment hashes: %w", err)
	}
	hashes := make(map[string]struct{}, len(values))
	for _, v := range values {
		if h, ok := v.(string); ok {
			hashes[h] = struct{}{}
		}
	}
	return hashes, nil
}

// Entries implements Backend
func (b *MongoBackend) Entries(ctx context.Context) ([]models.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := b.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "ts", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return entries, nil
}
