// Package docstore implements the store interfaces on MongoDB.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection   = "rooms"
	reviewsCollection = "reviews"
	usersCollection   = "users"
)

// Connect dials uri and pings the primary. Nested attribute documents decode
// as maps so they serialize back to JSON objects.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		roomsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// codeIllegalOperation is returned by standalone servers for transactions.
const codeIllegalOperation = 20

func isTransactionUnsupported(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(codeIllegalOperation)
}

// attributeSet turns a merge patch into a $set document on attributes.<key>.
func attributeSet(attrs map[string]any, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	for k, v := range attrs {
		set["attributes."+k] = v
	}
	return set
}

// now truncates to the millisecond precision BSON dates carry.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
