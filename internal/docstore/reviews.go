package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joestump/room-reviews/internal/store"
)

// ReviewStore is the MongoDB implementation of store.ReviewStore.
type ReviewStore struct {
	reviews *mongo.Collection
}

func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{reviews: db.Collection(reviewsCollection)}
}

var _ store.ReviewStore = (*ReviewStore)(nil)

func (s *ReviewStore) Create(ctx context.Context, roomID, userID string, attrs store.Attributes) (*store.Review, error) {
	ts := now()
	review := &store.Review{
		ID:         uuid.Must(uuid.NewV7()).String(),
		RoomID:     roomID,
		UserID:     userID,
		Attributes: attrs.Clone(),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if _, err := s.reviews.InsertOne(ctx, review); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

func (s *ReviewStore) GetByID(ctx context.Context, id string) (*store.Review, error) {
	var review store.Review
	err := s.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewStore) ListByRoom(ctx context.Context, roomID string) ([]*store.Review, error) {
	cur, err := s.reviews.Find(ctx, bson.M{"room_id": roomID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	reviews := []*store.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Update merges attrs key by key; room_id and user_id are never written.
func (s *ReviewStore) Update(ctx context.Context, id string, attrs store.Attributes) (*store.Review, error) {
	var review store.Review
	err := s.reviews.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": attributeSet(attrs, now())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewStore) Delete(ctx context.Context, id string) error {
	res, err := s.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
