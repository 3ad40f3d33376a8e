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

// RoomStore is the MongoDB implementation of store.RoomStore.
type RoomStore struct {
	rooms   *mongo.Collection
	reviews *mongo.Collection
}

func NewRoomStore(db *mongo.Database) *RoomStore {
	return &RoomStore{
		rooms:   db.Collection(roomsCollection),
		reviews: db.Collection(reviewsCollection),
	}
}

var _ store.RoomStore = (*RoomStore)(nil)

func (s *RoomStore) Create(ctx context.Context, ownerID string, attrs store.Attributes) (*store.Room, error) {
	ts := now()
	room := &store.Room{
		ID:         uuid.Must(uuid.NewV7()).String(),
		OwnerID:    ownerID,
		Attributes: attrs.Clone(),
		ReviewIDs:  []string{},
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if _, err := s.rooms.InsertOne(ctx, room); err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return room, nil
}

func (s *RoomStore) GetByID(ctx context.Context, id string) (*store.Room, error) {
	var room store.Room
	err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachReviewIDs(ctx, []*store.Room{&room}); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RoomStore) List(ctx context.Context, opts store.ListOptions) ([]*store.Room, error) {
	filter := bson.M{}
	if opts.After != "" {
		filter["_id"] = bson.M{"$gt": opts.After}
	}
	find := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}

	cur, err := s.rooms.Find(ctx, filter, find)
	if err != nil {
		return nil, err
	}
	rooms := []*store.Room{}
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, err
	}
	if err := s.attachReviewIDs(ctx, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Update merges attrs key by key with $set; owner_id is never written.
func (s *RoomStore) Update(ctx context.Context, id string, attrs store.Attributes) (*store.Room, error) {
	res, err := s.rooms.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": attributeSet(attrs, now())})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes the room and its reviews in a transaction. Standalone
// servers cannot run one; there the reviews go first, so a failed call
// leaves the room in place and a retry completes the cascade.
func (s *RoomStore) Delete(ctx context.Context, id string) error {
	sess, err := s.rooms.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	var found bool
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		var err error
		found, err = s.deleteCascade(sc, id)
		return nil, err
	})
	if isTransactionUnsupported(err) {
		found, err = s.deleteCascade(ctx, id)
	}
	if err != nil {
		return err
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}

// deleteCascade reports whether the room existed. Its reviews are removed
// either way, so leftovers of an earlier failure are swept too.
func (s *RoomStore) deleteCascade(ctx context.Context, id string) (bool, error) {
	if _, err := s.reviews.DeleteMany(ctx, bson.M{"room_id": id}); err != nil {
		return false, fmt.Errorf("delete room reviews: %w", err)
	}
	res, err := s.rooms.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete room: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *RoomStore) attachReviewIDs(ctx context.Context, rooms []*store.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	byID := make(map[string]*store.Room, len(rooms))
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		r.ReviewIDs = []string{}
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	cur, err := s.reviews.Find(ctx,
		bson.M{"room_id": bson.M{"$in": ids}},
		options.Find().
			SetProjection(bson.M{"_id": 1, "room_id": 1}).
			SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return fmt.Errorf("load review ids: %w", err)
	}
	var refs []struct {
		ID     string `bson:"_id"`
		RoomID string `bson:"room_id"`
	}
	if err := cur.All(ctx, &refs); err != nil {
		return fmt.Errorf("load review ids: %w", err)
	}
	for _, ref := range refs {
		if r, ok := byID[ref.RoomID]; ok {
			r.ReviewIDs = append(r.ReviewIDs, ref.ID)
		}
	}
	return nil
}
