package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

// UserStore is the MongoDB implementation of store.UserStore.
type UserStore struct {
	users *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{users: db.Collection(usersCollection)}
}

var _ store.UserStore = (*UserStore)(nil)

// Create inserts a new user. An empty role defaults to policy.RoleUser.
func (s *UserStore) Create(ctx context.Context, email, displayName, role string) (*store.User, error) {
	if role == "" {
		role = policy.RoleUser
	}
	ts := now()
	user := &store.User{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Email:       normalizeEmail(email),
		DisplayName: displayName,
		Role:        role,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*store.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// ListAll returns all users ordered by email.
func (s *UserStore) ListAll(ctx context.Context) ([]*store.User, error) {
	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	users := []*store.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id, role string) (*store.User, error) {
	var user store.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*store.User, error) {
	var user store.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
