package service

import (
	"context"
	"fmt"

	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/metrics"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

type ReviewService struct {
	rooms   store.RoomStore
	reviews store.ReviewStore
	policy  policy.Policy
}

func NewReviewService(rooms store.RoomStore, reviews store.ReviewStore, p policy.Policy) *ReviewService {
	return &ReviewService{rooms: rooms, reviews: reviews, policy: p}
}

// Create posts a review of roomID by caller. The room's owner may not review it.
// The author and room are taken from caller and roomID, never from attrs.
func (s *ReviewService) Create(ctx context.Context, caller policy.Caller, roomID string, attrs store.Attributes) (*store.Review, error) {
	if err := policy.RequireIdentity(caller); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomID, err)
	}
	if err := s.policy.GuardNotOwner(caller, room); err != nil {
		return nil, denied(ctx, caller, room.ID, err)
	}
	clean, err := sanitize(attrs)
	if err != nil {
		return nil, err
	}

	review, err := s.reviews.Create(ctx, room.ID, caller.ID, clean)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	metrics.ReviewsCreatedTotal.Inc()
	log.Info(ctx, "review created",
		log.String("review_id", review.ID),
		log.String("room_id", room.ID),
		log.String("user_id", caller.ID),
	)
	return review, nil
}

// ListByRoom returns the reviews of roomID, or an error matching
// store.ErrNotFound when the room does not exist.
func (s *ReviewService) ListByRoom(ctx context.Context, roomID string) ([]*store.Review, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomID, err)
	}
	reviews, err := s.reviews.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list reviews of room %s: %w", roomID, err)
	}
	return reviews, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (*store.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return review, nil
}

// Update merges attrs into the review. Only its author may update it.
func (s *ReviewService) Update(ctx context.Context, caller policy.Caller, id string, attrs store.Attributes) (*store.Review, error) {
	review, err := s.authorize(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	clean, err := sanitize(attrs)
	if err != nil {
		return nil, err
	}

	updated, err := s.reviews.Update(ctx, review.ID, clean)
	if err != nil {
		return nil, fmt.Errorf("update review %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes the review. Only its author may delete it.
func (s *ReviewService) Delete(ctx context.Context, caller policy.Caller, id string) error {
	review, err := s.authorize(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	return nil
}

func (s *ReviewService) authorize(ctx context.Context, caller policy.Caller, id string) (*store.Review, error) {
	if err := policy.RequireIdentity(caller); err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	if err := s.policy.GuardOwnerOnly(caller, review); err != nil {
		return nil, denied(ctx, caller, review.ID, err)
	}
	return review, nil
}
