package service

import (
	"context"
	"fmt"

	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/metrics"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

// RoomDetail is a room with its reviews expanded inline.
type RoomDetail struct {
	*store.Room
	Reviews []*store.Review
}

type RoomService struct {
	rooms   store.RoomStore
	reviews store.ReviewStore
	policy  policy.Policy
}

func NewRoomService(rooms store.RoomStore, reviews store.ReviewStore, p policy.Policy) *RoomService {
	return &RoomService{rooms: rooms, reviews: reviews, policy: p}
}

// Create stores a new room owned by caller. Any owner field in attrs is dropped.
func (s *RoomService) Create(ctx context.Context, caller policy.Caller, attrs store.Attributes) (*store.Room, error) {
	if err := policy.RequireIdentity(caller); err != nil {
		return nil, err
	}
	clean, err := sanitize(attrs)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.Create(ctx, caller.ID, clean)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	metrics.RoomsCreatedTotal.Inc()
	log.Info(ctx, "room created", log.String("room_id", room.ID), log.String("owner_id", room.OwnerID))
	return room, nil
}

// List returns rooms without authorization.
func (s *RoomService) List(ctx context.Context, opts store.ListOptions) ([]*store.Room, error) {
	rooms, err := s.rooms.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Get returns one room with its reviews, or an error matching store.ErrNotFound.
func (s *RoomService) Get(ctx context.Context, id string) (*RoomDetail, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}
	reviews, err := s.reviews.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews of room %s: %w", id, err)
	}
	return &RoomDetail{Room: room, Reviews: reviews}, nil
}

// Update merges attrs into the room. Only the owner may update; the owner
// itself can never be changed through attrs.
func (s *RoomService) Update(ctx context.Context, caller policy.Caller, id string, attrs store.Attributes) (*store.Room, error) {
	room, err := s.authorize(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	clean, err := sanitize(attrs)
	if err != nil {
		return nil, err
	}

	updated, err := s.rooms.Update(ctx, room.ID, clean)
	if err != nil {
		return nil, fmt.Errorf("update room %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes the room and its reviews. Only the owner may delete.
func (s *RoomService) Delete(ctx context.Context, caller policy.Caller, id string) error {
	room, err := s.authorize(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, room.ID); err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	metrics.RoomsDeletedTotal.Inc()
	log.Info(ctx, "room deleted", log.String("room_id", room.ID), log.String("caller_id", caller.ID))
	return nil
}

// authorize loads the room and applies the owner-only guard.
func (s *RoomService) authorize(ctx context.Context, caller policy.Caller, id string) (*store.Room, error) {
	if err := policy.RequireIdentity(caller); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}
	if err := s.policy.GuardOwnerOnly(caller, room); err != nil {
		return nil, denied(ctx, caller, room.ID, err)
	}
	return room, nil
}
