package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Review represents a row in the reviews table.
type Review struct {
	ID         string     `db:"id" bson:"_id"`
	RoomID     string     `db:"room_id" bson:"room_id"`
	UserID     string     `db:"user_id" bson:"user_id"`
	Attributes Attributes `db:"attributes" bson:"attributes"`
	CreatedAt  time.Time  `db:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" bson:"updated_at"`
}

// Owner returns the review's author.
func (r *Review) Owner() string { return r.UserID }

// SQLReviewStore is the sqlx-backed implementation of ReviewStore.
type SQLReviewStore struct {
	db *sqlx.DB
}

func NewSQLReviewStore(db *sqlx.DB) *SQLReviewStore {
	return &SQLReviewStore{db: db}
}

func (s *SQLReviewStore) q(query string) string { return s.db.Rebind(query) }

const reviewColumns = `id, room_id, user_id, attributes, created_at, updated_at`

// Create inserts a review of roomID written by userID. The room's review
// list picks it up on the next read; there is no second write to link it.
func (s *SQLReviewStore) Create(ctx context.Context, roomID, userID string, attrs Attributes) (*Review, error) {
	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO reviews (id, room_id, user_id, attributes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, roomID, userID, attrs.Clone(), now, now)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the review matching id, or ErrNotFound.
func (s *SQLReviewStore) GetByID(ctx context.Context, id string) (*Review, error) {
	var r Review
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByRoom returns the reviews of roomID in creation order.
func (s *SQLReviewStore) ListByRoom(ctx context.Context, roomID string) ([]*Review, error) {
	reviews := []*Review{}
	err := s.db.SelectContext(ctx, &reviews, s.q(`
		SELECT `+reviewColumns+` FROM reviews WHERE room_id = ? ORDER BY id ASC
	`), roomID)
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// Update merges attrs over the stored attributes. room_id and user_id are never written.
func (s *SQLReviewStore) Update(ctx context.Context, id string, attrs Attributes) (*Review, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Attributes
	err = tx.GetContext(ctx, &current, s.q(`SELECT attributes FROM reviews WHERE id = ?`+forUpdate(s.db)), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, s.q(`UPDATE reviews SET attributes = ?, updated_at = ? WHERE id = ?`),
		current.Merge(attrs), time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a review. Returns ErrNotFound if it does not exist.
func (s *SQLReviewStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM reviews WHERE id = ?`), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
