package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Room represents a row in the rooms table.
type Room struct {
	ID         string     `db:"id" bson:"_id"`
	OwnerID    string     `db:"owner_id" bson:"owner_id"`
	Attributes Attributes `db:"attributes" bson:"attributes"`
	// ReviewIDs is derived from the reviews table on every read.
	ReviewIDs []string  `db:"-" bson:"-"`
	CreatedAt time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" bson:"updated_at"`
}

func (r *Room) Owner() string { return r.OwnerID }

// SQLRoomStore is the sqlx-backed implementation of RoomStore.
type SQLRoomStore struct {
	db *sqlx.DB
}

func NewSQLRoomStore(db *sqlx.DB) *SQLRoomStore {
	return &SQLRoomStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *SQLRoomStore) q(query string) string { return s.db.Rebind(query) }

const roomColumns = `id, owner_id, attributes, created_at, updated_at`

// Create inserts a new room owned by ownerID.
func (s *SQLRoomStore) Create(ctx context.Context, ownerID string, attrs Attributes) (*Room, error) {
	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO rooms (id, owner_id, attributes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`), id, ownerID, attrs.Clone(), now, now)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the room matching id with its review ids, or ErrNotFound.
func (s *SQLRoomStore) GetByID(ctx context.Context, id string) (*Room, error) {
	var r Room
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachReviewIDs(ctx, []*Room{&r}); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns rooms ordered by id.
func (s *SQLRoomStore) List(ctx context.Context, opts ListOptions) ([]*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms`
	var args []any
	if opts.After != "" {
		query += ` WHERE id > ?`
		args = append(args, opts.After)
	}
	query += ` ORDER BY id ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var rooms []*Room
	if err := s.db.SelectContext(ctx, &rooms, s.q(query), args...); err != nil {
		return nil, err
	}
	if err := s.attachReviewIDs(ctx, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Update merges attrs over the stored attributes. owner_id is never written.
func (s *SQLRoomStore) Update(ctx context.Context, id string, attrs Attributes) (*Room, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Attributes
	err = tx.GetContext(ctx, &current, s.q(`SELECT attributes FROM rooms WHERE id = ?`+forUpdate(s.db)), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, s.q(`UPDATE rooms SET attributes = ?, updated_at = ? WHERE id = ?`),
		current.Merge(attrs), time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the room and its reviews in one transaction.
func (s *SQLRoomStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM reviews WHERE room_id = ?`), id); err != nil {
		return fmt.Errorf("delete room reviews: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM rooms WHERE id = ?`), id)
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
	return tx.Commit()
}

type reviewRef struct {
	ID     string `db:"id"`
	RoomID string `db:"room_id"`
}

// attachReviewIDs fills ReviewIDs for every room with one query.
func (s *SQLRoomStore) attachReviewIDs(ctx context.Context, rooms []*Room) error {
	if len(rooms) == 0 {
		return nil
	}
	byID := make(map[string]*Room, len(rooms))
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		r.ReviewIDs = []string{}
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	query, args, err := sqlx.In(`SELECT id, room_id FROM reviews WHERE room_id IN (?) ORDER BY id ASC`, ids)
	if err != nil {
		return err
	}
	var refs []reviewRef
	if err := s.db.SelectContext(ctx, &refs, s.q(query), args...); err != nil {
		return fmt.Errorf("load review ids: %w", err)
	}
	for _, ref := range refs {
		if r, ok := byID[ref.RoomID]; ok {
			r.ReviewIDs = append(r.ReviewIDs, ref.ID)
		}
	}
	return nil
}

// forUpdate returns a row-lock suffix for drivers that support one.
// SQLite serializes writers already and rejects the clause.
func forUpdate(db *sqlx.DB) string {
	if db.DriverName() == "sqlite" {
		return ""
	}
	return ` FOR UPDATE`
}
