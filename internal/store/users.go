package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/room-reviews/internal/policy"
)

type User struct {
	ID          string    `db:"id" bson:"_id"`
	Email       string    `db:"email" bson:"email"`
	DisplayName string    `db:"display_name" bson:"display_name"`
	Role        string    `db:"role" bson:"role"`
	CreatedAt   time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return policy.IsAdmin(u.Caller())
}

// Caller returns the identity u acts as. A nil user is anonymous.
func (u *User) Caller() policy.Caller {
	if u == nil {
		return policy.Caller{}
	}
	return policy.Caller{ID: u.ID, Role: u.Role}
}

// SQLUserStore is the sqlx-backed implementation of UserStore.
type SQLUserStore struct {
	db *sqlx.DB
}

func NewSQLUserStore(db *sqlx.DB) *SQLUserStore {
	return &SQLUserStore{db: db}
}

func (s *SQLUserStore) q(query string) string { return s.db.Rebind(query) }

const userColumns = `id, email, display_name, role, created_at, updated_at`

// Create inserts a new user. An empty role defaults to policy.RoleUser.
func (s *SQLUserStore) Create(ctx context.Context, email, displayName, role string) (*User, error) {
	if role == "" {
		role = policy.RoleUser
	}
	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, display_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, strings.ToLower(strings.TrimSpace(email)), displayName, role, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *SQLUserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *SQLUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM users WHERE email = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListAll returns all users ordered by email.
func (s *SQLUserStore) ListAll(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY email ASC`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole sets the role for the given user and returns the updated record.
func (s *SQLUserStore) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`),
		role, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}
