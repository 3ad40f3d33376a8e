package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateReviews, downCreateReviews)
}

// reviews.room_id is indexed because a room's review list is derived from it
// on every room read.
func upCreateReviews(ctx context.Context, tx *sql.Tx) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS reviews (
    id         %[1]s PRIMARY KEY,
    room_id    %[1]s NOT NULL,
    user_id    %[1]s NOT NULL,
    attributes %[3]s NOT NULL,
    created_at %[2]s NOT NULL,
    updated_at %[2]s NOT NULL
)`, idType(), timeType(), jsonType())
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX idx_reviews_room_id ON reviews (room_id)`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `CREATE INDEX idx_reviews_user_id ON reviews (user_id)`)
	return err
}

func downCreateReviews(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS reviews`)
	return err
}
