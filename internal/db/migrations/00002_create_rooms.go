package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateRooms, downCreateRooms)
}

// Room listing fields are client-defined, so they live in a JSON text column
// rather than in typed columns.
func upCreateRooms(ctx context.Context, tx *sql.Tx) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rooms (
    id         %[1]s PRIMARY KEY,
    owner_id   %[1]s NOT NULL,
    attributes %[3]s NOT NULL,
    created_at %[2]s NOT NULL,
    updated_at %[2]s NOT NULL
)`, idType(), timeType(), jsonType())
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create rooms table: %w", err)
	}
	_, err := tx.ExecContext(ctx, `CREATE INDEX idx_rooms_owner_id ON rooms (owner_id)`)
	return err
}

func downCreateRooms(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS rooms`)
	return err
}
