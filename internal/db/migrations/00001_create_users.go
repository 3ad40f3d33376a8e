package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsers, downCreateUsers)
}

func upCreateUsers(ctx context.Context, tx *sql.Tx) error {
	emailType := "TEXT"
	if dialect == "mysql" {
		// MySQL cannot index an unbounded TEXT column.
		emailType = "VARCHAR(320)"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
    id           %[1]s PRIMARY KEY,
    email        %[2]s NOT NULL,
    display_name TEXT NOT NULL,
    role         VARCHAR(16) NOT NULL DEFAULT 'USER',
    created_at   %[3]s NOT NULL,
    updated_at   %[3]s NOT NULL
)`, idType(), emailType, timeType())
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	_, err := tx.ExecContext(ctx, `CREATE UNIQUE INDEX idx_users_email ON users (email)`)
	return err
}

func downCreateUsers(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS users`)
	return err
}
