// Package migrations contains dialect-aware Go database migrations that cannot
// be expressed as a single cross-database SQL statement.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

// idType is the column type used for UUID primary and foreign keys.
func idType() string {
	if dialect == "mysql" {
		return "VARCHAR(36)"
	}
	return "TEXT"
}

// jsonType is the column type for attribute documents. MySQL TEXT stops at
// 64 KiB, below the API body limit.
func jsonType() string {
	if dialect == "mysql" {
		return "LONGTEXT"
	}
	return "TEXT"
}

// timeType is the column type used for timestamps.
func timeType() string {
	switch dialect {
	case "postgres":
		return "TIMESTAMPTZ"
	case "mysql":
		return "DATETIME(6)"
	default: // sqlite3
		return "DATETIME"
	}
}
