package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_records",
		SQL: `CREATE TABLE IF NOT EXISTS records (
  id                 UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id            UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  title              TEXT        NOT NULL,
  status             TEXT        NOT NULL DEFAULT 'pending',
  original_text      TEXT,
  processed_text     TEXT,
  audio_file_path    TEXT        NOT NULL,
  document_file_path TEXT,
  error_message      TEXT,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_records_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_user_id ON records (user_id);`,
	},
	{
		Name: "create_index_records_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_created_at ON records (created_at);`,
	},
	{
		Name: "create_index_records_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_status ON records (status);`,
	},
}

// EnsureMigrated checks whether the records table exists and runs the
// ordered migration steps if it does not. Every step is idempotent, so a
// partially applied run can be repeated safely.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	start := time.Now()

	var exists bool
	const sentinel = "SELECT to_regclass('public.records') IS NOT NULL"
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("migration step applied",
			"step", step.Name,
			"duration_ms", time.Since(stepStart).Milliseconds())
	}

	log.Info("migration complete", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
