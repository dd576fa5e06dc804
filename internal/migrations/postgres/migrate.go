package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"staydesk/pkg/logger"
)

// Schema is applied in order inside one transaction. Every statement is
// idempotent.
var Schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id              BIGSERIAL PRIMARY KEY,
		description     TEXT           NOT NULL CHECK (length(btrim(description)) > 0),
		price_per_night NUMERIC(10, 2) NOT NULL CHECK (price_per_night >= 0),
		created_at      TIMESTAMPTZ    NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         BIGSERIAL PRIMARY KEY,
		room_id    BIGINT      NOT NULL REFERENCES rooms (id) ON DELETE CASCADE,
		date_start DATE        NOT NULL,
		date_end   DATE        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT bookings_date_range_check CHECK (date_end > date_start),
		CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			room_id WITH =,
			daterange(date_start, date_end, '[)') WITH &&
		)
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_room_start_idx ON bookings (room_id, date_start)`,
	`CREATE INDEX IF NOT EXISTS bookings_start_idx ON bookings (date_start, id)`,
	`CREATE INDEX IF NOT EXISTS rooms_price_idx ON rooms (price_per_night)`,
	`CREATE INDEX IF NOT EXISTS rooms_created_at_idx ON rooms (created_at)`,
}

func RunMigration(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	log.Info("Running PostgreSQL migrations", "statements", len(Schema))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, stmt := range Schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	log.Info("All PostgreSQL migrations applied successfully")
	return nil
}
