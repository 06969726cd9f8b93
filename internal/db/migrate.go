package db

import (
	"context"
	"database/sql"
)

const usedSetMigration = `
CREATE TABLE IF NOT EXISTS session_used (
    session_id text NOT NULL,
    card_index integer NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    PRIMARY KEY (session_id, card_index)
);

CREATE INDEX IF NOT EXISTS session_used_session_id_idx
ON session_used (session_id);
`

func RunUsedSetMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, usedSetMigration)
	return err
}
