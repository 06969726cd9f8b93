package usedset

import (
	"context"
	"fmt"

	"github.com/shiikun-cn/tarot-mcp/internal/db"
)

// PostgresStore keeps per-session usage in the session_used table. The
// primary key on (session_id, card_index) makes Add naturally idempotent.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Used(ctx context.Context, sessionID string) (map[int]struct{}, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT card_index FROM session_used
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("usedset: select: %w", err)
	}
	defer rows.Close()

	out := make(map[int]struct{})
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("usedset: scan: %w", err)
		}
		out[idx] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usedset: rows: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) Add(ctx context.Context, sessionID string, index int) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO session_used (session_id, card_index)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, sessionID, index)
	if err != nil {
		return fmt.Errorf("usedset: insert: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	_, err := p.db.ExecContext(ctx, `
		DELETE FROM session_used
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return fmt.Errorf("usedset: delete: %w", err)
	}
	return nil
}
