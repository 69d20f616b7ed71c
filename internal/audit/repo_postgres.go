package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo writes to audit_events (migrations/001_users.sql).
// The table only ever sees INSERT and SELECT.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (p *PostgresRepo) Append(ctx context.Context, e Event) error {
	const op = "audit.PostgresRepo.Append"

	const q = `
INSERT INTO audit_events (id, type, user_id, login_id, actor_user_id, ip_address, message, created_at)
VALUES ($1, $2, NULLIF($3::bigint, 0), NULLIF($4::text, ''), NULLIF($5::bigint, 0), NULLIF($6::text, ''), $7, $8)
`
	if _, err := p.db.ExecContext(ctx, q, e.ID, string(e.Type), e.UserID, e.LoginID, e.ActorUserID, e.IPAddress, e.Message, e.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *PostgresRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	const op = "audit.PostgresRepo.Recent"

	const q = `
SELECT id, type, COALESCE(user_id, 0), COALESCE(login_id, ''), COALESCE(actor_user_id, 0),
       COALESCE(ip_address, ''), message, created_at
FROM audit_events
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := p.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var (
			e   Event
			typ string
		)
		if err := rows.Scan(&e.ID, &typ, &e.UserID, &e.LoginID, &e.ActorUserID, &e.IPAddress, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.Type = EventType(typ)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s (rows): %w", op, err)
	}
	return out, nil
}
