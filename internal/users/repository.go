package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dailyon/internal/rbac"
	"dailyon/pkg/utils"
)

// Repository is the persistence contract for credential records.
type Repository interface {
	FindByLoginID(ctx context.Context, loginID string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, in NewUser) (User, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) (User, error)
	Search(ctx context.Context, keyword string, limit int) ([]User, error)
	List(ctx context.Context, offset, limit int) ([]User, error)
}

// NOTE: PostgresRepo assumes the tables in migrations/001_users.sql:
// - users (login_id UNIQUE)
// - user_roles (user_id, role) PRIMARY KEY

type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

const selectUser = `
SELECT u.id, u.login_id, u.password_hash, u.display_name, u.enabled, u.created_at, u.updated_at,
       COALESCE(string_agg(r.role, ',' ORDER BY r.role), '')
FROM users u
LEFT JOIN user_roles r ON r.user_id = u.id
`

func (p *PostgresRepo) FindByLoginID(ctx context.Context, loginID string) (User, error) {
	const op = "users.PostgresRepo.FindByLoginID"

	q := selectUser + `WHERE u.login_id = $1 GROUP BY u.id`
	u, err := scanUser(p.db.QueryRowContext(ctx, q, normalizeLoginID(loginID)))
	if err != nil {
		return User{}, wrapNotFound(op, err)
	}
	return u, nil
}

func (p *PostgresRepo) FindByID(ctx context.Context, id int64) (User, error) {
	const op = "users.PostgresRepo.FindByID"

	q := selectUser + `WHERE u.id = $1 GROUP BY u.id`
	u, err := scanUser(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return User{}, wrapNotFound(op, err)
	}
	return u, nil
}

func (p *PostgresRepo) Create(ctx context.Context, in NewUser) (User, error) {
	const op = "users.PostgresRepo.Create"

	loginID := normalizeLoginID(in.LoginID)
	if loginID == "" {
		return User{}, ErrInvalidArgument
	}
	roles := in.Roles.OrDefault()
	now := p.clock().UTC()

	out := User{
		LoginID:      loginID,
		PasswordHash: in.PasswordHash,
		DisplayName:  in.DisplayName,
		Roles:        roles,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := utils.WithTx(ctx, p.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const insertUser = `
INSERT INTO users (login_id, password_hash, display_name, enabled, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, $4, $4)
RETURNING id
`
		if err := tx.QueryRowContext(ctx, insertUser, loginID, in.PasswordHash, in.DisplayName, now).Scan(&out.ID); err != nil {
			return err
		}

		const insertRole = `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`
		for _, r := range roles.Roles() {
			if _, err := tx.ExecContext(ctx, insertRole, out.ID, string(r)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return User{}, ErrLoginIDTaken
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (p *PostgresRepo) SetEnabled(ctx context.Context, id int64, enabled bool) (User, error) {
	const op = "users.PostgresRepo.SetEnabled"

	const q = `UPDATE users SET enabled = $2, updated_at = $3 WHERE id = $1`
	res, err := p.db.ExecContext(ctx, q, id, enabled, p.clock().UTC())
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return User{}, ErrNotFound
	}
	return p.FindByID(ctx, id)
}

func (p *PostgresRepo) Search(ctx context.Context, keyword string, limit int) ([]User, error) {
	const op = "users.PostgresRepo.Search"

	pattern := "%" + escapeLike(strings.TrimSpace(keyword)) + "%"
	q := selectUser + `
WHERE u.login_id ILIKE $1 OR u.display_name ILIKE $1
GROUP BY u.id
ORDER BY u.id
LIMIT $2
`
	rows, err := p.db.QueryContext(ctx, q, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	return collectUsers(op, rows)
}

func (p *PostgresRepo) List(ctx context.Context, offset, limit int) ([]User, error) {
	const op = "users.PostgresRepo.List"

	q := selectUser + `
GROUP BY u.id
ORDER BY u.id
OFFSET $1
LIMIT $2
`
	rows, err := p.db.QueryContext(ctx, q, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	return collectUsers(op, rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u     User
		roles string
	)
	if err := row.Scan(
		&u.ID,
		&u.LoginID,
		&u.PasswordHash,
		&u.DisplayName,
		&u.Enabled,
		&u.CreatedAt,
		&u.UpdatedAt,
		&roles,
	); err != nil {
		return User{}, err
	}

	var names []string
	if roles != "" {
		names = strings.Split(roles, ",")
	}
	set, err := rbac.ParseRoleSet(names)
	if err != nil {
		return User{}, err
	}
	u.Roles = set.OrDefault()
	return u, nil
}

func collectUsers(op string, rows *sql.Rows) ([]User, error) {
	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s (rows): %w", op, err)
	}
	return out, nil
}

func wrapNotFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
