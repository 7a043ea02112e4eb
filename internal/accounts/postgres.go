package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/memohai/avatar/internal/db"
)

const accountColumns = `id, email, display_name, role, password_hash, created_at`

// PGRepository stores accounts in the users table.
type PGRepository struct {
	conn db.DBTX
}

func NewPGRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{conn: conn}
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanAccount(row)
}

func (r *PGRepository) Create(ctx context.Context, a Account) (Account, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO users (email, display_name, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+accountColumns,
		a.Email, a.DisplayName, string(a.Role), a.PasswordHash,
	)
	created, err := scanAccount(row)
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (r *PGRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		a    Account
		role string
	)
	if err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &role, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Role = Role(role)
	return a, nil
}
