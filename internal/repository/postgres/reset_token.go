package postgres

import (
	"context"
	"database/sql"
	"time"
)

// ResetTokenRepo implements repository.ResetTokenRepository
type ResetTokenRepo struct {
	db *sql.DB
}

// NewResetTokenRepo creates a new reset token repository
func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo {
	return &ResetTokenRepo{db: db}
}

// CreateToken stores a reset token for login
func (r *ResetTokenRepo) CreateToken(ctx context.Context, token, login string, expiresAt time.Time) error {
	query := `
		INSERT INTO reset_tokens (token, login, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, token, login, expiresAt)
	return err
}

// DeleteExpired removes tokens past their expiry and returns how many were removed
func (r *ResetTokenRepo) DeleteExpired() (int64, error) {
	query := `DELETE FROM reset_tokens WHERE expires_at <= NOW()`
	res, err := r.db.Exec(query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
