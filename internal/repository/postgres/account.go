package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"credflow/internal/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// AccountRepo implements repository.AccountRepository
type AccountRepo struct {
	db *sql.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// CreateAccount stores a new account
func (r *AccountRepo) CreateAccount(ctx context.Context, login, passwordHash string) error {
	query := `
		INSERT INTO accounts (login, password_hash)
		VALUES ($1, $2)
	`
	_, err := r.db.ExecContext(ctx, query, login, passwordHash)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrAccountExists
	}
	return err
}

// GetPasswordHash returns the password hash of login
func (r *AccountRepo) GetPasswordHash(ctx context.Context, login string) (string, error) {
	var hash string
	query := `SELECT password_hash FROM accounts WHERE login = $1`
	err := r.db.QueryRowContext(ctx, query, login).Scan(&hash)

	if err == sql.ErrNoRows {
		return "", domain.ErrAccountNotFound
	}
	if err != nil {
		return "", err
	}

	return hash, nil
}

// ResetPassword consumes token and updates the hash in one statement,
// so an unknown or expired token leaves every account untouched
func (r *AccountRepo) ResetPassword(ctx context.Context, token, passwordHash string) error {
	query := `
		WITH consumed AS (
			DELETE FROM reset_tokens
			WHERE token = $1 AND expires_at > NOW()
			RETURNING login
		)
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		FROM consumed
		WHERE accounts.login = consumed.login
	`
	res, err := r.db.ExecContext(ctx, query, token, passwordHash)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrInvalidToken
	}
	return nil
}
