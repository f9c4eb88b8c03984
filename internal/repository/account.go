package repository

import (
	"context"
	"errors"
	"fmt"

	"board-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository handles database operations for authentication accounts
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (uid, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query,
		account.UID, account.Email, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT uid, email, password_hash, created_at
		FROM accounts
		WHERE email = $1
	`
	var account models.Account
	err := r.db.QueryRow(ctx, query, email).Scan(
		&account.UID, &account.Email, &account.PasswordHash, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Delete removes an account. Deleting an absent account is a no-op so the
// compensating delete after a failed signup can be retried safely.
func (r *AccountRepository) Delete(ctx context.Context, uid string) error {
	query := `DELETE FROM accounts WHERE uid = $1`
	_, err := r.db.Exec(ctx, query, uid)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
