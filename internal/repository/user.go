package repository

import (
	"context"
	"errors"
	"fmt"

	"board-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for user profiles
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUID retrieves a user profile by account uid
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	query := `
		SELECT uid, email, nickname, display_name, created_at
		FROM users
		WHERE uid = $1
	`
	var profile models.UserProfile
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&profile.UID, &profile.Email, &profile.Nickname,
		&profile.DisplayName, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}
