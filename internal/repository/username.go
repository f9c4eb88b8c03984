package repository

import (
	"context"
	"errors"
	"fmt"

	"board-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// UsernameRepository handles database operations for nickname reservations
type UsernameRepository struct {
	db *pgxpool.Pool
}

// NewUsernameRepository creates a new username repository
func NewUsernameRepository(db *pgxpool.Pool) *UsernameRepository {
	return &UsernameRepository{db: db}
}

// Exists checks whether a reservation exists for a normalized nickname.
func (r *UsernameRepository) Exists(ctx context.Context, nickname string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM usernames WHERE nickname = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, nickname).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check nickname existence: %w", err)
	}
	return exists, nil
}

// Claim atomically binds a normalized nickname to an account: it reads the
// reservation inside a transaction, aborts with ErrNicknameTaken if one
// exists, and otherwise writes the reservation and the user profile
// together. Single attempt, no retry on conflict; a concurrent claim that
// slips past the read surfaces as a key violation on commit and is also
// reported as ErrNicknameTaken.
func (r *UsernameRepository) Claim(ctx context.Context, reservation *models.UsernameReservation, profile *models.UserProfile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var uid string
	err = tx.QueryRow(ctx,
		`SELECT uid FROM usernames WHERE nickname = $1`,
		reservation.Nickname,
	).Scan(&uid)
	if err == nil {
		return ErrNicknameTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to read reservation: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO usernames (nickname, uid, created_at) VALUES ($1, $2, $3)`,
		reservation.Nickname, reservation.UID, reservation.CreatedAt,
	)
	if err != nil {
		return claimError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (uid, email, nickname, display_name, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		profile.UID, profile.Email, profile.Nickname, profile.DisplayName, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write user profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return claimError(err)
	}
	return nil
}

// claimError maps a lost race on the reservation key to ErrNicknameTaken.
func claimError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrNicknameTaken
	}
	return fmt.Errorf("failed to commit claim: %w", err)
}
