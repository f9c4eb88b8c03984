package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"board-backend/internal/models"
	"board-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpDays         = 365
	maxNicknameDisplay = 5
)

// Availability is the outcome of a nickname availability check.
type Availability int

const (
	// AvailabilityUnknown means the check did not produce an answer:
	// empty input or a transient query failure. Not submittable.
	AvailabilityUnknown Availability = iota
	AvailabilityAvailable
	AvailabilityTaken
)

// String returns the wire representation of the availability state.
func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityTaken:
		return "taken"
	default:
		return "unknown"
	}
}

// AccountStore is the slice of the account repository the auth service uses.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Delete(ctx context.Context, uid string) error
}

// UsernameStore is the slice of the username repository the auth service uses.
type UsernameStore interface {
	Exists(ctx context.Context, nickname string) (bool, error)
	Claim(ctx context.Context, reservation *models.UsernameReservation, profile *models.UserProfile) error
}

// AuthService handles accounts, sessions and the nickname reservation
// protocol.
type AuthService struct {
	accounts  AccountStore
	usernames UsernameStore
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(accounts AccountStore, usernames UsernameStore, jwtSecret string) *AuthService {
	return &AuthService{
		accounts:  accounts,
		usernames: usernames,
		jwtSecret: jwtSecret,
	}
}

// NormalizeNickname lowercases and trims a nickname. The normalized form
// is the uniqueness key; the original casing is kept as the display name.
func NormalizeNickname(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NicknameValid reports whether the display nickname is 1-5 characters
// long. Counted in runes: two-character Hangul nicknames are valid.
func NicknameValid(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= maxNicknameDisplay
}

// CheckNickname reports whether a nickname is available. Empty input and
// query failures both map to unknown, which keeps the caller from
// submitting on a guess.
func (s *AuthService) CheckNickname(ctx context.Context, raw string) Availability {
	uname := NormalizeNickname(raw)
	if uname == "" {
		return AvailabilityUnknown
	}

	exists, err := s.usernames.Exists(ctx, uname)
	if err != nil {
		log.Error().Err(err).Str("nickname", uname).Msg("Nickname availability check failed")
		return AvailabilityUnknown
	}
	if exists {
		return AvailabilityTaken
	}
	return AvailabilityAvailable
}

// Signup creates an account and atomically binds the nickname to it. The
// account is created first and is not part of the claim transaction, so a
// failed claim triggers a compensating account deletion. That deletion is
// best-effort: if it fails too, the orphaned account is logged and left
// behind.
func (s *AuthService) Signup(ctx context.Context, email, password, nickname string) error {
	if !NicknameValid(nickname) {
		return ErrInvalidNickname
	}

	email = strings.TrimSpace(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	uname := NormalizeNickname(nickname)
	now := time.Now().UTC()
	reservation := &models.UsernameReservation{
		Nickname:  uname,
		UID:       account.UID,
		CreatedAt: now,
	}
	profile := &models.UserProfile{
		UID:         account.UID,
		Email:       email,
		Nickname:    uname,
		DisplayName: strings.TrimSpace(nickname),
		CreatedAt:   now,
	}

	if err := s.usernames.Claim(ctx, reservation, profile); err != nil {
		// Single attempt, no retry. Undo the account created above.
		if delErr := s.accounts.Delete(ctx, account.UID); delErr != nil {
			log.Error().Err(delErr).
				Str("uid", account.UID).
				Msg("Compensating account deletion failed, orphaned account left behind")
		}
		if errors.Is(err, repository.ErrNicknameTaken) {
			return err
		}
		return fmt.Errorf("failed to claim nickname: %w", err)
	}

	log.Info().
		Str("uid", account.UID).
		Str("nickname", uname).
		Msg("Account registered")

	return nil
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateJWT(account.UID)
}

// GenerateJWT generates a session token for an account
func (s *AuthService) GenerateJWT(uid string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": uid,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a session token and returns the account uid
func (s *AuthService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	uid, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return uid, nil
}
