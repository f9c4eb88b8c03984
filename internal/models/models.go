package models

import "time"

// Account is an identity issued by the authentication subsystem.
type Account struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserProfile holds the public identity bound to an account, keyed by uid.
type UserProfile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	Nickname    string    `json:"nickname"` // normalized (trimmed, lowercased)
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// UsernameReservation binds a normalized nickname to exactly one account.
// The normalized nickname is the record's key: at most one reservation
// exists per nickname.
type UsernameReservation struct {
	Nickname  string    `json:"nickname"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

// Post represents a board post
type Post struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	ImageURL       *string   `json:"image_url,omitempty"`
	AuthorID       *string   `json:"author_id,omitempty"`
	AuthorNickname *string   `json:"author_nickname,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Comment represents a comment under a post
type Comment struct {
	ID             string    `json:"id"`
	PostID         string    `json:"post_id"`
	Text           string    `json:"text"`
	AuthorID       *string   `json:"author_id,omitempty"`
	AuthorNickname *string   `json:"author_nickname,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
