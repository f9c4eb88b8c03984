package repository

import (
	"context"
	"errors"
	"fmt"

	"board-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, title, content, image_url, author_id, author_nickname, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Content, post.ImageURL,
		post.AuthorID, post.AuthorNickname, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `
		SELECT id, title, content, image_url, author_id, author_nickname, created_at
		FROM posts
		WHERE id = $1
	`
	var post models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Content, &post.ImageURL,
		&post.AuthorID, &post.AuthorNickname, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// List retrieves all posts, newest first
func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `
		SELECT id, title, content, image_url, author_id, author_nickname, created_at
		FROM posts
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		err := rows.Scan(
			&post.ID, &post.Title, &post.Content, &post.ImageURL,
			&post.AuthorID, &post.AuthorNickname, &post.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// Delete removes a post. Deleting an absent post is a no-op, which keeps
// retries of the deletion protocol idempotent.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
