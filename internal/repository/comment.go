package repository

import (
	"context"
	"errors"
	"fmt"

	"board-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a new comment under a post
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, text, author_id, author_nickname, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.PostID, comment.Text,
		comment.AuthorID, comment.AuthorNickname, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `
		SELECT id, post_id, text, author_id, author_nickname, created_at
		FROM comments
		WHERE id = $1
	`
	var comment models.Comment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&comment.ID, &comment.PostID, &comment.Text,
		&comment.AuthorID, &comment.AuthorNickname, &comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// ListByPost retrieves the comments of a post, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	query := `
		SELECT id, post_id, text, author_id, author_nickname, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.Text,
			&comment.AuthorID, &comment.AuthorNickname, &comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// ListIDs retrieves up to limit comment ids under a post, in no particular
// order. Feeds the batched deletion sweep.
func (r *CommentRepository) ListIDs(ctx context.Context, postID string, limit int) ([]string, error) {
	query := `SELECT id FROM comments WHERE post_id = $1 LIMIT $2`
	rows, err := r.db.Query(ctx, query, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan comment id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment ids: %w", err)
	}

	return ids, nil
}

// DeleteBatch deletes the given comments in a single batched round trip.
// Already-deleted ids are skipped silently.
func (r *CommentRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`DELETE FROM comments WHERE id = $1`, id)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range ids {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to delete comment batch: %w", err)
		}
	}
	return nil
}

// Delete removes a single comment. Absent rows are a no-op.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
