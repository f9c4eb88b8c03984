package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"board-backend/internal/models"
	"board-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CommentService handles comment-related business logic
type CommentService struct {
	comments CommentStore
	profiles ProfileStore
	hub      Publisher
}

// NewCommentService creates a new comment service
func NewCommentService(comments CommentStore, profiles ProfileStore, hub Publisher) *CommentService {
	return &CommentService{
		comments: comments,
		profiles: profiles,
		hub:      hub,
	}
}

// AddComment creates a comment under a post with the author's display
// name snapshotted onto it.
func (s *CommentService) AddComment(ctx context.Context, postID string, uid *string, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	nickname := resolveNickname(ctx, s.profiles, uid)
	comment := &models.Comment{
		ID:             uuid.New().String(),
		PostID:         postID,
		Text:           text,
		AuthorID:       uid,
		AuthorNickname: &nickname,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.hub.PublishComments(ctx, postID)

	return comment, nil
}

// ListComments retrieves the comments of a post, oldest first
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// DeleteComment removes a single comment owned by the caller. Deleting a
// comment that is already gone is a no-op.
func (s *CommentService) DeleteComment(ctx context.Context, postID, commentID, uid string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if comment.PostID != postID {
		return repository.ErrNotFound
	}
	if comment.AuthorID == nil || *comment.AuthorID != uid {
		return ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	log.Info().Str("comment_id", commentID).Str("post_id", postID).Msg("Comment deleted")
	s.hub.PublishComments(ctx, postID)

	return nil
}
