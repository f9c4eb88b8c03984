package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"board-backend/internal/models"
	"board-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// commentDeleteBatchSize is the backend limit for a single batch of
// mutations.
const commentDeleteBatchSize = 500

// anonymousNickname is the display name stamped onto posts and comments
// written without a profile.
const anonymousNickname = "익명"

// PostStore is the slice of the post repository the post service uses.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// CommentStore is the slice of the comment repository the post and comment
// services use.
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	ListIDs(ctx context.Context, postID string, limit int) ([]string, error)
	DeleteBatch(ctx context.Context, ids []string) error
	Delete(ctx context.Context, id string) error
}

// ProfileStore resolves account uids to profiles for denormalization.
type ProfileStore interface {
	GetByUID(ctx context.Context, uid string) (*models.UserProfile, error)
}

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Publisher pushes fresh snapshots to live subscribers after a mutation.
type Publisher interface {
	PublishPosts(ctx context.Context)
	PublishComments(ctx context.Context, postID string)
}

// PostService handles post-related business logic, including the
// post-deletion protocol.
type PostService struct {
	posts    PostStore
	comments CommentStore
	profiles ProfileStore
	uploader Uploader
	hub      Publisher
}

// NewPostService creates a new post service
func NewPostService(posts PostStore, comments CommentStore, profiles ProfileStore, uploader Uploader, hub Publisher) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		profiles: profiles,
		uploader: uploader,
		hub:      hub,
	}
}

// CreatePost creates a post, snapshotting the author's display name onto
// it. The image upload is best-effort: a failed upload is logged and the
// post is created without an image rather than failing the submission.
func (s *PostService) CreatePost(ctx context.Context, uid *string, title, content string, image []byte, imageContentType string) (*models.Post, error) {
	var imageURL *string
	if len(image) > 0 && s.uploader != nil {
		key := ImageKey(uid, time.Now())
		url, err := s.uploader.Upload(ctx, key, image, imageContentType)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Image upload failed, creating post without image")
		} else {
			imageURL = &url
		}
	}

	nickname := s.authorNickname(ctx, uid)
	post := &models.Post{
		ID:             uuid.New().String(),
		Title:          title,
		Content:        content,
		ImageURL:       imageURL,
		AuthorID:       uid,
		AuthorNickname: &nickname,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	log.Info().Str("post_id", post.ID).Msg("Post created")
	s.hub.PublishPosts(ctx)

	return post, nil
}

// ListPosts retrieves all posts, newest first
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.posts.List(ctx)
}

// GetPost retrieves a post. A missing denormalized author nickname is
// backfilled with a one-shot profile lookup; the stored record stays as
// it is.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.AuthorNickname == nil && post.AuthorID != nil {
		nickname := s.authorNickname(ctx, post.AuthorID)
		post.AuthorNickname = &nickname
	}

	return post, nil
}

// DeletePost removes a post and every comment under it. Comments are
// swept in independent batches of at most 500 deletes; only after the
// sweep drains does the post row itself go away. There is no cross-batch
// transaction: a failure mid-sweep leaves the post alive with fewer
// comments, and retrying the whole operation converges because each step
// skips records that are already gone.
func (s *PostService) DeletePost(ctx context.Context, id, uid string) error {
	post, err := s.posts.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Retry after a partial failure: nothing left to authorize,
		// the sweep and the row delete below are no-ops.
	case err != nil:
		return err
	case post.AuthorID == nil || *post.AuthorID != uid:
		return ErrForbidden
	}

	for {
		ids, err := s.comments.ListIDs(ctx, id, commentDeleteBatchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch comment batch: %w", err)
		}
		if len(ids) == 0 {
			break
		}
		if err := s.comments.DeleteBatch(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete comment batch: %w", err)
		}
		log.Debug().Str("post_id", id).Int("count", len(ids)).Msg("Comment batch deleted")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("post_id", id).Msg("Post deleted")
	s.hub.PublishPosts(ctx)

	return nil
}

// authorNickname resolves the display name to stamp onto a post or
// comment, falling back to the anonymous nickname.
func (s *PostService) authorNickname(ctx context.Context, uid *string) string {
	return resolveNickname(ctx, s.profiles, uid)
}

func resolveNickname(ctx context.Context, profiles ProfileStore, uid *string) string {
	if uid == nil {
		return anonymousNickname
	}
	profile, err := profiles.GetByUID(ctx, *uid)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("uid", *uid).Msg("Failed to resolve author nickname")
		}
		return anonymousNickname
	}
	if profile.DisplayName != "" {
		return profile.DisplayName
	}
	if profile.Nickname != "" {
		return profile.Nickname
	}
	return anonymousNickname
}
