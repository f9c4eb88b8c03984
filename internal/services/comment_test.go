package services

import (
	"context"
	"testing"

	"board-backend/internal/models"
	"board-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentFixture() (*CommentService, *fakeCommentStore, *fakePublisher) {
	comments := newFakeCommentStore()
	profiles := &fakeProfileStore{profiles: map[string]*models.UserProfile{
		"uid-1": {UID: "uid-1", Nickname: "abc", DisplayName: "철수"},
	}}
	hub := &fakePublisher{}
	return NewCommentService(comments, profiles, hub), comments, hub
}

func TestCommentService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("authored comment snapshots the display name", func(t *testing.T) {
		s, comments, hub := newCommentFixture()

		comment, err := s.AddComment(ctx, "p-1", strPtr("uid-1"), "hello")
		require.NoError(t, err)

		assert.Equal(t, "p-1", comment.PostID)
		require.NotNil(t, comment.AuthorNickname)
		assert.Equal(t, "철수", *comment.AuthorNickname)
		assert.Contains(t, comments.comments, comment.ID)
		assert.Equal(t, []string{"p-1"}, hub.commentPublishes)
	})

	t.Run("anonymous comment gets the anonymous nickname", func(t *testing.T) {
		s, _, _ := newCommentFixture()

		comment, err := s.AddComment(ctx, "p-1", nil, "hello")
		require.NoError(t, err)
		assert.Equal(t, "익명", *comment.AuthorNickname)
		assert.Nil(t, comment.AuthorID)
	})

	t.Run("whitespace-only text is rejected", func(t *testing.T) {
		s, comments, _ := newCommentFixture()

		_, err := s.AddComment(ctx, "p-1", nil, "   ")
		assert.ErrorIs(t, err, ErrEmptyComment)
		assert.Empty(t, comments.comments)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("author deletes own comment", func(t *testing.T) {
		s, comments, hub := newCommentFixture()
		comments.comments["c-1"] = &models.Comment{ID: "c-1", PostID: "p-1", AuthorID: strPtr("uid-1")}

		require.NoError(t, s.DeleteComment(ctx, "p-1", "c-1", "uid-1"))
		assert.Empty(t, comments.comments)
		assert.Equal(t, []string{"p-1"}, hub.commentPublishes)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		s, comments, _ := newCommentFixture()
		comments.comments["c-1"] = &models.Comment{ID: "c-1", PostID: "p-1", AuthorID: strPtr("uid-1")}

		assert.ErrorIs(t, s.DeleteComment(ctx, "p-1", "c-1", "uid-2"), ErrForbidden)
		assert.Contains(t, comments.comments, "c-1")
	})

	t.Run("comment under a different post is not found", func(t *testing.T) {
		s, comments, _ := newCommentFixture()
		comments.comments["c-1"] = &models.Comment{ID: "c-1", PostID: "p-2", AuthorID: strPtr("uid-1")}

		assert.ErrorIs(t, s.DeleteComment(ctx, "p-1", "c-1", "uid-1"), repository.ErrNotFound)
	})

	t.Run("deleting an absent comment is a no-op", func(t *testing.T) {
		s, _, hub := newCommentFixture()

		require.NoError(t, s.DeleteComment(ctx, "p-1", "gone", "uid-1"))
		assert.Empty(t, hub.commentPublishes)
	})
}
