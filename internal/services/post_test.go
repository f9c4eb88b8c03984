package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"board-backend/internal/models"
	"board-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stateful fakes ---

type fakePostStore struct {
	posts map[string]*models.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[string]*models.Post)}
}

func (f *fakePostStore) Create(_ context.Context, post *models.Post) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostStore) GetByID(_ context.Context, id string) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (f *fakePostStore) List(_ context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	for _, p := range f.posts {
		posts = append(posts, p)
	}
	return posts, nil
}

func (f *fakePostStore) Delete(_ context.Context, id string) error {
	delete(f.posts, id)
	return nil
}

type fakeCommentStore struct {
	comments   map[string]*models.Comment
	batchSizes []int
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]*models.Comment)}
}

func (f *fakeCommentStore) Create(_ context.Context, comment *models.Comment) error {
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeCommentStore) GetByID(_ context.Context, id string) (*models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *comment
	return &cp, nil
}

func (f *fakeCommentStore) ListByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (f *fakeCommentStore) ListIDs(_ context.Context, postID string, limit int) ([]string, error) {
	var ids []string
	for id, c := range f.comments {
		if c.PostID != postID {
			continue
		}
		ids = append(ids, id)
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (f *fakeCommentStore) DeleteBatch(_ context.Context, ids []string) error {
	f.batchSizes = append(f.batchSizes, len(ids))
	for _, id := range ids {
		delete(f.comments, id)
	}
	return nil
}

func (f *fakeCommentStore) Delete(_ context.Context, id string) error {
	delete(f.comments, id)
	return nil
}

type fakeProfileStore struct {
	profiles map[string]*models.UserProfile
}

func (f *fakeProfileStore) GetByUID(_ context.Context, uid string) (*models.UserProfile, error) {
	profile, ok := f.profiles[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return profile, nil
}

type fakeUploader struct {
	err  error
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type fakePublisher struct {
	postPublishes    int
	commentPublishes []string
}

func (f *fakePublisher) PublishPosts(context.Context) {
	f.postPublishes++
}

func (f *fakePublisher) PublishComments(_ context.Context, postID string) {
	f.commentPublishes = append(f.commentPublishes, postID)
}

// --- helpers ---

func strPtr(s string) *string { return &s }

func seedComments(comments *fakeCommentStore, postID string, n int) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c-%d", i)
		comments.comments[id] = &models.Comment{ID: id, PostID: postID, Text: "t"}
	}
}

func newPostFixture() (*PostService, *fakePostStore, *fakeCommentStore, *fakeProfileStore, *fakeUploader, *fakePublisher) {
	posts := newFakePostStore()
	comments := newFakeCommentStore()
	profiles := &fakeProfileStore{profiles: map[string]*models.UserProfile{
		"uid-1": {UID: "uid-1", Nickname: "abc", DisplayName: "철수"},
	}}
	uploader := &fakeUploader{}
	hub := &fakePublisher{}
	return NewPostService(posts, comments, profiles, uploader, hub), posts, comments, profiles, uploader, hub
}

// --- tests ---

func TestImageKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	assert.Equal(t, "posts/anon_1700000000000.jpg", ImageKey(nil, now))
	assert.Equal(t, "posts/uid-1_1700000000000.jpg", ImageKey(strPtr("uid-1"), now))
}

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("authored post snapshots the display name", func(t *testing.T) {
		s, posts, _, _, uploader, hub := newPostFixture()

		post, err := s.CreatePost(ctx, strPtr("uid-1"), "T", "body", []byte("img"), "image/jpeg")
		require.NoError(t, err)

		require.NotNil(t, post.AuthorNickname)
		assert.Equal(t, "철수", *post.AuthorNickname)
		require.NotNil(t, post.ImageURL)
		assert.True(t, strings.HasPrefix(uploader.keys[0], "posts/uid-1_"))
		assert.Contains(t, posts.posts, post.ID)
		assert.Equal(t, 1, hub.postPublishes)
	})

	t.Run("anonymous post gets the anonymous nickname", func(t *testing.T) {
		s, _, _, _, _, _ := newPostFixture()

		post, err := s.CreatePost(ctx, nil, "T", "body", nil, "")
		require.NoError(t, err)

		require.NotNil(t, post.AuthorNickname)
		assert.Equal(t, "익명", *post.AuthorNickname)
		assert.Nil(t, post.AuthorID)
		assert.Nil(t, post.ImageURL)
	})

	t.Run("upload failure does not fail the submission", func(t *testing.T) {
		s, posts, _, _, uploader, _ := newPostFixture()
		uploader.err = errors.New("bucket unreachable")

		post, err := s.CreatePost(ctx, strPtr("uid-1"), "T", "body", []byte("img"), "image/jpeg")
		require.NoError(t, err)

		assert.Nil(t, post.ImageURL)
		assert.Contains(t, posts.posts, post.ID)
	})

	t.Run("unknown author falls back to anonymous", func(t *testing.T) {
		s, _, _, _, _, _ := newPostFixture()

		post, err := s.CreatePost(ctx, strPtr("ghost"), "T", "body", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "익명", *post.AuthorNickname)
	})
}

func TestPostService_GetPost(t *testing.T) {
	ctx := context.Background()

	t.Run("backfills a missing author nickname", func(t *testing.T) {
		s, posts, _, _, _, _ := newPostFixture()
		posts.posts["p-1"] = &models.Post{ID: "p-1", AuthorID: strPtr("uid-1")}

		post, err := s.GetPost(ctx, "p-1")
		require.NoError(t, err)
		require.NotNil(t, post.AuthorNickname)
		assert.Equal(t, "철수", *post.AuthorNickname)

		// The stored record is untouched.
		assert.Nil(t, posts.posts["p-1"].AuthorNickname)
	})

	t.Run("absent post is not found", func(t *testing.T) {
		s, _, _, _, _, _ := newPostFixture()
		_, err := s.GetPost(ctx, "nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestPostService_DeletePost_Sweep(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		comments    int
		wantBatches []int
	}{
		{0, nil},
		{3, []int{3}},
		{500, []int{500}},
		{501, []int{500, 1}},
		{1000, []int{500, 500}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d comments", tc.comments), func(t *testing.T) {
			s, posts, comments, _, _, hub := newPostFixture()
			posts.posts["p-1"] = &models.Post{ID: "p-1", AuthorID: strPtr("uid-1")}
			seedComments(comments, "p-1", tc.comments)

			require.NoError(t, s.DeletePost(ctx, "p-1", "uid-1"))

			assert.Empty(t, comments.comments)
			assert.NotContains(t, posts.posts, "p-1")
			assert.Equal(t, tc.wantBatches, comments.batchSizes)
			for _, size := range comments.batchSizes {
				assert.LessOrEqual(t, size, commentDeleteBatchSize)
			}
			assert.Equal(t, 1, hub.postPublishes)
		})
	}
}

func TestPostService_DeletePost_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, posts, comments, _, _, _ := newPostFixture()
	posts.posts["p-1"] = &models.Post{ID: "p-1", AuthorID: strPtr("uid-1")}
	seedComments(comments, "p-1", 3)

	require.NoError(t, s.DeletePost(ctx, "p-1", "uid-1"))

	// Second run: the post is gone, the sweep finds nothing, no error.
	require.NoError(t, s.DeletePost(ctx, "p-1", "uid-1"))
}

func TestPostService_DeletePost_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("non-author is rejected", func(t *testing.T) {
		s, posts, comments, _, _, _ := newPostFixture()
		posts.posts["p-1"] = &models.Post{ID: "p-1", AuthorID: strPtr("uid-1")}
		seedComments(comments, "p-1", 2)

		assert.ErrorIs(t, s.DeletePost(ctx, "p-1", "uid-2"), ErrForbidden)
		assert.Contains(t, posts.posts, "p-1")
		assert.Len(t, comments.comments, 2)
	})

	t.Run("anonymous post has no owner to delete it", func(t *testing.T) {
		s, posts, _, _, _, _ := newPostFixture()
		posts.posts["p-1"] = &models.Post{ID: "p-1"}

		assert.ErrorIs(t, s.DeletePost(ctx, "p-1", "uid-1"), ErrForbidden)
	})
}
