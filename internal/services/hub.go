package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"board-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// TopicPosts is the subscription topic for the post list.
const TopicPosts = "posts"

// TopicComments builds the subscription topic for a post's comments.
func TopicComments(postID string) string {
	return fmt.Sprintf("posts/%s/comments", postID)
}

// Snapshot is a full current view of a topic, delivered on every change.
// Subscribers always receive complete snapshots, never diffs.
type Snapshot struct {
	Topic    string            `json:"topic"`
	Posts    []*models.Post    `json:"posts,omitempty"`
	Comments []*models.Comment `json:"comments,omitempty"`
}

// Subscription is a cancellable handle to a live topic. Cancelling is the
// only teardown mechanism; an abandoned subscription keeps receiving
// snapshots.
type Subscription struct {
	hub   *SubscriptionHub
	topic string
	id    int
}

// Cancel unregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.unsubscribe(s.topic, s.id)
}

// PostLister provides the post-list snapshot source.
type PostLister interface {
	List(ctx context.Context) ([]*models.Post, error)
}

// CommentLister provides the comment-list snapshot source.
type CommentLister interface {
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
}

// SubscriptionHub fans full snapshots out to topic subscribers. Services
// publish after every mutation; the hub rereads the topic's current state
// and pushes it to every registered callback.
type SubscriptionHub struct {
	mu       sync.RWMutex
	nextID   int
	subs     map[string]map[int]func(Snapshot)
	posts    PostLister
	comments CommentLister
}

// NewSubscriptionHub creates a new subscription hub
func NewSubscriptionHub(posts PostLister, comments CommentLister) *SubscriptionHub {
	return &SubscriptionHub{
		subs:     make(map[string]map[int]func(Snapshot)),
		posts:    posts,
		comments: comments,
	}
}

// Subscribe registers a callback for a topic and immediately delivers the
// current snapshot, so a new subscriber never starts blank.
func (h *SubscriptionHub) Subscribe(ctx context.Context, topic string, fn func(Snapshot)) (*Subscription, error) {
	snap, err := h.snapshot(ctx, topic)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]func(Snapshot))
	}
	h.subs[topic][id] = fn
	h.mu.Unlock()

	log.Debug().Str("topic", topic).Int("subscription_id", id).Msg("Subscription registered")

	fn(snap)
	return &Subscription{hub: h, topic: topic, id: id}, nil
}

func (h *SubscriptionHub) unsubscribe(topic string, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[topic]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.subs, topic)
		}
	}
}

// PublishPosts pushes the current post list to its subscribers.
func (h *SubscriptionHub) PublishPosts(ctx context.Context) {
	h.publish(ctx, TopicPosts)
}

// PublishComments pushes a post's current comment list to its subscribers.
func (h *SubscriptionHub) PublishComments(ctx context.Context, postID string) {
	h.publish(ctx, TopicComments(postID))
}

func (h *SubscriptionHub) publish(ctx context.Context, topic string) {
	h.mu.RLock()
	hasSubs := len(h.subs[topic]) > 0
	h.mu.RUnlock()
	if !hasSubs {
		return
	}

	snap, err := h.snapshot(ctx, topic)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to build snapshot")
		return
	}

	h.mu.RLock()
	fns := make([]func(Snapshot), 0, len(h.subs[topic]))
	for _, fn := range h.subs[topic] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// snapshot builds the full current state of a topic.
func (h *SubscriptionHub) snapshot(ctx context.Context, topic string) (Snapshot, error) {
	if topic == TopicPosts {
		posts, err := h.posts.List(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to snapshot posts: %w", err)
		}
		return Snapshot{Topic: topic, Posts: posts}, nil
	}

	rest, ok := strings.CutPrefix(topic, "posts/")
	if !ok {
		return Snapshot{}, fmt.Errorf("unknown topic %q", topic)
	}
	postID, ok := strings.CutSuffix(rest, "/comments")
	if !ok || postID == "" {
		return Snapshot{}, fmt.Errorf("unknown topic %q", topic)
	}

	comments, err := h.comments.ListByPost(ctx, postID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to snapshot comments: %w", err)
	}
	return Snapshot{Topic: topic, Comments: comments}, nil
}
