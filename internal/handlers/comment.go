package handlers

import (
	"encoding/json"
	"net/http"

	"board-backend/internal/middleware"
	"board-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// CreateCommentRequest is the request body for adding a comment
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// ListComments handles GET /api/v1/posts/{post_id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "post_id")

	comments, err := h.commentService.ListComments(r.Context(), postID)
	if err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to list comments")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// CreateComment handles POST /api/v1/posts/{post_id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "post_id")

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var uid *string
	if id := middleware.GetUserID(ctx); id != "" {
		uid = &id
	}

	comment, err := h.commentService.AddComment(ctx, postID, uid, req.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/v1/posts/{post_id}/comments/{comment_id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "post_id")
	commentID := chi.URLParam(r, "comment_id")
	uid := middleware.GetUserID(ctx)

	if err := h.commentService.DeleteComment(ctx, postID, commentID, uid); err != nil {
		log.Error().Err(err).Str("comment_id", commentID).Msg("Failed to delete comment")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
