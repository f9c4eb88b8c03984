package handlers

import (
	"io"
	"net/http"

	"board-backend/internal/middleware"
	"board-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxImageSize bounds the multipart form held in memory for an upload.
const maxImageSize = 10 << 20 // 10 MiB

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// ListPosts handles GET /api/v1/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPosts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// GetPost handles GET /api/v1/posts/{post_id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "post_id")

	post, err := h.postService.GetPost(r.Context(), postID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /api/v1/posts. The body is multipart form data
// with title, content and an optional image part. Anonymous submissions
// are allowed.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")
	if title == "" {
		respondError(w, "Title is required", http.StatusBadRequest)
		return
	}

	var image []byte
	var imageContentType string
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		image, err = io.ReadAll(file)
		if err != nil {
			respondError(w, "Failed to read image", http.StatusBadRequest)
			return
		}
		imageContentType = header.Header.Get("Content-Type")
		if imageContentType == "" {
			imageContentType = "image/jpeg"
		}
	}

	var uid *string
	if id := middleware.GetUserID(ctx); id != "" {
		uid = &id
	}

	post, err := h.postService.CreatePost(ctx, uid, title, content, image, imageContentType)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create post")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

// DeletePost handles DELETE /api/v1/posts/{post_id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "post_id")
	uid := middleware.GetUserID(ctx)

	if err := h.postService.DeletePost(ctx, postID, uid); err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to delete post")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
