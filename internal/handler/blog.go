package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/service"
)

// BlogHandler serves /api/blogs.
type BlogHandler struct {
	blogs  *service.BlogService
	logger *slog.Logger
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(blogs *service.BlogService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{blogs: blogs, logger: logger}
}

type createBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

type updateLikesRequest struct {
	Likes *int `json:"likes"`
}

// HandleList returns every blog with its owner.
//
// HTTP: GET /api/blogs
func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectBlogs(blogs))
}

// HandleGet returns one blog.
//
// HTTP: GET /api/blogs/{id}
func (h *BlogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectBlog(blog))
}

// HandleCreate stores a blog owned by the authenticated caller.
//
// HTTP: POST /api/blogs (requires auth.RequireUser upstream)
// REQUEST BODY: {"title": "...", "author": "...", "url": "...", "likes": 0}
func (h *BlogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		WriteError(w, r, apperror.TokenMissing())
		return
	}

	var req createBlogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMalformedBody(w, r, h.logger, err)
		return
	}

	blog, err := h.blogs.Create(r.Context(), caller, service.CreateBlogInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectBlog(blog))
}

// HandleDelete removes a blog the caller created.
//
// HTTP: DELETE /api/blogs/{id} (requires auth.RequireUser upstream)
// 204 No Content on success.
func (h *BlogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		WriteError(w, r, apperror.TokenMissing())
		return
	}

	if err := h.blogs.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateLikes replaces a blog's likes count. No auth.
//
// HTTP: PUT /api/blogs/{id}
// REQUEST BODY: {"likes": 12}
func (h *BlogHandler) HandleUpdateLikes(w http.ResponseWriter, r *http.Request) {
	var req updateLikesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMalformedBody(w, r, h.logger, err)
		return
	}

	blog, err := h.blogs.UpdateLikes(r.Context(), chi.URLParam(r, "id"), req.Likes)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectBlog(blog))
}

// HandleStats returns aggregate figures over all blogs.
//
// HTTP: GET /api/blogs/stats
func (h *BlogHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.blogs.Stats(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectStats(stats))
}
