// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes to the database
//
// Services take repository interfaces, never *sqlite.DB, so tests can pass
// in-memory fakes. They return apperror values; the handler picks the status.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
	"github.com/sakif/bloglist/internal/stats"
)

// BlogService handles business logic for blogs.
type BlogService struct {
	blogs  repository.BlogRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewBlogService creates a BlogService. users is needed for the owner index.
func NewBlogService(blogs repository.BlogRepository, users repository.UserRepository, logger *slog.Logger) *BlogService {
	return &BlogService{
		blogs:  blogs,
		users:  users,
		logger: logger,
	}
}

// CreateBlogInput is what a caller may supply for a new blog.
// Likes is a pointer so "absent" and "zero" stay distinguishable.
type CreateBlogInput struct {
	Title  string
	Author string
	URL    string
	Likes  *int
}

// Stats is the aggregate view over all blogs. The pointer members are nil
// when there are no blogs.
type Stats struct {
	TotalLikes   int
	FavoriteBlog *model.Blog
	MostBlogs    *stats.AuthorCount
	MostLikes    *stats.AuthorCount
}

// parseBlogID rejects anything that is not a well-formed blog id.
func parseBlogID(id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.InvalidID("blog", id)
	}
	return nil
}

// List returns all blogs in creation order with owners joined.
func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		s.logger.Error("failed to list blogs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing blogs: %w", err)
	}
	return blogs, nil
}

// Get returns one blog.
func (s *BlogService) Get(ctx context.Context, id string) (*model.Blog, error) {
	if err := parseBlogID(id); err != nil {
		return nil, err
	}
	return s.blogs.GetByID(ctx, id)
}

// Create validates in and stores a blog owned by caller.
//
// The blog row and the owner index entry are written separately. If the
// index append fails the blog still exists and is still owned by caller;
// the failure is logged and the blog is returned.
func (s *BlogService) Create(ctx context.Context, caller *model.User, in CreateBlogInput) (*model.Blog, error) {
	if caller == nil {
		return nil, apperror.TokenMissing()
	}

	title := strings.TrimSpace(in.Title)
	url := strings.TrimSpace(in.URL)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if url == "" {
		return nil, apperror.ValidationFailed("url", "url is required")
	}

	likes := 0
	if in.Likes != nil {
		if *in.Likes < 0 {
			return nil, apperror.ValidationFailed("likes", "likes must be a non-negative integer")
		}
		likes = *in.Likes
	}

	blog := &model.Blog{
		Title:  title,
		Author: strings.TrimSpace(in.Author),
		URL:    url,
		Likes:  likes,
		UserID: caller.ID,
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		s.logger.Error("failed to create blog",
			slog.String("title", title),
			slog.String("userID", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating blog: %w", err)
	}
	blog.Owner = &model.Owner{ID: caller.ID, Username: caller.Username, Name: caller.Name}

	if err := s.users.AppendBlog(ctx, caller.ID, blog.ID); err != nil {
		s.logger.Warn("blog created but owner index not updated",
			slog.String("blogID", blog.ID),
			slog.String("userID", caller.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("blog created",
		slog.String("id", blog.ID),
		slog.String("title", blog.Title),
		slog.String("userID", caller.ID),
	)
	return blog, nil
}

// Delete removes a blog if caller created it.
//
// Checks run in this order: id shape (400), existence (404), ownership (403).
func (s *BlogService) Delete(ctx context.Context, caller *model.User, id string) error {
	if caller == nil {
		return apperror.TokenMissing()
	}
	if err := parseBlogID(id); err != nil {
		return err
	}

	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blog.UserID != caller.ID {
		s.logger.Warn("blog delete refused",
			slog.String("id", id),
			slog.String("ownerID", blog.UserID),
			slog.String("callerID", caller.ID),
		)
		return apperror.Forbidden("only the creator can delete a blog")
	}

	if err := s.blogs.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// deleted concurrently; the caller's intent is satisfied
			return nil
		}
		s.logger.Error("failed to delete blog",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting blog: %w", err)
	}

	s.logger.Info("blog deleted", slog.String("id", id), slog.String("userID", caller.ID))
	return nil
}

// UpdateLikes replaces the likes count. It does not require a caller.
func (s *BlogService) UpdateLikes(ctx context.Context, id string, likes *int) (*model.Blog, error) {
	if err := parseBlogID(id); err != nil {
		return nil, err
	}
	if likes == nil {
		return nil, apperror.ValidationFailed("likes", "likes is required")
	}
	if *likes < 0 {
		return nil, apperror.ValidationFailed("likes", "likes must be a non-negative integer")
	}

	blog, err := s.blogs.UpdateLikes(ctx, id, *likes)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update likes",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating likes: %w", err)
	}

	s.logger.Info("blog likes updated", slog.String("id", id), slog.Int("likes", blog.Likes))
	return blog, nil
}

// Stats computes aggregates over every blog.
func (s *BlogService) Stats(ctx context.Context) (*Stats, error) {
	blogs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &Stats{TotalLikes: stats.TotalLikes(blogs)}
	if fav, ok := stats.FavoriteBlog(blogs); ok {
		out.FavoriteBlog = &fav
	}
	if top, ok := stats.MostBlogs(blogs); ok {
		out.MostBlogs = &top
	}
	if top, ok := stats.MostLikes(blogs); ok {
		out.MostLikes = &top
	}
	return out, nil
}
