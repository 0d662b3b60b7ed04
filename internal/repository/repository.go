// Package repository declares the storage contracts the service layer depends
// on. Implementations live in subpackages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/bloglist/internal/model"
)

// BlogRepository persists blogs. Reads populate Blog.Owner when the owning
// user row exists and leave it nil otherwise.
type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	GetByID(ctx context.Context, id string) (*model.Blog, error)
	List(ctx context.Context) ([]model.Blog, error)
	UpdateLikes(ctx context.Context, id string, likes int) (*model.Blog, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository persists users and the per-user index of blog ids.
//
// Create returns an apperror.ErrConflict error when the username is taken.
// The uniqueness check is enforced by the store, so two concurrent
// registrations cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	AppendBlog(ctx context.Context, userID, blogID string) error
}
