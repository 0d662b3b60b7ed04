package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// MinCredentialLength applies to both username and password, in characters.
const MinCredentialLength = 3

// UserService handles registration and the user listing.
type UserService struct {
	users     repository.UserRepository
	blogs     repository.BlogRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	blogs repository.BlogRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		blogs:     blogs,
		passwords: passwords,
		logger:    logger,
	}
}

// UserWithBlogs is a user plus the blogs its owner index resolves to.
type UserWithBlogs struct {
	User  model.User
	Blogs []model.Blog
}

// Register creates an account.
//
// Duplicate usernames are caught twice: by a lookup here, which gives the
// common case a clean error, and by the store's UNIQUE constraint, which
// settles two registrations racing past the lookup.
func (s *UserService) Register(ctx context.Context, username, name, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.MissingField("username and password are required")
	}
	if utf8.RuneCountInString(username) < MinCredentialLength || utf8.RuneCountInString(password) < MinCredentialLength {
		return nil, apperror.TooShort(fmt.Sprintf(
			"username and password must be at least %d characters long", MinCredentialLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at most %d bytes long", auth.MaxPasswordBytes))
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, apperror.DuplicateUsername()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking username: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		BlogIDs:      []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.DuplicateUsername()
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// List returns every user with its blogs resolved from the owner index.
// Index entries whose blog no longer exists are skipped.
func (s *UserService) List(ctx context.Context) ([]UserWithBlogs, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		s.logger.Error("failed to list blogs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing blogs: %w", err)
	}

	byID := make(map[string]model.Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}

	out := make([]UserWithBlogs, 0, len(users))
	for _, u := range users {
		owned := make([]model.Blog, 0, len(u.BlogIDs))
		for _, id := range u.BlogIDs {
			if b, ok := byID[id]; ok {
				owned = append(owned, b)
			}
		}
		out = append(out, UserWithBlogs{User: u, Blogs: owned})
	}
	return out, nil
}
