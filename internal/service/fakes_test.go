package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository.
// Set the *Err fields to simulate database failures.
type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*model.User
	order    []string
	createFn func(*model.User) error

	getByUsernameErr error
	appendErr        error
	listErr          error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFn != nil {
		if err := f.createFn(user); err != nil {
			return err
		}
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
	}
	user.ID = xid.New().String()
	stored := *user
	stored.BlogIDs = append([]string{}, user.BlogIDs...)
	f.users[user.ID] = &stored
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByUsernameErr != nil {
		return nil, f.getByUsernameErr
	}
	for _, u := range f.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.User, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.users[id])
	}
	return out, nil
}

func (f *fakeUserRepo) AppendBlog(_ context.Context, userID, blogID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	u.BlogIDs = append(u.BlogIDs, blogID)
	return nil
}

// fakeBlogRepo is an in-memory repository.BlogRepository.
type fakeBlogRepo struct {
	mu    sync.Mutex
	blogs map[string]*model.Blog
	order []string

	createErr error
	deleteErr error
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{blogs: make(map[string]*model.Blog)}
}

func (f *fakeBlogRepo) Create(_ context.Context, blog *model.Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	blog.ID = xid.New().String()
	stored := *blog
	f.blogs[blog.ID] = &stored
	f.order = append(f.order, blog.ID)
	return nil
}

func (f *fakeBlogRepo) GetByID(_ context.Context, id string) (*model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return nil, apperror.NotFound("blog", id)
	}
	out := *b
	return &out, nil
}

func (f *fakeBlogRepo) List(_ context.Context) ([]model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Blog{}
	for _, id := range f.order {
		if b, ok := f.blogs[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBlogRepo) UpdateLikes(_ context.Context, id string, likes int) (*model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return nil, apperror.NotFound("blog", id)
	}
	b.Likes = likes
	out := *b
	return &out, nil
}

func (f *fakeBlogRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.blogs[id]; !ok {
		return apperror.NotFound("blog", id)
	}
	delete(f.blogs, id)
	return nil
}

func (f *fakeBlogRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blogs)
}

var errDBDown = errors.New("database is down")

// newTestLogger discards everything below error level.
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func intPtr(v int) *int { return &v }
