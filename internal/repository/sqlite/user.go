package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table plus the user_blogs index.
type UserDB struct {
	conn *sql.DB
}

// Create inserts a user, assigning its ID and CreatedAt in place.
// A taken username yields apperror.ErrConflict.
func (s *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	if user.BlogIDs == nil {
		user.BlogIDs = []string{}
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}
	return nil
}

// GetByID returns the user with BlogIDs loaded.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getOne(ctx, `WHERE id = ?`, id)
}

// GetByUsername is the login lookup. Matching is exact and case-sensitive.
func (s *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getOne(ctx, `WHERE username = ?`, username)
}

func (s *UserDB) getOne(ctx context.Context, where string, arg string) (*model.User, error) {
	var u model.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, username, name, password_hash, created_at FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", arg, err)
	}

	index, err := s.blogIndex(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.BlogIDs = index[u.ID]
	if u.BlogIDs == nil {
		u.BlogIDs = []string{}
	}
	return &u, nil
}

// List returns every user in insertion order with BlogIDs loaded.
func (s *UserDB) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, username, name, password_hash, created_at FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}
	// The pool holds one connection: release it before the next query.
	rows.Close()

	index, err := s.blogIndex(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].BlogIDs = index[users[i].ID]
		if users[i].BlogIDs == nil {
			users[i].BlogIDs = []string{}
		}
	}
	return users, nil
}

// AppendBlog records blogID at the end of the user's index.
// Appending the same pair twice is a no-op.
func (s *UserDB) AppendBlog(ctx context.Context, userID, blogID string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_blogs (user_id, blog_id) VALUES (?, ?)`,
		userID, blogID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending blog %s to user %s: %w", blogID, userID, err)
	}
	return nil
}

// blogIndex loads user_blogs grouped by user, in append order.
// An empty userID loads the index for every user.
func (s *UserDB) blogIndex(ctx context.Context, userID string) (map[string][]string, error) {
	query := `SELECT user_id, blog_id FROM user_blogs`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY seq`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading blog index: %w", err)
	}
	defer rows.Close()

	index := make(map[string][]string)
	for rows.Next() {
		var uid, bid string
		if err := rows.Scan(&uid, &bid); err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog index row: %w", err)
		}
		index[uid] = append(index[uid], bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blog index rows: %w", err)
	}
	return index, nil
}
