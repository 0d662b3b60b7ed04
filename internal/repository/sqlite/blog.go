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

// compile-time check that *BlogDB implements repository.BlogRepository
var _ repository.BlogRepository = (*BlogDB)(nil)

// BlogDB is the blogs table.
type BlogDB struct {
	conn *sql.DB
}

// selectBlog joins the owner so a single round trip yields the projection the
// API returns. The LEFT JOIN keeps blogs whose owner row is missing.
const selectBlog = `
	SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at,
	       u.id, u.username, u.name
	FROM blogs b
	LEFT JOIN users u ON u.id = b.user_id`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(s rowScanner) (*model.Blog, error) {
	var (
		b                       model.Blog
		ownerID, uname, ownName sql.NullString
	)
	err := s.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.URL,
		&b.Likes,
		&b.UserID,
		&b.CreatedAt,
		&ownerID,
		&uname,
		&ownName,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		b.Owner = &model.Owner{ID: ownerID.String, Username: uname.String, Name: ownName.String}
	}
	return &b, nil
}

// Create inserts a blog, assigning its ID and CreatedAt in place.
// blog.UserID must name an existing user.
func (s *BlogDB) Create(ctx context.Context, blog *model.Blog) error {
	blog.ID = xid.New().String()
	blog.CreatedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO blogs (id, title, author, url, likes, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		blog.ID,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.UserID,
		blog.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting blog %q: %w", blog.Title, err)
	}
	return nil
}

// GetByID returns the blog with its owner populated.
// Returns apperror.ErrNotFound if no blog exists with that ID.
func (s *BlogDB) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	b, err := scanBlog(s.conn.QueryRowContext(ctx, selectBlog+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("blog", id)
		}
		return nil, fmt.Errorf("sqlite: getting blog %s: %w", id, err)
	}
	return b, nil
}

// List returns every blog in insertion order.
func (s *BlogDB) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := s.conn.QueryContext(ctx, selectBlog+` ORDER BY b.rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blogs: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	blogs := []model.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog row: %w", err)
		}
		blogs = append(blogs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blog rows: %w", err)
	}
	return blogs, nil
}

// UpdateLikes overwrites the likes count and returns the updated blog.
func (s *BlogDB) UpdateLikes(ctx context.Context, id string, likes int) (*model.Blog, error) {
	result, err := s.conn.ExecContext(ctx, `UPDATE blogs SET likes = ? WHERE id = ?`, likes, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating likes for blog %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("blog", id)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a blog. Its user_blogs entry goes with it (ON DELETE CASCADE).
// Returns apperror.ErrNotFound if no blog exists with that ID.
func (s *BlogDB) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting blog %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("blog", id)
	}
	return nil
}
