package model

import "time"

// Blog is a saved link to a blog post.
//
// UserID is set once at creation and never changes. Owner is filled in by
// repository reads that join the users table; it is nil when the owning
// user row is gone.
type Blog struct {
	ID        string
	Title     string
	Author    string
	URL       string
	Likes     int
	UserID    string
	Owner     *Owner
	CreatedAt time.Time
}

// Owner is the public slice of a User that gets joined onto a Blog.
type Owner struct {
	ID       string
	Username string
	Name     string
}
