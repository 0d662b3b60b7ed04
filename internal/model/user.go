// Package model defines the data structures used throughout the application.
//
// Models are plain records. They carry no JSON tags: the HTTP layer owns
// the wire shape and builds it with explicit projection functions, so the
// password hash can never leak through a forgotten tag.
package model

import "time"

// User is a registered account.
//
// BlogIDs is the owner index: the ids of blogs this user created, in
// creation order. It is advisory. Blog.UserID is the source of truth for
// ownership, and the index may lag behind it after a partial failure.
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	BlogIDs      []string
	CreatedAt    time.Time
}
