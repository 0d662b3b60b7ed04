package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
)

const bearerPrefix = "bearer "

// UserLookup is the slice of the user repository the authorizer needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ExtractToken pulls the raw token out of an Authorization header value.
//
// The "Bearer " prefix is matched case-insensitively. A missing header or
// any other scheme yields ok == false. That is not an error here: only a
// route that requires a user turns a missing token into TokenMissing.
func ExtractToken(header string) (token string, ok bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token = strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// Authorizer turns a bearer token into a user record.
// It holds no per-request state and is safe for concurrent use.
type Authorizer struct {
	tokens *TokenService
	users  UserLookup
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(tokens *TokenService, users UserLookup) *Authorizer {
	return &Authorizer{tokens: tokens, users: users}
}

// Resolve verifies a token and loads the user it names.
//
// Failure branches, in order:
//   - no token                          → TokenMissing (401)
//   - bad signature, expired, wrong iss → TokenInvalid (401)
//   - payload without a user id         → TokenInvalid (401)
//   - user id unknown to the store      → UserNotFound (400)
//
// Store failures other than "not found" are returned wrapped, unclassified.
func (a *Authorizer) Resolve(ctx context.Context, token string, present bool) (*model.User, error) {
	if !present || token == "" {
		return nil, apperror.TokenMissing()
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, apperror.TokenInvalid()
	}
	if claims.ID == "" {
		return nil, apperror.TokenInvalid()
	}

	user, err := a.users.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.UserNotFound()
		}
		return nil, fmt.Errorf("auth: resolving user %s: %w", claims.ID, err)
	}

	return user, nil
}

// ResolveHeader is ExtractToken followed by Resolve.
func (a *Authorizer) ResolveHeader(ctx context.Context, header string) (*model.User, error) {
	token, ok := ExtractToken(header)
	return a.Resolve(ctx, token, ok)
}
