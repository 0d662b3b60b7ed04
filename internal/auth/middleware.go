package auth

import (
	"context"
	"net/http"

	"github.com/sakif/bloglist/internal/model"
)

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the values we store.
type contextKey string

const userKey contextKey = "user"

// ErrorWriter renders an error as an HTTP response. The handler package
// supplies it so that auth failures share the API's error format.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireUser is a middleware that enforces authentication on protected
// routes.
//
// It reads the Authorization header, resolves the bearer token to a user
// and stores the user in the request context. Any failure is handed to
// writeErr and the chain stops there.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireUser(a *Authorizer, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.ResolveHeader(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user from the request context.
//
// Returns (nil, false) if the request did not pass through RequireUser.
//
//	user, ok := auth.UserFromContext(r.Context())
//	if !ok {
//	    // anonymous request
//	}
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}
