package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/repository"
)

// AuthService handles password login.
//
//	LoginHandler (HTTP) → AuthService → UserRepository (DB)
//	                                  ↘ PasswordService (bcrypt)
//	                                  ↘ TokenService (JWT)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token    string
	Username string
	Name     string
}

// Login checks a username/password pair and issues a token.
//
// An unknown username and a wrong password produce the same error so the
// response does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("login failed", slog.String("username", username), slog.String("reason", "unknown user"))
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash is unusable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Info("login failed", slog.String("username", username), slog.String("reason", "bad password"))
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.Username, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID), slog.String("username", user.Username))
	return &LoginResult{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}
