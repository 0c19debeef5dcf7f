// Package service holds the business logic between the HTTP handlers and
// the repositories. Services validate input, enforce auth rules, run the
// risk and prediction engines, and record audit entries; they never touch
// HTTP types directly.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/auth"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/repository"
)

const maxUsernameLen = 64

// AuthService handles signup and login.
type AuthService struct {
	users     repository.UserRepository
	audits    repository.AuditRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	audits repository.AuditRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		audits:    audits,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued session token so the handler
// can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUp creates a new account. The username must be unique;
// apperror.ErrDuplicateUser reports a taken name.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > maxUsernameLen {
		return nil, apperror.ValidationFailed("username", fmt.Sprintf("username must be at most %d characters", maxUsernameLen))
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user signed up", slog.String("username", username))
	s.audit(ctx, username, model.AuditSignup, "")

	return user, nil
}

// Login verifies the credentials and issues a session token. Unknown
// usernames and wrong passwords both map to the same generic
// apperror.ErrUnauthorized so login failures reveal nothing about which
// usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Unauthorized()
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Unauthorized()
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Warn("failed login attempt", slog.String("username", username))
		return nil, apperror.Unauthorized()
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %q: %w", username, err)
	}

	s.logger.Info("user logged in", slog.String("username", username))
	s.audit(ctx, username, model.AuditLogin, "")

	return &AuthResult{User: user, Token: token}, nil
}

// CurrentUser looks up the account behind a validated session.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %q: %w", username, err)
	}
	return user, nil
}

// audit records an entry. A failed audit write is logged, not returned:
// the history log never blocks the operation it describes.
func (s *AuthService) audit(ctx context.Context, username, action, metadata string) {
	err := s.audits.Record(ctx, &model.AuditEntry{
		Username: username,
		Action:   action,
		Metadata: metadata,
	})
	if err != nil {
		s.logger.Error("audit write failed",
			slog.String("username", username),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
