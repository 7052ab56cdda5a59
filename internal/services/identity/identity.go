package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blogforge/internal/domain/models"
	"blogforge/internal/lib/jwt"
	"blogforge/internal/lib/logger/sl"
	"blogforge/internal/repository"
)

var ErrNotAuthenticated = errors.New("not authenticated")

type ctxKey struct{}

// ContextWithToken stashes the caller's bearer token for CurrentUser.
// The transport layer is the only writer.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ctxKey{}).(string)
	return token, ok && token != ""
}

// Service resolves the acting principal from a signed token checked against
// the session store.
type Service struct {
	log      *slog.Logger
	sessions repository.SessionRepository
	secret   string
	tokenTTL time.Duration
}

func New(log *slog.Logger, sessions repository.SessionRepository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		log:      log,
		sessions: sessions,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *Service) CurrentUser(ctx context.Context) (models.User, error) {
	const op = "identity.CurrentUser"

	token, ok := TokenFromContext(ctx)
	if !ok {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	user, err := jwt.Parse(token, s.secret)
	if err != nil {
		s.log.Warn("token rejected", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	active, err := s.sessions.SessionActive(ctx, user.ID.String(), token)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !active {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	return user, nil
}

// Issue signs a token for the user and registers the session.
func (s *Service) Issue(ctx context.Context, user models.User) (string, error) {
	const op = "identity.Issue"

	token, err := jwt.NewToken(user, s.secret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.SaveSession(ctx, user.ID.String(), token, s.tokenTTL); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Revoke invalidates one session token.
func (s *Service) Revoke(ctx context.Context, user models.User, token string) error {
	const op = "identity.Revoke"

	if err := s.sessions.DeleteSession(ctx, user.ID.String(), token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
