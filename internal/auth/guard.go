package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

var (
	// ErrMissingCredential means no usable bearer credential was presented.
	ErrMissingCredential = errors.New("missing bearer credential")
	// ErrUnauthorized covers every other rejection: bad or expired token,
	// or a token for a user that no longer exists.
	ErrUnauthorized = errors.New("unauthorized")
)

// UserLookup is the slice of the credential store the guard needs.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Guard resolves the calling user from an Authorization header value.
type Guard struct {
	tokens *TokenService
	users  UserLookup
	logger *logrus.Logger
}

func NewGuard(tokens *TokenService, users UserLookup, logger *logrus.Logger) *Guard {
	if logger == nil {
		logger = logrus.New()
	}
	return &Guard{tokens: tokens, users: users, logger: logger}
}

// ResolveCaller validates the bearer credential and loads its user.
// Callers only ever see ErrMissingCredential or ErrUnauthorized for
// rejected credentials; other errors come from the store.
func (g *Guard) ResolveCaller(ctx context.Context, authorization string) (*domain.User, error) {
	raw, ok := BearerToken(authorization)
	if !ok {
		return nil, ErrMissingCredential
	}

	username, err := g.tokens.Verify(raw)
	if err != nil {
		g.reject("token", err)
		return nil, ErrUnauthorized
	}

	user, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			g.reject("user", err)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve caller: %w", err)
	}
	return user, nil
}

func (g *Guard) reject(reason string, err error) {
	g.logger.WithFields(logrus.Fields{
		"reason": reason,
		"error":  err.Error(),
	}).Debug("authentication failed")
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(authorization string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
