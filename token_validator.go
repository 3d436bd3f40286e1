package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenAuthStrategy turns a bearer token into an authenticated user, or a
// terminal rejection. Every call re-fetches the identity from the store:
// deactivation and role changes take effect on the very next request, not
// when the token eventually expires. Do not cache the result across
// requests.
type TokenAuthStrategy struct {
	tokens TokenValidator
	users  Users
	logger Logger
}

// NewTokenAuthStrategy returns a new TokenAuthStrategy
func NewTokenAuthStrategy(tokens TokenValidator, users Users) *TokenAuthStrategy {
	return &TokenAuthStrategy{
		tokens: tokens,
		users:  users,
		logger: defLogger{},
	}
}

func (s *TokenAuthStrategy) WithLogger(logger Logger) *TokenAuthStrategy {
	s.logger = logger
	return s
}

// Validate satisfies TokenValidator so the strategy can sit behind the
// extraction middleware directly.
func (s *TokenAuthStrategy) Validate(tokenString string) (AuthClaims, error) {
	return s.tokens.Validate(tokenString)
}

// Authenticate runs the full pipeline: verify the token, extract the
// identity reference, fetch the current record, and gate on IsActive.
func (s *TokenAuthStrategy) Authenticate(ctx context.Context, rawToken string) (*User, error) {
	claims, err := s.tokens.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	return s.ResolveUser(ctx, claims.UserID())
}

// ResolveUser covers the post-verification steps for callers that already
// hold validated claims (e.g. the HTTP middleware).
func (s *TokenAuthStrategy) ResolveUser(ctx context.Context, userID string) (*User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		s.logger.Warn("token claim carries a non-uuid identity reference", "uid", userID)
		return nil, ErrTokenNotValid
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrTokenNotValid
		}
		s.logger.Error("identity re-fetch failed", "error", err)
		return nil, NewPersistenceError(err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return user, nil
}
