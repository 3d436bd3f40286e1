package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// AuthPayload is what register, login, and refresh hand back: the
// sanitized user record plus a freshly issued token.
type AuthPayload struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// RegisterMessage carries the ephemeral registration input. The plaintext
// password is consumed once by the hasher and never logged or echoed.
type RegisterMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Auther orchestrates the hasher, the user store, and the token service
// into the register, login, and refresh flows.
type Auther struct {
	users  Users
	tokens TokenService
	logger Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(users Users, cfg Config) *Auther {
	return &Auther{
		users:  users,
		tokens: NewTokenService(cfg, defLogger{}),
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService overrides the token service, e.g. to share one
// instance with the validation middleware.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Register normalizes the email, hashes the password, persists a new user
// with the default role, and issues a token keyed to the new id. A
// uniqueness violation surfaces as ErrDuplicateEmail; any other store
// failure is a server error with the cause logged, not returned.
func (s *Auther) Register(ctx context.Context, msg RegisterMessage) (*AuthPayload, error) {
	hash, err := HashPassword(msg.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        NormalizeEmail(msg.Email),
		PasswordHash: hash,
		FullName:     msg.FullName,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeDuplicateEmail {
			s.logger.Info("Register rejected duplicate email", "email", user.Email)
			return nil, richErr
		}
		s.logger.Error("Register persistence failure", "error", err)
		return nil, NewPersistenceError(err)
	}

	return s.issueFor(created)
}

// Login fetches the user by normalized email, including the password
// hash, and verifies the credentials. Unknown email and bad password are
// distinguishable by message but share the unauthorized status class.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			s.logger.Info("Login unknown email", "email", NormalizeEmail(email))
			return nil, ErrUserNotFound
		}
		s.logger.Error("Login persistence failure", "error", err)
		return nil, NewPersistenceError(err)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("Login credential mismatch", "user_id", user.ID.String())
		return nil, ErrInvalidCredentials
	}

	return s.issueFor(user)
}

// Refresh re-issues a token for an already-authenticated user, extending
// the session without re-submitting credentials. Caller authenticity is
// established by the token validation step that ran before this is
// reachable.
func (s *Auther) Refresh(ctx context.Context, user *User) (*AuthPayload, error) {
	if user == nil {
		return nil, ErrMissingAuthUser
	}
	return s.issueFor(user)
}

func (s *Auther) issueFor(user *User) (*AuthPayload, error) {
	token, err := s.tokens.Generate(user.ID.String())
	if err != nil {
		s.logger.Error("token generation failed", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue token")
	}

	return &AuthPayload{
		User:  user.Sanitize(),
		Token: token,
	}, nil
}
