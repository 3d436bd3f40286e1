package auth

import goerrors "github.com/goliatone/go-errors"

// Config holds auth options. It is plain immutable data: build it once at
// startup and pass it by value to the token service, the orchestrator,
// and the HTTP layer. Rotating the signing key means restarting with a
// new Config, which invalidates all outstanding tokens.
type Config struct {
	// SigningKey is the process-wide HS256 secret.
	SigningKey string
	// TokenExpiration is the token TTL in hours.
	TokenExpiration int
	// Issuer and Audience are embedded in and checked on every token.
	Issuer   string
	Audience []string
	// ContextKey is the request-locals key the middleware stores claims
	// under. Defaults to "user".
	ContextKey string
	// TokenLookup tells the middleware where the raw token lives, e.g.
	// "header:Authorization". Defaults to the Authorization header.
	TokenLookup string
	// AuthScheme is the expected header scheme. Defaults to "Bearer".
	AuthScheme string
	// DefaultRole is granted to every new registration. Defaults to
	// RoleUser.
	DefaultRole string
}

// WithDefaults fills the zero-valued optional fields.
func (c Config) WithDefaults() Config {
	if c.TokenExpiration == 0 {
		c.TokenExpiration = 2
	}
	if c.ContextKey == "" {
		c.ContextKey = "user"
	}
	if c.TokenLookup == "" {
		c.TokenLookup = "header:Authorization"
	}
	if c.AuthScheme == "" {
		c.AuthScheme = "Bearer"
	}
	if c.DefaultRole == "" {
		c.DefaultRole = RoleUser
	}
	return c
}

// Validate rejects configurations that cannot issue verifiable tokens.
func (c Config) Validate() error {
	if c.SigningKey == "" {
		return goerrors.New("auth config requires a signing key", goerrors.CategoryValidation)
	}
	if c.TokenExpiration < 0 {
		return goerrors.New("token expiration must not be negative", goerrors.CategoryValidation)
	}
	return nil
}
