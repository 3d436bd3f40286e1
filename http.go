package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/tiendago/auth/middleware/jwtware"
)

const userLocalsKey = "auth_user"

// HTTPError is the JSON error envelope every failure renders to.
type HTTPError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

// RouteAuthenticator composes the two pipeline stages for protected
// routes: Authenticate (token verification plus fresh identity fetch) and
// Authorize (role guard against the registry). The split is structural:
// Authorize assumes Authenticate already ran and attached the user.
type RouteAuthenticator struct {
	strategy     *TokenAuthStrategy
	registry     *RoleRegistry
	cfg          Config
	Logger       Logger
	ErrorHandler fiber.ErrorHandler
}

// NewRouteAuthenticator builds the middleware pair from the shared
// strategy, the role registry, and the immutable config.
func NewRouteAuthenticator(strategy *TokenAuthStrategy, registry *RoleRegistry, cfg Config) *RouteAuthenticator {
	a := &RouteAuthenticator{
		strategy: strategy,
		registry: registry,
		cfg:      cfg.WithDefaults(),
		Logger:   defLogger{},
	}

	a.ErrorHandler = a.defaultErrorHandler

	return a
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = logger
	return a
}

// Registry exposes the role registry so controllers can declare
// requirements at startup.
func (a *RouteAuthenticator) Registry() *RoleRegistry {
	return a.registry
}

// Authenticate verifies the bearer token and attaches the freshly fetched
// user to the request. Rejections: missing/invalid/expired token, unknown
// identity, inactive account; all unauthorized.
func (a *RouteAuthenticator) Authenticate() fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: strategyValidator{a.strategy},
		ContextKey:     a.cfg.ContextKey,
		TokenLookup:    a.cfg.TokenLookup,
		AuthScheme:     a.cfg.AuthScheme,
		SuccessHandler: a.loadIdentity,
		ErrorHandler:   a.authErrorHandler,
	})
}

// Authorize enforces the role requirement declared for handlerID. No
// declaration, or an empty one, allows any authenticated caller through.
func (a *RouteAuthenticator) Authorize(handlerID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		required := a.registry.RolesFor(handlerID)
		if len(required) == 0 {
			return c.Next()
		}

		user, ok := UserFromFiber(c)
		if !ok {
			// Role guard without a prior authentication step is a wiring
			// bug, not a normal unauthorized case.
			a.Logger.Error("role guard reached without an authenticated user", "handler", handlerID)
			return a.ErrorHandler(c, ErrMissingAuthUser)
		}

		if user.HasAnyRole(required...) {
			return c.Next()
		}

		return a.ErrorHandler(c, NewForbiddenRoleError(user.FullName, required))
	}
}

// strategyValidator adapts the strategy to the middleware's validator
// interface, which declares its own claims type to avoid an import cycle.
type strategyValidator struct {
	strategy *TokenAuthStrategy
}

var _ jwtware.TokenValidator = strategyValidator{}

func (v strategyValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.strategy.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// loadIdentity is the second half of Authenticate: claims are already in
// Locals, fetch the current record and reject disabled accounts.
func (a *RouteAuthenticator) loadIdentity(c *fiber.Ctx) error {
	claims, ok := jwtware.ClaimsFromContext(c, a.cfg.ContextKey)
	if !ok {
		return a.ErrorHandler(c, ErrTokenNotValid)
	}

	user, err := a.strategy.ResolveUser(c.UserContext(), claims.UserID())
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	c.Locals(userLocalsKey, user)
	c.SetUserContext(WithContext(c.UserContext(), user))

	return c.Next()
}

func (a *RouteAuthenticator) authErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return c.Status(fiber.StatusUnauthorized).JSON(HTTPError{
			StatusCode: fiber.StatusUnauthorized,
			Message:    "Unauthorized",
		})
	}
	return a.ErrorHandler(c, err)
}

func (a *RouteAuthenticator) defaultErrorHandler(c *fiber.Ctx, err error) error {
	return RenderHTTPError(c, err, a.Logger)
}

// UserFromFiber returns the authenticated user attached by Authenticate.
func UserFromFiber(c *fiber.Ctx) (*User, bool) {
	if user, ok := c.Locals(userLocalsKey).(*User); ok {
		return user, true
	}
	return FromContext(c.UserContext())
}

// RenderHTTPError maps a failure onto the JSON envelope. Rich errors keep
// their status and message; anything else is a masked 500 with the cause
// logged, never returned.
func RenderHTTPError(c *fiber.Ctx, err error, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = statusFromCategory(richErr.Category)
	}

	message := richErr.Message
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			"error", err,
			"category", richErr.Category,
			"text_code", richErr.TextCode,
		)
		message = "An unexpected server error occurred"
	}

	return c.Status(status).JSON(HTTPError{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		return fiber.StatusBadRequest
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
