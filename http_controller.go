package auth

import (
	"fmt"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Handler identifiers the role registry keys requirements under.
const (
	HandlerCheckStatus  = "auth.check-status"
	HandlerPrivate      = "auth.private"
	HandlerPrivateAdmin = "auth.private-admin"
)

type AuthControllerRoutes struct {
	Register     string
	Login        string
	CheckStatus  string
	Private      string
	PrivateAdmin string
}

// AuthController is the JSON surface over the orchestrator: register and
// login for unauthenticated callers, check-status to refresh a session,
// and two demo routes exercising the authenticate/authorize pipeline.
type AuthController struct {
	Debug  bool
	Logger Logger
	Auth   *Auther
	Auther *RouteAuthenticator
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthenticator(auth *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auth = auth
		return c
	}
}

func WithRouteAuthenticator(auther *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register:     "/auth/register",
			Login:        "/auth/login",
			CheckStatus:  "/auth/check-status",
			Private:      "/auth/private",
			PrivateAdmin: "/auth/private2",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auth == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the controller and declares the role
// requirements for its protected handlers. The declaration table is the
// single source the guard consults at dispatch time.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)
	auther := controller.Auther

	auther.Registry().
		Declare(HandlerPrivateAdmin, RoleAdmin, RoleSuperUser)

	app.Post(controller.Routes.Register, controller.RegisterPost)
	app.Post(controller.Routes.Login, controller.LoginPost)

	app.Get(controller.Routes.CheckStatus,
		auther.Authenticate(),
		controller.CheckStatus,
	)

	app.Get(controller.Routes.Private,
		auther.Authenticate(),
		controller.Private,
	)

	app.Get(controller.Routes.PrivateAdmin,
		auther.Authenticate(),
		auther.Authorize(HandlerPrivateAdmin),
		controller.PrivateAdmin,
	)

	return controller
}

// RegisterPayload is the sign-up body
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 50),
			validation.By(validatePasswordStrength),
		),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
	)
}

// LoginPayload is the sign-in body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) RegisterPost(ctx *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return RenderHTTPError(ctx, badRequest("Error parsing body"), a.Logger)
	}

	if err := payload.Validate(); err != nil {
		return RenderHTTPError(ctx, badRequest(err.Error()), a.Logger)
	}

	if a.Debug {
		// Payload is logged without the password; plaintext credentials
		// never hit a sink.
		a.Logger.Debug("register payload: %s", print.MaybePrettyJSON(map[string]string{
			"email":    payload.Email,
			"fullName": payload.FullName,
		}))
	}

	result, err := a.Auth.Register(ctx.Context(), RegisterMessage{
		Email:    payload.Email,
		Password: payload.Password,
		FullName: payload.FullName,
	})
	if err != nil {
		return RenderHTTPError(ctx, err, a.Logger)
	}

	return ctx.Status(fiber.StatusCreated).JSON(result)
}

func (a *AuthController) LoginPost(ctx *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return RenderHTTPError(ctx, badRequest("Error parsing body"), a.Logger)
	}

	if err := payload.Validate(); err != nil {
		return RenderHTTPError(ctx, badRequest(err.Error()), a.Logger)
	}

	result, err := a.Auth.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return RenderHTTPError(ctx, err, a.Logger)
	}

	return ctx.Status(fiber.StatusCreated).JSON(result)
}

// CheckStatus re-issues a token for the authenticated caller, extending
// the session without credentials.
func (a *AuthController) CheckStatus(ctx *fiber.Ctx) error {
	user, ok := UserFromFiber(ctx)
	if !ok {
		return RenderHTTPError(ctx, ErrMissingAuthUser, a.Logger)
	}

	result, err := a.Auth.Refresh(ctx.Context(), user)
	if err != nil {
		return RenderHTTPError(ctx, err, a.Logger)
	}

	return ctx.JSON(result)
}

// Private answers any authenticated identity.
func (a *AuthController) Private(ctx *fiber.Ctx) error {
	user, ok := UserFromFiber(ctx)
	if !ok {
		return RenderHTTPError(ctx, ErrMissingAuthUser, a.Logger)
	}

	return ctx.JSON(fiber.Map{
		"ok":        true,
		"user":      user,
		"userEmail": user.Email,
	})
}

// PrivateAdmin answers identities holding one of the admin roles.
func (a *AuthController) PrivateAdmin(ctx *fiber.Ctx) error {
	user, ok := UserFromFiber(ctx)
	if !ok {
		return RenderHTTPError(ctx, ErrMissingAuthUser, a.Logger)
	}

	return ctx.JSON(fiber.Map{
		"ok":   true,
		"user": user,
	})
}

func badRequest(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest)
}

// validatePasswordStrength requires an uppercase letter, a lowercase
// letter, and a digit.
func validatePasswordStrength(value any) error {
	s, _ := value.(string)

	var hasUpper, hasLower, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("The password must have a Uppercase, lowercase letter and a number")
	}

	return nil
}
