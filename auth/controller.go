package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods controllers register against.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Controller handles the authentication HTTP surface.
type Controller struct {
	Issuer       *SessionIssuer
	Repo         RepositoryManager
	Logger       Logger
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

// ControllerOption configures the auth controller.
type ControllerOption func(*Controller)

// NewController creates a new auth controller.
func NewController(issuer *SessionIssuer, repo RepositoryManager, opts ...ControllerOption) *Controller {
	c := &Controller{
		Issuer:     issuer,
		Repo:       repo,
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) {
		c.Logger = logger
	}
}

// WithControllerErrorHandler sets the error renderer.
func WithControllerErrorHandler(handler router.ErrorHandler) ControllerOption {
	return func(c *Controller) {
		c.ErrorHandler = handler
	}
}

// WithControllerContextKey sets the locals key claims are read from.
func WithControllerContextKey(key string) ControllerOption {
	return func(c *Controller) {
		c.ContextKey = key
	}
}

// RegisterRoutes registers the auth routes. protected must be the Bearer
// guard built from the same token service this controller's issuer signs
// with.
func (c *Controller) RegisterRoutes(r RouteRegistrar, protected router.MiddlewareFunc) {
	r.Post("/auth/firebase", c.AuthenticateWithFirebase).SetName("auth-firebase.post")
	r.Get("/auth/me", c.CurrentUser, protected).SetName("auth-me.get")
}

// FirebaseAuthPayload is the credential exchange payload.
type FirebaseAuthPayload struct {
	IDToken string `json:"idToken" form:"idToken"`
}

// Validate will validate the payload
func (p FirebaseAuthPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.IDToken, validation.Required),
	)
}

// AuthenticateWithFirebase exchanges a Firebase ID token for a local session
// token and the user's public profile.
func (c *Controller) AuthenticateWithFirebase(ctx router.Context) error {
	payload := new(FirebaseAuthPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("authenticate parse payload: %s", err)
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	result, err := c.Issuer.Authenticate(ctx.Context(), payload.IDToken)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// CurrentUser returns the profile for the session's user, read fresh from
// the directory rather than echoed from token claims.
func (c *Controller) CurrentUser(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, c.ContextKey)
	if err != nil {
		return c.fail(ctx, err)
	}

	user, err := c.Repo.Users().GetByID(ctx.Context(), claims.UserID())
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user.PublicProfile())
}

func (c *Controller) fail(ctx router.Context, err error) error {
	if c.ErrorHandler != nil {
		return c.ErrorHandler(ctx, err)
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "unexpected server error").
			WithCode(errors.CodeInternal)
	}

	return ctx.JSON(richErr.Code, map[string]any{
		"error": richErr.Message,
	})
}
