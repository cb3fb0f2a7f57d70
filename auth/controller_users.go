package auth

import (
	stderrors "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// UsersController handles the user profile and administration surface.
type UsersController struct {
	Repo         RepositoryManager
	Logger       Logger
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

// NewUsersController creates a new users controller.
func NewUsersController(repo RepositoryManager, opts ...func(*UsersController)) *UsersController {
	c := &UsersController{
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

// WithUsersLogger sets the controller logger.
func WithUsersLogger(logger Logger) func(*UsersController) {
	return func(c *UsersController) {
		c.Logger = logger
	}
}

// WithUsersErrorHandler sets the error renderer.
func WithUsersErrorHandler(handler router.ErrorHandler) func(*UsersController) {
	return func(c *UsersController) {
		c.ErrorHandler = handler
	}
}

// WithUsersContextKey sets the locals key claims are read from.
func WithUsersContextKey(key string) func(*UsersController) {
	return func(c *UsersController) {
		c.ContextKey = key
	}
}

// RegisterRoutes registers profile routes behind the session guard and the
// role admin route behind the admin guard.
func (c *UsersController) RegisterRoutes(r RouteRegistrar, protected, admin router.MiddlewareFunc) {
	r.Get("/users/me", c.ProfileShow, protected).SetName("users-me.get")
	r.Patch("/users/me", c.ProfileUpdate, protected).SetName("users-me.patch")
	r.Patch("/users/:id/roles", c.AssignRoles, admin).SetName("users-roles.patch")
}

// UpdateProfilePayload carries the mutable profile fields. Email, roles and
// the external subject id are not updatable here.
type UpdateProfilePayload struct {
	Name   string `json:"name" form:"name"`
	Avatar string `json:"avatar" form:"avatar"`
	Phone  string `json:"phone_number" form:"phone_number"`
}

// Validate will validate the payload
func (p UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(1, 200)),
		validation.Field(&p.Avatar, is.URL),
		validation.Field(&p.Phone, validation.By(validatePhoneNumber)),
	)
}

func validatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return fmt.Errorf("unable to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return stderrors.New("must be a valid phone number")
	}

	return nil
}

// ProfileShow returns the current user's profile.
func (c *UsersController) ProfileShow(ctx router.Context) error {
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

// ProfileUpdate applies a partial profile patch for the current user.
func (c *UsersController) ProfileUpdate(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, c.ContextKey)
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := new(UpdateProfilePayload)
	if err := ctx.Bind(payload); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid user id").
			WithCode(errors.CodeBadRequest))
	}

	record := &User{
		ID:        id,
		Name:      payload.Name,
		AvatarURL: payload.Avatar,
		Phone:     payload.Phone,
	}

	updated, err := c.Repo.Users().UpdateProfile(ctx.Context(), record)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated.PublicProfile())
}

// AssignRolesPayload carries the replacement role set.
type AssignRolesPayload struct {
	Roles []string `json:"roles" form:"roles"`
}

// Validate will validate the payload
func (p AssignRolesPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Roles, validation.Required, validation.By(validateRoles)),
	)
}

func validateRoles(value any) error {
	roles, _ := value.([]string)
	for _, role := range roles {
		if role == "" {
			return stderrors.New("roles must not contain empty values")
		}
	}
	return nil
}

// AssignRoles replaces a user's role set. Admin only; the target picks the
// change up on their next authentication.
func (c *UsersController) AssignRoles(ctx router.Context) error {
	payload := new(AssignRolesPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	var updated *User
	msg := AssignRolesMessage{
		UserID: ctx.Param("id"),
		Roles:  payload.Roles,
		OnResponse: func(u *User) {
			updated = u
		},
	}

	handler := NewAssignRolesHandler(c.Repo)
	if err := handler.Execute(ctx.Context(), msg); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated.PublicProfile())
}

func (c *UsersController) fail(ctx router.Context, err error) error {
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
