package reviews

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/touslux/catalog-api/auth"
)

// Controller handles the review HTTP surface.
type Controller struct {
	Service      *Service
	Logger       auth.Logger
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

// ControllerOption configures the reviews controller.
type ControllerOption func(*Controller)

// NewController creates a new reviews controller.
func NewController(service *Service, opts ...ControllerOption) *Controller {
	c := &Controller{
		Service:    service,
		Logger:     auth.DefaultLogger(),
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
func WithControllerLogger(logger auth.Logger) ControllerOption {
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

// RegisterRoutes registers the review routes. protected is the Bearer
// guard; reads are public except for the acting user's own listing.
func (c *Controller) RegisterRoutes(r auth.RouteRegistrar, protected router.MiddlewareFunc) {
	r.Post("/reviews", c.Create, protected).SetName("reviews.post")
	r.Get("/reviews", c.List).SetName("reviews.list")
	r.Get("/reviews/by-product", c.ListByProduct).SetName("reviews-by-product.get")
	r.Get("/reviews/by-user", c.ListByUser, protected).SetName("reviews-by-user.get")
	r.Get("/reviews/:id", c.Show).SetName("reviews.get")
	r.Patch("/reviews/:id", c.Update, protected).SetName("reviews.patch")
	r.Delete("/reviews/:id", c.Delete, protected).SetName("reviews.delete")
}

// CreateReviewPayload is the review creation payload.
type CreateReviewPayload struct {
	ProductID string `json:"productId" form:"productId"`
	Rating    int    `json:"rating" form:"rating"`
	Comment   string `json:"comment" form:"comment"`
}

// Validate will validate the payload
func (p CreateReviewPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ProductID, validation.Required, is.UUID),
		validation.Field(&p.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&p.Comment, validation.Required, validation.Length(1, 2000)),
	)
}

// UpdateReviewPayload is the partial review update payload.
type UpdateReviewPayload struct {
	Rating  *int    `json:"rating" form:"rating"`
	Comment *string `json:"comment" form:"comment"`
}

// Validate will validate the payload
func (p UpdateReviewPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Rating, validation.Min(1), validation.Max(5)),
		validation.Field(&p.Comment, validation.Length(1, 2000)),
	)
}

// Create records a review owned by the session user.
func (c *Controller) Create(ctx router.Context) error {
	claims, err := auth.ClaimsFromContext(ctx, c.ContextKey)
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := new(CreateReviewPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("create review parse payload: %s", err)
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	productID, _ := uuid.Parse(payload.ProductID)

	created, err := c.Service.Create(ctx.Context(), claims.UserID(), &Review{
		ProductID: productID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
	})
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, created)
}

// List returns all reviews.
func (c *Controller) List(ctx router.Context) error {
	reviews, err := c.Service.List(ctx.Context())
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, reviews)
}

// ListByProduct returns the reviews for the productId query parameter.
func (c *Controller) ListByProduct(ctx router.Context) error {
	productID, err := uuid.Parse(ctx.Query("productId"))
	if err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid product id").
			WithCode(errors.CodeBadRequest))
	}

	reviews, err := c.Service.ListByProduct(ctx.Context(), productID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, reviews)
}

// ListByUser returns the session user's reviews.
func (c *Controller) ListByUser(ctx router.Context) error {
	claims, err := auth.ClaimsFromContext(ctx, c.ContextKey)
	if err != nil {
		return c.fail(ctx, err)
	}

	reviews, err := c.Service.ListByUser(ctx.Context(), claims.UserID())
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, reviews)
}

// Show returns a single review.
func (c *Controller) Show(ctx router.Context) error {
	id, err := parseReviewID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	review, err := c.Service.Get(ctx.Context(), id)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, review)
}

// Update patches a review through the ownership guard.
func (c *Controller) Update(ctx router.Context) error {
	claims, err := auth.ClaimsFromContext(ctx, c.ContextKey)
	if err != nil {
		return c.fail(ctx, err)
	}

	id, err := parseReviewID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := new(UpdateReviewPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("update review parse payload: %s", err)
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	updated, err := c.Service.Update(ctx.Context(), id, claims.UserID(), ReviewPatch{
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

// Delete removes a review through the ownership guard.
func (c *Controller) Delete(ctx router.Context) error {
	claims, err := auth.ClaimsFromContext(ctx, c.ContextKey)
	if err != nil {
		return c.fail(ctx, err)
	}

	id, err := parseReviewID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Service.Delete(ctx.Context(), id, claims.UserID()); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"deleted": id.String(),
	})
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

func parseReviewID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid review id").
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}
