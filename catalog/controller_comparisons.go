package catalog

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/touslux/catalog-api/auth"
)

// ComparisonsController handles the comparison HTTP surface.
type ComparisonsController struct {
	Repo         Comparisons
	Logger       auth.Logger
	ErrorHandler router.ErrorHandler
}

// ComparisonsControllerOption configures the comparisons controller.
type ComparisonsControllerOption func(*ComparisonsController)

// NewComparisonsController creates a new comparisons controller.
func NewComparisonsController(repo Comparisons, opts ...ComparisonsControllerOption) *ComparisonsController {
	c := &ComparisonsController{
		Repo:   repo,
		Logger: auth.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// WithComparisonsLogger sets the controller logger.
func WithComparisonsLogger(logger auth.Logger) ComparisonsControllerOption {
	return func(c *ComparisonsController) {
		c.Logger = logger
	}
}

// WithComparisonsErrorHandler sets the error renderer.
func WithComparisonsErrorHandler(handler router.ErrorHandler) ComparisonsControllerOption {
	return func(c *ComparisonsController) {
		c.ErrorHandler = handler
	}
}

// RegisterRoutes registers the comparison routes. admin guards the write
// surface. by-product registers before the :id wildcard.
func (c *ComparisonsController) RegisterRoutes(r auth.RouteRegistrar, admin router.MiddlewareFunc) {
	r.Post("/comparisons", c.Create, admin).SetName("comparisons.post")
	r.Get("/comparisons", c.List).SetName("comparisons.list")
	r.Get("/comparisons/by-product", c.ListByProduct).SetName("comparisons-by-product.get")
	r.Get("/comparisons/:id", c.Show).SetName("comparisons.get")
	r.Patch("/comparisons/:id", c.Update, admin).SetName("comparisons.patch")
	r.Delete("/comparisons/:id", c.Delete, admin).SetName("comparisons.delete")
}

// CreateComparisonPayload is the comparison creation payload.
type CreateComparisonPayload struct {
	BaseProductID     string   `json:"baseProductId" form:"baseProductId"`
	InspiredProductID string   `json:"inspiredProductId" form:"inspiredProductId"`
	SimilarityScore   *float64 `json:"similarityScore" form:"similarityScore"`
	Differences       []string `json:"differences" form:"differences"`
}

// Validate will validate the payload
func (p CreateComparisonPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.BaseProductID, validation.Required, is.UUID),
		validation.Field(&p.InspiredProductID, validation.Required, is.UUID),
		validation.Field(&p.SimilarityScore, validation.Min(0.0), validation.Max(100.0)),
	)
}

// UpdateComparisonPayload is the partial update payload.
type UpdateComparisonPayload struct {
	BaseProductID     *string   `json:"baseProductId" form:"baseProductId"`
	InspiredProductID *string   `json:"inspiredProductId" form:"inspiredProductId"`
	SimilarityScore   *float64  `json:"similarityScore" form:"similarityScore"`
	Differences       *[]string `json:"differences" form:"differences"`
}

// Validate will validate the payload
func (p UpdateComparisonPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.BaseProductID, is.UUID),
		validation.Field(&p.InspiredProductID, is.UUID),
		validation.Field(&p.SimilarityScore, validation.Min(0.0), validation.Max(100.0)),
	)
}

// Create records a comparison between two products.
func (c *ComparisonsController) Create(ctx router.Context) error {
	payload := new(CreateComparisonPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("create comparison parse payload: %s", err)
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	baseID, _ := uuid.Parse(payload.BaseProductID)
	inspiredID, _ := uuid.Parse(payload.InspiredProductID)

	created, err := c.Repo.Create(ctx.Context(), &Comparison{
		BaseProductID:     baseID,
		InspiredProductID: inspiredID,
		SimilarityScore:   payload.SimilarityScore,
		Differences:       payload.Differences,
	})
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, created)
}

// List returns all comparisons.
func (c *ComparisonsController) List(ctx router.Context) error {
	comparisons, err := c.Repo.List(ctx.Context())
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, comparisons)
}

// ListByProduct returns comparisons involving the given product on either
// side.
func (c *ComparisonsController) ListByProduct(ctx router.Context) error {
	productID, err := uuid.Parse(ctx.Query("productId"))
	if err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid product id").
			WithCode(errors.CodeBadRequest))
	}

	comparisons, err := c.Repo.FindByProduct(ctx.Context(), productID)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, comparisons)
}

// Show returns a single comparison with both products hydrated.
func (c *ComparisonsController) Show(ctx router.Context) error {
	id, err := parseComparisonID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	comparison, err := c.Repo.GetByID(ctx.Context(), id)
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Repo.Hydrate(ctx.Context(), comparison); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, comparison)
}

// Update applies a partial update to a comparison.
func (c *ComparisonsController) Update(ctx router.Context) error {
	id, err := parseComparisonID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := new(UpdateComparisonPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("update comparison parse payload: %s", err)
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	patch := ComparisonPatch{
		SimilarityScore: payload.SimilarityScore,
		Differences:     payload.Differences,
	}
	if payload.BaseProductID != nil {
		baseID, err := uuid.Parse(*payload.BaseProductID)
		if err != nil {
			return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid product reference").
				WithCode(errors.CodeBadRequest))
		}
		patch.BaseProductID = &baseID
	}
	if payload.InspiredProductID != nil {
		inspiredID, err := uuid.Parse(*payload.InspiredProductID)
		if err != nil {
			return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid product reference").
				WithCode(errors.CodeBadRequest))
		}
		patch.InspiredProductID = &inspiredID
	}

	updated, err := c.Repo.Update(ctx.Context(), id, patch)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

// Delete removes a comparison.
func (c *ComparisonsController) Delete(ctx router.Context) error {
	id, err := parseComparisonID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Repo.Delete(ctx.Context(), id); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"deleted": id.String(),
	})
}

func (c *ComparisonsController) fail(ctx router.Context, err error) error {
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

func parseComparisonID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid comparison id").
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}
