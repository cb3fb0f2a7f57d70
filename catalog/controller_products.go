package catalog

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/touslux/catalog-api/auth"
)

// ProductsController handles the product HTTP surface.
type ProductsController struct {
	Repo         Products
	Logger       auth.Logger
	ErrorHandler router.ErrorHandler
}

// ProductsControllerOption configures the products controller.
type ProductsControllerOption func(*ProductsController)

// NewProductsController creates a new products controller.
func NewProductsController(repo Products, opts ...ProductsControllerOption) *ProductsController {
	c := &ProductsController{
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

// WithProductsLogger sets the controller logger.
func WithProductsLogger(logger auth.Logger) ProductsControllerOption {
	return func(c *ProductsController) {
		c.Logger = logger
	}
}

// WithProductsErrorHandler sets the error renderer.
func WithProductsErrorHandler(handler router.ErrorHandler) ProductsControllerOption {
	return func(c *ProductsController) {
		c.ErrorHandler = handler
	}
}

// RegisterRoutes registers the product routes. admin guards the write
// surface. The static segments register before the :id wildcard so
// /products/search and /products/slug/:slug are not captured by it.
func (c *ProductsController) RegisterRoutes(r auth.RouteRegistrar, admin router.MiddlewareFunc) {
	r.Post("/products", c.Create, admin).SetName("products.post")
	r.Get("/products", c.List).SetName("products.list")
	r.Get("/products/search", c.Search).SetName("products.search")
	r.Get("/products/slug/:slug", c.ShowBySlug).SetName("products-slug.get")
	r.Get("/products/:id", c.Show).SetName("products.get")
	r.Patch("/products/:id", c.Update, admin).SetName("products.patch")
	r.Delete("/products/:id", c.Delete, admin).SetName("products.delete")
}

// NotePayload mirrors a fragrance note in create and update payloads.
type NotePayload struct {
	Type string `json:"type" form:"type"`
	Name string `json:"name" form:"name"`
}

// Validate will validate the payload
func (p NotePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required),
		validation.Field(&p.Name, validation.Required),
	)
}

// CreateProductPayload is the product creation payload.
type CreateProductPayload struct {
	Name         string        `json:"name" form:"name"`
	Slug         string        `json:"slug" form:"slug"`
	Description  string        `json:"description" form:"description"`
	Price        float64       `json:"price" form:"price"`
	SizeML       int           `json:"sizeML" form:"sizeML"`
	Images       []string      `json:"images" form:"images"`
	Notes        []NotePayload `json:"notes" form:"notes"`
	Mood         string        `json:"mood" form:"mood"`
	Longevity    string        `json:"longevity" form:"longevity"`
	Projection   string        `json:"projection" form:"projection"`
	InspiredFrom []string      `json:"inspiredFrom" form:"inspiredFrom"`
}

// Validate will validate the payload
func (p CreateProductPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.SizeML, validation.Min(0)),
		validation.Field(&p.Images, validation.By(validateURLList)),
		validation.Field(&p.InspiredFrom, validation.By(validateUUIDList)),
	)
}

func (p CreateProductPayload) toProduct() (*Product, error) {
	inspired, err := parseUUIDList(p.InspiredFrom)
	if err != nil {
		return nil, err
	}

	notes := make([]Note, len(p.Notes))
	for i, n := range p.Notes {
		notes[i] = Note{Type: n.Type, Name: n.Name}
	}

	return &Product{
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		Price:        p.Price,
		SizeML:       p.SizeML,
		Images:       p.Images,
		Notes:        notes,
		Mood:         p.Mood,
		Longevity:    p.Longevity,
		Projection:   p.Projection,
		InspiredFrom: inspired,
	}, nil
}

// UpdateProductPayload is the partial update payload. Absent fields leave
// the record untouched.
type UpdateProductPayload struct {
	Name         *string        `json:"name" form:"name"`
	Slug         *string        `json:"slug" form:"slug"`
	Description  *string        `json:"description" form:"description"`
	Price        *float64       `json:"price" form:"price"`
	SizeML       *int           `json:"sizeML" form:"sizeML"`
	Images       *[]string      `json:"images" form:"images"`
	Notes        *[]NotePayload `json:"notes" form:"notes"`
	Mood         *string        `json:"mood" form:"mood"`
	Longevity    *string        `json:"longevity" form:"longevity"`
	Projection   *string        `json:"projection" form:"projection"`
	InspiredFrom *[]string      `json:"inspiredFrom" form:"inspiredFrom"`
}

// Validate will validate the payload
func (p UpdateProductPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(1, 255)),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.SizeML, validation.Min(0)),
	)
}

func (p UpdateProductPayload) toPatch() (ProductPatch, error) {
	patch := ProductPatch{
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		SizeML:      p.SizeML,
		Images:      p.Images,
		Mood:        p.Mood,
		Longevity:   p.Longevity,
		Projection:  p.Projection,
	}

	if p.Notes != nil {
		notes := make([]Note, len(*p.Notes))
		for i, n := range *p.Notes {
			notes[i] = Note{Type: n.Type, Name: n.Name}
		}
		patch.Notes = &notes
	}

	if p.InspiredFrom != nil {
		inspired, err := parseUUIDList(*p.InspiredFrom)
		if err != nil {
			return patch, err
		}
		patch.InspiredFrom = &inspired
	}

	return patch, nil
}

// Create adds a product to the catalog.
func (c *ProductsController) Create(ctx router.Context) error {
	payload := new(CreateProductPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("create product parse payload: %s", err)
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	product, err := payload.toProduct()
	if err != nil {
		return c.fail(ctx, err)
	}

	created, err := c.Repo.Create(ctx.Context(), product)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, created)
}

// List returns the full catalog.
func (c *ProductsController) List(ctx router.Context) error {
	products, err := c.Repo.List(ctx.Context())
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, products)
}

// Search returns products matching the q parameter against name and
// description.
func (c *ProductsController) Search(ctx router.Context) error {
	query := ctx.Query("q")

	products, err := c.Repo.Search(ctx.Context(), query)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(router.StatusOK, products)
}

// Show returns a single product with its inspirations resolved.
func (c *ProductsController) Show(ctx router.Context) error {
	id, err := parseProductID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	product, err := c.Repo.GetByID(ctx.Context(), id)
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Repo.ResolveInspirations(ctx.Context(), product); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, product)
}

// ShowBySlug returns a single product by slug with its inspirations
// resolved.
func (c *ProductsController) ShowBySlug(ctx router.Context) error {
	product, err := c.Repo.GetBySlug(ctx.Context(), ctx.Param("slug"))
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.Repo.ResolveInspirations(ctx.Context(), product); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, product)
}

// Update applies a partial update to a product.
func (c *ProductsController) Update(ctx router.Context) error {
	id, err := parseProductID(ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, err)
	}

	payload := new(UpdateProductPayload)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("update product parse payload: %s", err)
		return c.fail(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return c.fail(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid payload").
			WithCode(errors.CodeBadRequest))
	}

	patch, err := payload.toPatch()
	if err != nil {
		return c.fail(ctx, err)
	}

	updated, err := c.Repo.Update(ctx.Context(), id, patch)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

// Delete removes a product from the catalog.
func (c *ProductsController) Delete(ctx router.Context) error {
	id, err := parseProductID(ctx.Param("id"))
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

func (c *ProductsController) fail(ctx router.Context, err error) error {
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

func parseProductID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid product id").
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}

func validateURLList(value any) error {
	items, ok := value.([]string)
	if !ok {
		return nil
	}
	for _, item := range items {
		if err := is.URL.Validate(item); err != nil {
			return err
		}
	}
	return nil
}

func validateUUIDList(value any) error {
	items, ok := value.([]string)
	if !ok {
		return nil
	}
	for _, item := range items {
		if _, err := uuid.Parse(item); err != nil {
			return stderrors.New("must be a valid UUID")
		}
	}
	return nil
}

func parseUUIDList(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, item := range raw {
		id, err := uuid.Parse(item)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid product reference").
				WithCode(errors.CodeBadRequest)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
