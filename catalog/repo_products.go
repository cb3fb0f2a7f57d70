package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/uptrace/bun"

	"github.com/touslux/catalog-api/auth"
)

// ProductPatch carries a partial product update. Nil fields are left
// untouched.
type ProductPatch struct {
	Name         *string
	Slug         *string
	Description  *string
	Price        *float64
	SizeML       *int
	Images       *[]string
	Notes        *[]Note
	Mood         *string
	Longevity    *string
	Projection   *string
	InspiredFrom *[]uuid.UUID
}

// Products is the product repository.
type Products interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, slugStr string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Search(ctx context.Context, query string) ([]*Product, error)
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResolveInspirations(ctx context.Context, product *Product) error
}

// ProductRepository implements Products using Bun.
type ProductRepository struct {
	db bun.IDB
}

// NewProductRepository creates a new repository.
func NewProductRepository(db bun.IDB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product. A missing slug is derived from the name, and a
// slug collision surfaces as a conflict.
func (r *ProductRepository) Create(ctx context.Context, product *Product) (*Product, error) {
	if product == nil {
		return nil, goerrors.New("product is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	if strings.TrimSpace(product.Slug) == "" {
		product.Slug = slug.Make(product.Name)
	} else {
		product.Slug = slug.Make(product.Slug)
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(product).
		Exec(ctx)
	if err != nil {
		if auth.IsDuplicateKeyError(err) {
			return nil, duplicateSlugError(err, product.Slug)
		}
		return nil, err
	}

	return product, nil
}

// GetByID fetches a single product.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	product := &Product{}
	err := r.db.NewSelect().
		Model(product).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, productLookupError(err, map[string]any{"id": id.String()})
	}
	return product, nil
}

// GetBySlug fetches a single product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slugStr string) (*Product, error) {
	product := &Product{}
	err := r.db.NewSelect().
		Model(product).
		Where("?TableAlias.slug = ?", slugStr).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, productLookupError(err, map[string]any{"slug": slugStr})
	}
	return product, nil
}

// List returns all products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]*Product, error) {
	var products []*Product
	err := r.db.NewSelect().
		Model(&products).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*Product{}, nil
		}
		return nil, err
	}
	return products, nil
}

// Search matches the query case-insensitively against name and description.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]*Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var products []*Product
	err := r.db.NewSelect().
		Model(&products).
		Where("LOWER(?TableAlias.name) LIKE ? OR LOWER(?TableAlias.description) LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*Product{}, nil
		}
		return nil, err
	}
	return products, nil
}

// Update applies a partial update and returns the updated row.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*Product, error) {
	product, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Slug != nil {
		product.Slug = slug.Make(*patch.Slug)
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.SizeML != nil {
		product.SizeML = *patch.SizeML
	}
	if patch.Images != nil {
		product.Images = *patch.Images
	}
	if patch.Notes != nil {
		product.Notes = *patch.Notes
	}
	if patch.Mood != nil {
		product.Mood = *patch.Mood
	}
	if patch.Longevity != nil {
		product.Longevity = *patch.Longevity
	}
	if patch.Projection != nil {
		product.Projection = *patch.Projection
	}
	if patch.InspiredFrom != nil {
		product.InspiredFrom = *patch.InspiredFrom
	}
	product.UpdatedAt = time.Now()

	_, err = r.db.NewUpdate().
		Model(product).
		WherePK().
		Exec(ctx)
	if err != nil {
		if auth.IsDuplicateKeyError(err) {
			return nil, duplicateSlugError(err, product.Slug)
		}
		return nil, err
	}

	return product, nil
}

// Delete removes a product. Deleting an absent product is a not found error.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrProductNotFound.Clone().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

// ResolveInspirations loads the products referenced by InspiredFrom into
// InspiredProducts. References to deleted products are dropped silently.
func (r *ProductRepository) ResolveInspirations(ctx context.Context, product *Product) error {
	if product == nil || len(product.InspiredFrom) == 0 {
		return nil
	}

	var inspirations []*Product
	err := r.db.NewSelect().
		Model(&inspirations).
		Where("?TableAlias.id IN (?)", bun.In(product.InspiredFrom)).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			product.InspiredProducts = []*Product{}
			return nil
		}
		return err
	}

	product.InspiredProducts = inspirations
	return nil
}

func productLookupError(err error, meta map[string]any) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound.Clone().WithMetadata(meta)
	}
	return err
}

func duplicateSlugError(err error, slugStr string) error {
	conflict := ErrDuplicateSlug.Clone()
	conflict.Source = err
	return conflict.WithMetadata(map[string]any{
		"slug": slugStr,
	})
}
