package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ComparisonPatch carries a partial comparison update. Nil fields are left
// untouched.
type ComparisonPatch struct {
	BaseProductID     *uuid.UUID
	InspiredProductID *uuid.UUID
	SimilarityScore   *float64
	Differences       *[]string
}

// Comparisons is the comparison repository.
type Comparisons interface {
	Create(ctx context.Context, comparison *Comparison) (*Comparison, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comparison, error)
	List(ctx context.Context) ([]*Comparison, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*Comparison, error)
	Update(ctx context.Context, id uuid.UUID, patch ComparisonPatch) (*Comparison, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Hydrate(ctx context.Context, comparison *Comparison) error
}

// ComparisonRepository implements Comparisons using Bun.
type ComparisonRepository struct {
	db       bun.IDB
	products Products
}

// NewComparisonRepository creates a new repository. products is used to
// hydrate the two ends of a comparison.
func NewComparisonRepository(db bun.IDB, products Products) *ComparisonRepository {
	return &ComparisonRepository{db: db, products: products}
}

// Create inserts a comparison.
func (r *ComparisonRepository) Create(ctx context.Context, comparison *Comparison) (*Comparison, error) {
	if comparison == nil {
		return nil, goerrors.New("comparison is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if comparison.ID == uuid.Nil {
		comparison.ID = uuid.New()
	}

	now := time.Now()
	comparison.CreatedAt = now
	comparison.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(comparison).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return comparison, nil
}

// GetByID fetches a single comparison.
func (r *ComparisonRepository) GetByID(ctx context.Context, id uuid.UUID) (*Comparison, error) {
	comparison := &Comparison{}
	err := r.db.NewSelect().
		Model(comparison).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrComparisonNotFound.Clone().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return comparison, nil
}

// List returns all comparisons, newest first.
func (r *ComparisonRepository) List(ctx context.Context) ([]*Comparison, error) {
	var comparisons []*Comparison
	err := r.db.NewSelect().
		Model(&comparisons).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*Comparison{}, nil
		}
		return nil, err
	}
	return comparisons, nil
}

// FindByProduct returns comparisons where the product appears on either
// side.
func (r *ComparisonRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*Comparison, error) {
	var comparisons []*Comparison
	err := r.db.NewSelect().
		Model(&comparisons).
		Where("?TableAlias.base_product_id = ? OR ?TableAlias.inspired_product_id = ?", productID, productID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*Comparison{}, nil
		}
		return nil, err
	}
	return comparisons, nil
}

// Update applies a partial update and returns the updated row.
func (r *ComparisonRepository) Update(ctx context.Context, id uuid.UUID, patch ComparisonPatch) (*Comparison, error) {
	comparison, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.BaseProductID != nil {
		comparison.BaseProductID = *patch.BaseProductID
	}
	if patch.InspiredProductID != nil {
		comparison.InspiredProductID = *patch.InspiredProductID
	}
	if patch.SimilarityScore != nil {
		comparison.SimilarityScore = patch.SimilarityScore
	}
	if patch.Differences != nil {
		comparison.Differences = *patch.Differences
	}
	comparison.UpdatedAt = time.Now()

	_, err = r.db.NewUpdate().
		Model(comparison).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return comparison, nil
}

// Delete removes a comparison. Deleting an absent comparison is a not found
// error.
func (r *ComparisonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Comparison)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrComparisonNotFound.Clone().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

// Hydrate loads the two products a comparison references. A dangling
// reference leaves that side nil rather than failing the read.
func (r *ComparisonRepository) Hydrate(ctx context.Context, comparison *Comparison) error {
	if comparison == nil || r.products == nil {
		return nil
	}

	if base, err := r.products.GetByID(ctx, comparison.BaseProductID); err == nil {
		comparison.BaseProduct = base
	} else if !isNotFound(err) {
		return err
	}

	if inspired, err := r.products.GetByID(ctx, comparison.InspiredProductID); err == nil {
		comparison.InspiredProduct = inspired
	} else if !isNotFound(err) {
		return err
	}

	return nil
}

func isNotFound(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound
	}
	return stderrors.Is(err, sql.ErrNoRows)
}
