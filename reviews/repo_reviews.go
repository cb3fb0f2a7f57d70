package reviews

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ReviewPatch carries a partial review update. Nil fields are left
// untouched. Ownership and product id are immutable.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

// Reviews is the review repository.
type Reviews interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	List(ctx context.Context) ([]*Review, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*Review, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Review, error)
	Update(ctx context.Context, review *Review) (*Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReviewRepository implements Reviews using Bun.
type ReviewRepository struct {
	db bun.IDB
}

// NewReviewRepository creates a new repository.
func NewReviewRepository(db bun.IDB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review.
func (r *ReviewRepository) Create(ctx context.Context, review *Review) (*Review, error) {
	if review == nil {
		return nil, goerrors.New("review is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(review).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return review, nil
}

// GetByID fetches a single review.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	review := &Review{}
	err := r.db.NewSelect().
		Model(review).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound.Clone().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return review, nil
}

// List returns all reviews, newest first.
func (r *ReviewRepository) List(ctx context.Context) ([]*Review, error) {
	var reviews []*Review
	err := r.db.NewSelect().
		Model(&reviews).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*Review{}, nil
		}
		return nil, err
	}
	return reviews, nil
}

// FindByProduct returns the reviews for a product, newest first.
func (r *ReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*Review, error) {
	return r.findBy(ctx, "product_id", productID)
}

// FindByUser returns the reviews written by a user, newest first.
func (r *ReviewRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*Review, error) {
	return r.findBy(ctx, "user_id", userID)
}

func (r *ReviewRepository) findBy(ctx context.Context, column string, id uuid.UUID) ([]*Review, error) {
	var reviews []*Review
	err := r.db.NewSelect().
		Model(&reviews).
		Where("?TableAlias.? = ?", bun.Ident(column), id).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return []*Review{}, nil
		}
		return nil, err
	}
	return reviews, nil
}

// Update persists a previously fetched review.
func (r *ReviewRepository) Update(ctx context.Context, review *Review) (*Review, error) {
	review.UpdatedAt = time.Now()

	_, err := r.db.NewUpdate().
		Model(review).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return review, nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrReviewNotFound.Clone().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}
