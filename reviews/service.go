package reviews

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/touslux/catalog-api/auth"
)

// Service wraps the review repository with the ownership guard. Every
// mutation checks the acting user against the stored owner before anything
// is written.
type Service struct {
	repo   Reviews
	logger auth.Logger
}

// ServiceOption configures the review service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger auth.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a review service.
func NewService(repo Reviews, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: auth.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Create records a review owned by the acting user.
func (s *Service) Create(ctx context.Context, actingUserID string, review *Review) (*Review, error) {
	owner, err := parseActingUser(actingUserID)
	if err != nil {
		return nil, err
	}

	review.UserID = owner
	return s.repo.Create(ctx, review)
}

// Get returns a single review.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all reviews.
func (s *Service) List(ctx context.Context) ([]*Review, error) {
	return s.repo.List(ctx)
}

// ListByProduct returns the reviews for a product.
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*Review, error) {
	return s.repo.FindByProduct(ctx, productID)
}

// ListByUser returns the acting user's reviews.
func (s *Service) ListByUser(ctx context.Context, actingUserID string) ([]*Review, error) {
	owner, err := parseActingUser(actingUserID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByUser(ctx, owner)
}

// Update applies a patch to a review after the ownership check. An absent
// review is a not found error, a mismatched owner a forbidden one, and in
// both cases nothing is written.
func (s *Service) Update(ctx context.Context, id uuid.UUID, actingUserID string, patch ReviewPatch) (*Review, error) {
	review, err := s.guard(ctx, id, actingUserID)
	if err != nil {
		return nil, err
	}

	if patch.Rating != nil {
		review.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		review.Comment = *patch.Comment
	}

	return s.repo.Update(ctx, review)
}

// Delete removes a review after the ownership check.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actingUserID string) error {
	if _, err := s.guard(ctx, id, actingUserID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// guard fetches the review and compares owners through the canonical UUID
// string form, so formatting differences in the acting id cannot produce a
// false mismatch.
func (s *Service) guard(ctx context.Context, id uuid.UUID, actingUserID string) (*Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	acting, err := parseActingUser(actingUserID)
	if err != nil {
		return nil, err
	}

	if review.UserID.String() != acting.String() {
		s.logger.Warn("review %s mutation denied for user %s", id, acting)
		return nil, ErrNotReviewOwner.Clone().WithMetadata(map[string]any{
			"review_id": id.String(),
		})
	}

	return review, nil
}

func parseActingUser(actingUserID string) (uuid.UUID, error) {
	acting, err := uuid.Parse(actingUserID)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryBadInput, "invalid user id").
			WithCode(errors.CodeBadRequest)
	}
	return acting, nil
}
