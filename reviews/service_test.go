package reviews

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReviewRepo struct {
	byID    map[uuid.UUID]*Review
	updated []*Review
	deleted []uuid.UUID
	created []*Review
}

func newStubReviewRepo(seed ...*Review) *stubReviewRepo {
	s := &stubReviewRepo{byID: map[uuid.UUID]*Review{}}
	for _, review := range seed {
		s.byID[review.ID] = review
	}
	return s
}

func (s *stubReviewRepo) Create(ctx context.Context, review *Review) (*Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	s.byID[review.ID] = review
	s.created = append(s.created, review)
	return review, nil
}

func (s *stubReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	if review, ok := s.byID[id]; ok {
		copied := *review
		return &copied, nil
	}
	return nil, ErrReviewNotFound.Clone()
}

func (s *stubReviewRepo) List(ctx context.Context) ([]*Review, error) {
	out := make([]*Review, 0, len(s.byID))
	for _, review := range s.byID {
		out = append(out, review)
	}
	return out, nil
}

func (s *stubReviewRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*Review, error) {
	var out []*Review
	for _, review := range s.byID {
		if review.ProductID == productID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (s *stubReviewRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*Review, error) {
	var out []*Review
	for _, review := range s.byID {
		if review.UserID == userID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (s *stubReviewRepo) Update(ctx context.Context, review *Review) (*Review, error) {
	s.byID[review.ID] = review
	s.updated = append(s.updated, review)
	return review, nil
}

func (s *stubReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return ErrReviewNotFound.Clone()
	}
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateAssignsOwnerFromActingUser(t *testing.T) {
	repo := newStubReviewRepo()
	service := NewService(repo)

	owner := uuid.New()
	created, err := service.Create(context.Background(), owner.String(), &Review{
		ProductID: uuid.New(),
		Rating:    5,
		Comment:   "smells like the original",
	})
	require.NoError(t, err)

	assert.Equal(t, owner, created.UserID)
	require.Len(t, repo.created, 1)
}

func TestUpdateByOwnerAppliesPatch(t *testing.T) {
	owner := uuid.New()
	review := &Review{
		ID:        uuid.New(),
		UserID:    owner,
		ProductID: uuid.New(),
		Rating:    4,
		Comment:   "good longevity",
	}
	repo := newStubReviewRepo(review)
	service := NewService(repo)

	updated, err := service.Update(context.Background(), review.ID, owner.String(), ReviewPatch{
		Rating: intPtr(2),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, "good longevity", updated.Comment)
	require.Len(t, repo.updated, 1)
}

func TestUpdateByNonOwnerIsForbidden(t *testing.T) {
	owner := uuid.New()
	review := &Review{
		ID:     uuid.New(),
		UserID: owner,
		Rating: 4,
	}
	repo := newStubReviewRepo(review)
	service := NewService(repo)

	_, err := service.Update(context.Background(), review.ID, uuid.NewString(), ReviewPatch{
		Rating: intPtr(1),
	})
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeNotReviewOwner, richErr.TextCode)
	assert.Equal(t, goerrors.CodeForbidden, richErr.Code)

	assert.Empty(t, repo.updated)
	assert.Equal(t, 4, repo.byID[review.ID].Rating)
}

func TestUpdateAbsentReviewIsNotFound(t *testing.T) {
	repo := newStubReviewRepo()
	service := NewService(repo)

	_, err := service.Update(context.Background(), uuid.New(), uuid.NewString(), ReviewPatch{
		Comment: strPtr("changed"),
	})
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeReviewNotFound, richErr.TextCode)
}

func TestDeleteByOwnerRemovesReview(t *testing.T) {
	owner := uuid.New()
	review := &Review{ID: uuid.New(), UserID: owner}
	repo := newStubReviewRepo(review)
	service := NewService(repo)

	err := service.Delete(context.Background(), review.ID, owner.String())
	require.NoError(t, err)

	require.Len(t, repo.deleted, 1)
	assert.NotContains(t, repo.byID, review.ID)
}

func TestDeleteByNonOwnerIsForbiddenAndKeepsReview(t *testing.T) {
	owner := uuid.New()
	review := &Review{ID: uuid.New(), UserID: owner}
	repo := newStubReviewRepo(review)
	service := NewService(repo)

	err := service.Delete(context.Background(), review.ID, uuid.NewString())
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeNotReviewOwner, richErr.TextCode)

	assert.Empty(t, repo.deleted)
	assert.Contains(t, repo.byID, review.ID)
}

func TestDeleteAbsentReviewIsNotFound(t *testing.T) {
	repo := newStubReviewRepo()
	service := NewService(repo)

	err := service.Delete(context.Background(), uuid.New(), uuid.NewString())
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeReviewNotFound, richErr.TextCode)
}

func TestMutationsRejectMalformedActingUser(t *testing.T) {
	owner := uuid.New()
	review := &Review{ID: uuid.New(), UserID: owner}
	repo := newStubReviewRepo(review)
	service := NewService(repo)

	_, err := service.Update(context.Background(), review.ID, "not-a-uuid", ReviewPatch{})
	require.Error(t, err)

	err = service.Delete(context.Background(), review.ID, "not-a-uuid")
	require.Error(t, err)

	assert.Empty(t, repo.updated)
	assert.Empty(t, repo.deleted)
}
