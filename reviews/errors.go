package reviews

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeReviewNotFound = "reviews_not_found"
	TextCodeNotReviewOwner = "reviews_not_owner"
)

// ErrReviewNotFound is returned when a review lookup matches nothing.
var ErrReviewNotFound = errors.New("review not found", errors.CategoryNotFound).
	WithTextCode(TextCodeReviewNotFound).
	WithCode(errors.CodeNotFound)

// ErrNotReviewOwner is returned when a user tries to change or remove a
// review they do not own.
var ErrNotReviewOwner = errors.New("not the review owner", errors.CategoryAuthz).
	WithTextCode(TextCodeNotReviewOwner).
	WithCode(errors.CodeForbidden)
