package catalog

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeProductNotFound    = "catalog_product_not_found"
	TextCodeComparisonNotFound = "catalog_comparison_not_found"
	TextCodeDuplicateSlug      = "catalog_duplicate_slug"
)

// ErrProductNotFound is returned when a product lookup matches nothing.
var ErrProductNotFound = errors.New("product not found", errors.CategoryNotFound).
	WithTextCode(TextCodeProductNotFound).
	WithCode(errors.CodeNotFound)

// ErrComparisonNotFound is returned when a comparison lookup matches nothing.
var ErrComparisonNotFound = errors.New("comparison not found", errors.CategoryNotFound).
	WithTextCode(TextCodeComparisonNotFound).
	WithCode(errors.CodeNotFound)

// ErrDuplicateSlug is returned when a create or update collides with an
// existing product slug.
var ErrDuplicateSlug = errors.New("product slug already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateSlug).
	WithCode(errors.CodeConflict)
