package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Note types used by convention. Stored as-is, not enforced.
const (
	NoteTop   = "top"
	NoteHeart = "heart"
	NoteBase  = "base"
)

// Note is a single fragrance note in a product's pyramid.
type Note struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Product is the Bun model for catalog products.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`

	ID           uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Name         string      `bun:"name,notnull" json:"name"`
	Slug         string      `bun:"slug,notnull,unique" json:"slug"`
	Description  string      `bun:"description,notnull" json:"description"`
	Price        float64     `bun:"price,notnull" json:"price"`
	SizeML       int         `bun:"size_ml,notnull" json:"sizeML"`
	Images       []string    `bun:"images,type:jsonb" json:"images,omitempty"`
	Notes        []Note      `bun:"notes,type:jsonb" json:"notes,omitempty"`
	Mood         string      `bun:"mood" json:"mood,omitempty"`
	Longevity    string      `bun:"longevity" json:"longevity,omitempty"`
	Projection   string      `bun:"projection" json:"projection,omitempty"`
	InspiredFrom []uuid.UUID `bun:"inspired_from,type:jsonb" json:"inspiredFrom,omitempty"`

	// InspiredProducts is hydrated on demand by ResolveInspirations.
	InspiredProducts []*Product `bun:"-" json:"inspiredProducts,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// Comparison is the Bun model for product comparisons. It links an original
// fragrance to the catalog product inspired by it.
type Comparison struct {
	bun.BaseModel `bun:"table:comparisons,alias:cmp"`

	ID                uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	BaseProductID     uuid.UUID `bun:"base_product_id,notnull,type:uuid" json:"baseProductId"`
	InspiredProductID uuid.UUID `bun:"inspired_product_id,notnull,type:uuid" json:"inspiredProductId"`
	SimilarityScore   *float64  `bun:"similarity_score" json:"similarityScore,omitempty"`
	Differences       []string  `bun:"differences,type:jsonb" json:"differences,omitempty"`

	// BaseProduct and InspiredProduct are hydrated on demand.
	BaseProduct     *Product `bun:"-" json:"baseProduct,omitempty"`
	InspiredProduct *Product `bun:"-" json:"inspiredProduct,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
