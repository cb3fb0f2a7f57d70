package reviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Review is the Bun model for product reviews. UserID is the owner and the
// only identity allowed to change or remove the row.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:rvw"`

	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userId"`
	ProductID uuid.UUID `bun:"product_id,notnull,type:uuid" json:"productId"`
	Rating    int       `bun:"rating,notnull" json:"rating"`
	Comment   string    `bun:"comment,notnull" json:"comment"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
