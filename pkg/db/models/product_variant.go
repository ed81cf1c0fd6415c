package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is a priced sub-option of a product. Exactly one of Size or
// Pieces is meaningful depending on the product's variant mode.
type ProductVariant struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	Size      *string         `gorm:"column:size" json:"size,omitempty"`
	Pieces    *int            `gorm:"column:pieces" json:"pieces,omitempty"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
}
