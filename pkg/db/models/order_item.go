package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is the denormalized snapshot of one cart line at order time.
// ProductName and Price deliberately do not track later catalog changes.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	Size        *string         `gorm:"column:size" json:"size,omitempty"`
	Pieces      *int            `gorm:"column:pieces" json:"pieces,omitempty"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
}
