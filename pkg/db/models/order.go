package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicepalace/spicepalace-backend/pkg/enums"
)

// Order holds the customer snapshot plus lifecycle status. Items are immutable
// once written; only Status moves after creation.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                string            `gorm:"column:name;not null" json:"name"`
	Phone               string            `gorm:"column:phone;not null" json:"phone"`
	StreetAddress       string            `gorm:"column:street_address;not null" json:"street_address"`
	City                string            `gorm:"column:city;not null" json:"city"`
	PostalCode          string            `gorm:"column:postal_code;not null" json:"postal_code"`
	SpecialInstructions *string           `gorm:"column:special_instructions" json:"special_instructions,omitempty"`
	PaymentMethod       string            `gorm:"column:payment_method;not null;default:'COD'" json:"payment_method"`
	Status              enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	TotalAmount         decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	UserID              *uuid.UUID        `gorm:"column:user_id;type:uuid" json:"user_id,omitempty"`
	Items               []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
