package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicepalace/spicepalace-backend/pkg/enums"
)

// Product is a menu listing. BasePrice is either the explicit price or the
// minimum variant price resolved at write time.
type Product struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string             `gorm:"column:name;not null" json:"name"`
	Description *string            `gorm:"column:description" json:"description,omitempty"`
	CategoryID  *uuid.UUID         `gorm:"column:category_id;type:uuid" json:"categoryId,omitempty"`
	BasePrice   decimal.Decimal    `gorm:"column:base_price;type:numeric(10,2);not null" json:"price"`
	IsFeatured  bool               `gorm:"column:is_featured;not null;default:false" json:"isFeatured"`
	VariantMode *enums.VariantMode `gorm:"column:variant_mode;type:text" json:"variantMode,omitempty"`
	ImageURL    *string            `gorm:"column:image_url" json:"imageUrl,omitempty"`
	ImageObject *string            `gorm:"column:image_object" json:"imagePublicId,omitempty"`
	Variants    []ProductVariant   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
