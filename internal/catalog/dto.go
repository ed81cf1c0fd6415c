package catalog

import (
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicepalace/spicepalace-backend/pkg/enums"
)

// VariantInput is one priced sub-option supplied on product create/update.
type VariantInput struct {
	Size   *string         `json:"size,omitempty"`
	Pieces *int            `json:"pieces,omitempty"`
	Price  decimal.Decimal `json:"price"`
}

// ImageUpload carries the raw uploaded file for the product image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateProductInput captures the multipart create form.
type CreateProductInput struct {
	Name        string
	Description *string
	CategoryID  *uuid.UUID
	Price       *decimal.Decimal
	IsFeatured  bool
	VariantMode *enums.VariantMode
	Variants    []VariantInput
	Image       *ImageUpload
}

// UpdateProductInput captures the multipart update form. Nil fields keep the
// stored values; ReplaceVariants controls the delete-all/re-insert pass.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	CategoryID      *uuid.UUID
	ClearCategory   bool
	Price           *decimal.Decimal
	IsFeatured      *bool
	VariantMode     *enums.VariantMode
	ReplaceVariants bool
	Variants        []VariantInput
	Image           *ImageUpload
}

// Totals summarizes catalog size for the admin dashboard.
type Totals struct {
	Products int64 `json:"totalProducts"`
	Featured int64 `json:"featuredProducts"`
	Variants int64 `json:"totalVariants"`
}
