package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
)

// ItemInput is one cart line supplied on order create. When ProductID is set
// the name and unit price are resolved from the catalog; otherwise the
// supplied snapshot values are trusted.
type ItemInput struct {
	ProductID   *uuid.UUID       `json:"productId,omitempty"`
	ProductName string           `json:"name"`
	Size        *string          `json:"size,omitempty"`
	Pieces      *int             `json:"pieces,omitempty"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// Page is one cursor-paged slice of the order feed, newest first. NextCursor
// is empty on the last page.
type Page struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// CreateInput captures the checkout form. TotalAmount from the client is a
// hint only; the stored total is always recomputed from the items.
type CreateInput struct {
	Name                string
	Phone               string
	StreetAddress       string
	City                string
	PostalCode          string
	SpecialInstructions *string
	PaymentMethod       string
	UserID              *uuid.UUID
	Items               []ItemInput
}
