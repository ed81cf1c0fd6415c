package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/spicepalace/spicepalace-backend/pkg/db/models"
	"github.com/spicepalace/spicepalace-backend/pkg/enums"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
)

// FallbackPolicy controls what happens when a variant selector finds no match.
type FallbackPolicy int

const (
	// FallbackBasePrice silently falls back to the product's base price.
	FallbackBasePrice FallbackPolicy = iota
	// FallbackReject turns a missing match into a validation error.
	FallbackReject
)

// VariantSelector identifies one variant by the key matching the product's
// variant mode.
type VariantSelector struct {
	Size   *string
	Pieces *int
}

// ResolveBasePrice computes the display price stored on the product row: the
// explicit price when one is given, otherwise the minimum variant price. A
// product with neither is unsellable and rejected.
func ResolveBasePrice(explicit *decimal.Decimal, variants []models.ProductVariant) (decimal.Decimal, error) {
	if explicit != nil {
		if explicit.IsNegative() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		return *explicit, nil
	}
	if len(variants) == 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product needs a price or at least one variant")
	}

	min := variants[0].Price
	for _, v := range variants[1:] {
		if v.Price.LessThan(min) {
			min = v.Price
		}
	}
	if min.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative")
	}
	return min, nil
}

// ResolveVariantPrice returns the unit price for the selected variant of the
// product. The selector is matched against the key the product's variant mode
// declares; under FallbackBasePrice a missing match resolves to the base
// price instead of failing.
func ResolveVariantPrice(product *models.Product, selector VariantSelector, policy FallbackPolicy) (decimal.Decimal, error) {
	if product == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}

	if variant := matchVariant(product, selector); variant != nil {
		return variant.Price, nil
	}

	if policy == FallbackReject && (selector.Size != nil || selector.Pieces != nil) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "no variant matches the requested option")
	}
	return product.BasePrice, nil
}

func matchVariant(product *models.Product, selector VariantSelector) *models.ProductVariant {
	if product.VariantMode == nil {
		return nil
	}
	for i := range product.Variants {
		v := &product.Variants[i]
		switch *product.VariantMode {
		case enums.VariantModeSize:
			if selector.Size != nil && v.Size != nil && *v.Size == *selector.Size {
				return v
			}
		case enums.VariantModePieces:
			if selector.Pieces != nil && v.Pieces != nil && *v.Pieces == *selector.Pieces {
				return v
			}
		}
	}
	return nil
}
