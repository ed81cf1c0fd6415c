package enums

import "fmt"

// VariantMode declares how a product's variants are keyed: by a size label or
// by a piece count. A product's variants are homogeneous in mode.
type VariantMode string

const (
	VariantModeSize   VariantMode = "size"
	VariantModePieces VariantMode = "pieces"
)

var validVariantModes = []VariantMode{
	VariantModeSize,
	VariantModePieces,
}

// String implements fmt.Stringer.
func (m VariantMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known VariantMode.
func (m VariantMode) IsValid() bool {
	for _, candidate := range validVariantModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseVariantMode converts raw input into a VariantMode.
func ParseVariantMode(value string) (VariantMode, error) {
	for _, candidate := range validVariantModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variant mode %q", value)
}
