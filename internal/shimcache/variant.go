package shimcache

import (
	"fmt"
	"strings"

	"github.com/dxvk-studio/dxvk-studio/internal/branding"
)

// Variant identifies a maintained flavor of the shim package.
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantAsync    Variant = "async"
	VariantGPLAsync Variant = "gplasync"
)

// Variants lists every known variant in display order.
var Variants = []Variant{VariantStandard, VariantAsync, VariantGPLAsync}

// ParseVariant validates a variant name. Matching is case-insensitive.
func ParseVariant(name string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(name)))
	if v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownVariant, name, variantNames())
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// Repo returns the "owner/repo" that publishes releases for v.
func (v Variant) Repo() string {
	return branding.VariantRepo(string(v))
}

func (v Variant) String() string { return string(v) }

func (v Variant) order() int {
	for i, known := range Variants {
		if v == known {
			return i
		}
	}
	return len(Variants)
}

func variantNames() string {
	names := make([]string, len(Variants))
	for i, v := range Variants {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
