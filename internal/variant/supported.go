// Package variant resolves which platform variants a test method runs against.
package variant

import (
	"fmt"
	"slices"
	"strings"

	"vmx/internal/domain"
)

// Supported is the read-only catalog of variants known to a run.
// It is built once per run and shared by every plan.
type Supported struct {
	variants []domain.Variant
}

// NewSupported returns a catalog holding the given variants in ascending order.
// The set must be non-empty and contain no duplicates or sentinels.
func NewSupported(variants ...domain.Variant) (*Supported, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("supported variant set is empty")
	}
	sorted := slices.Clone(variants)
	slices.Sort(sorted)
	for i, v := range sorted {
		if v < 0 {
			return nil, fmt.Errorf("supported variant set contains invalid variant %s", v)
		}
		if i > 0 && sorted[i-1] == v {
			return nil, fmt.Errorf("supported variant set contains duplicate variant %d", v)
		}
	}
	return &Supported{variants: sorted}, nil
}

// SupportedFromInts is NewSupported for plain integers, as read from configuration.
func SupportedFromInts(values []int) (*Supported, error) {
	variants := make([]domain.Variant, len(values))
	for i, v := range values {
		variants[i] = domain.Variant(v)
	}
	return NewSupported(variants...)
}

// Variants returns a copy of the catalog, ascending.
func (s *Supported) Variants() []domain.Variant {
	return slices.Clone(s.variants)
}

// Max returns the newest supported variant.
func (s *Supported) Max() domain.Variant {
	return s.variants[len(s.variants)-1]
}

// Contains reports whether v is part of the catalog.
func (s *Supported) Contains(v domain.Variant) bool {
	_, found := slices.BinarySearch(s.variants, v)
	return found
}

func (s *Supported) String() string {
	parts := make([]string, len(s.variants))
	for i, v := range s.variants {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}
