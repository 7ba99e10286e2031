package variant

import (
	"errors"
	"fmt"

	"vmx/internal/domain"
)

// ErrInvalidBounds is returned when an effective minimum exceeds its maximum.
var ErrInvalidBounds = errors.New("minSdk is greater than maxSdk")

// Compute returns the ascending, deduplicated variants a method must run
// against. The precedence is: an explicit list, then min/max bounds, then the
// latest sentinel alone, then the whole (enabled) catalog. An empty result is
// valid.
func Compute(supported *Supported, effective domain.Config, enabled Enabled) ([]domain.Variant, error) {
	minVariant, maxVariant := bound(supported, effective.MinVariant), bound(supported, effective.MaxVariant)
	if minVariant != nil && maxVariant != nil && *minVariant > *maxVariant {
		return nil, fmt.Errorf("%w (%d > %d)", ErrInvalidBounds, *minVariant, *maxVariant)
	}

	base := supported.Variants()
	if enabled != nil {
		base = filter(base, enabled.contains)
	}

	explicit := Enabled(explicitVariants(effective.Variants))
	switch {
	case len(explicit) > 0:
		return filter(base, explicit.contains), nil
	case minVariant != nil || maxVariant != nil:
		return filter(base, func(v domain.Variant) bool {
			return (minVariant == nil || v >= *minVariant) && (maxVariant == nil || v <= *maxVariant)
		}), nil
	case len(effective.Variants) > 0:
		// only the sentinel is left
		if len(base) == 0 {
			return base, nil
		}
		return base[len(base)-1:], nil
	default:
		return base, nil
	}
}

// bound resolves a min/max value; a latest sentinel stands for the catalog maximum.
func bound(supported *Supported, v *domain.Variant) *domain.Variant {
	if v == nil {
		return nil
	}
	if *v == domain.Latest {
		return domain.VariantPtr(supported.Max())
	}
	return v
}

func explicitVariants(list []domain.Variant) []domain.Variant {
	var explicit []domain.Variant
	for _, v := range list {
		if v != domain.Latest {
			explicit = append(explicit, v)
		}
	}
	return explicit
}

// filter keeps the members of an ascending, duplicate-free slice that match keep.
func filter(variants []domain.Variant, keep func(domain.Variant) bool) []domain.Variant {
	out := make([]domain.Variant, 0, len(variants))
	for _, v := range variants {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
