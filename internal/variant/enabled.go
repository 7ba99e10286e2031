package variant

import (
	"fmt"
	"strings"

	"vmx/internal/domain"
)

// EnabledProperty is the name of the run-wide variant narrowing property.
const EnabledProperty = "vmx.enabledVariants"

// Enabled is the environment-level override. A nil value means "not set";
// a non-nil value narrows every computed variant set to its members.
type Enabled []domain.Variant

// ParseEnabled parses a comma-separated list such as "16,17".
// An empty or blank value yields a nil override.
func ParseEnabled(value string) (Enabled, error) {
	var enabled Enabled
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		v, err := domain.ParseVariant(token)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnabledProperty, err)
		}
		if v == domain.Latest {
			return nil, fmt.Errorf("parse %s: latest is not allowed in an override", EnabledProperty)
		}
		enabled = append(enabled, v)
	}
	return enabled, nil
}

func (e Enabled) contains(v domain.Variant) bool {
	for _, candidate := range e {
		if candidate == v {
			return true
		}
	}
	return false
}
