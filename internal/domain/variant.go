package domain

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Variant identifies a target platform version. Higher values are newer.
type Variant int

// Latest is the sentinel meaning "the newest supported variant".
const Latest Variant = -1

// String returns the decimal form, or "latest" for the sentinel.
func (v Variant) String() string {
	if v == Latest {
		return "latest"
	}
	return strconv.Itoa(int(v))
}

// ParseVariant parses a decimal variant or the "latest" keyword.
func ParseVariant(s string) (Variant, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "latest") {
		return Latest, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid variant %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid variant %q: must not be negative", s)
	}
	return Variant(n), nil
}

// UnmarshalYAML accepts both integers and the "latest" keyword.
func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: variant must be a scalar", node.Line)
	}
	parsed, err := ParseVariant(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// MarshalYAML writes the sentinel back as "latest".
func (v Variant) MarshalYAML() (interface{}, error) {
	if v == Latest {
		return "latest", nil
	}
	return int(v), nil
}
