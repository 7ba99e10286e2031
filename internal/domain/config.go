package domain

// Config is the declarative variant selection attached to a class or a method.
// An empty Variants list and nil bounds mean "unset".
type Config struct {
	Variants   []Variant `yaml:"sdk,omitempty" json:"sdk,omitempty"`
	MinVariant *Variant  `yaml:"minSdk,omitempty" json:"minSdk,omitempty"`
	MaxVariant *Variant  `yaml:"maxSdk,omitempty" json:"maxSdk,omitempty"`
}

// IsZero reports whether no field is set.
func (c Config) IsZero() bool {
	return len(c.Variants) == 0 && c.MinVariant == nil && c.MaxVariant == nil
}

// VariantPtr returns a pointer to v, for building bounds in code.
func VariantPtr(v Variant) *Variant {
	return &v
}
