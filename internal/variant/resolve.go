package variant

import "vmx/internal/domain"

// Resolve merges class and method configuration field by field.
// A field set on the method wins; otherwise the class value is inherited.
func Resolve(class, method domain.Config) domain.Config {
	effective := class
	if len(method.Variants) > 0 {
		effective.Variants = method.Variants
	}
	if method.MinVariant != nil {
		effective.MinVariant = method.MinVariant
	}
	if method.MaxVariant != nil {
		effective.MaxVariant = method.MaxVariant
	}
	return effective
}
