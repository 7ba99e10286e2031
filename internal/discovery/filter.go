package discovery

import (
	"path/filepath"
	"strings"

	"vmx/internal/domain"
)

// Filter narrows classes and methods by name
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the classes whose name, or methods whose "Class.method"
// name, match pattern. Supports patterns like "*Payment*" or "UserTest.test*".
// Classes left without methods are dropped.
func (f *Filter) FilterByName(classes []domain.TestClass, pattern string) []domain.TestClass {
	if pattern == "" {
		return classes
	}

	var filtered []domain.TestClass
	for _, class := range classes {
		if Match(pattern, class.Name) {
			filtered = append(filtered, class)
			continue
		}

		var methods []domain.TestMethod
		for _, method := range class.Methods {
			if Match(pattern, QualifiedName(class.Name, method.Name)) {
				methods = append(methods, method)
			}
		}
		if len(methods) > 0 {
			class.Methods = methods
			filtered = append(filtered, class)
		}
	}
	return filtered
}

// FilterByFailures keeps the methods named in failed, keyed by QualifiedName.
func (f *Filter) FilterByFailures(classes []domain.TestClass, failed map[string]bool) []domain.TestClass {
	var filtered []domain.TestClass
	for _, class := range classes {
		var methods []domain.TestMethod
		for _, method := range class.Methods {
			if failed[QualifiedName(class.Name, method.Name)] {
				methods = append(methods, method)
			}
		}
		if len(methods) > 0 {
			class.Methods = methods
			filtered = append(filtered, class)
		}
	}
	return filtered
}

// QualifiedName returns "Class.method"
func QualifiedName(class, method string) string {
	return class + "." + method
}

// Match reports whether name matches pattern using wildcard matching.
func Match(pattern, name string) bool {
	// Try to match using filepath.Match (supports * and ? wildcards)
	matched, err := filepath.Match(pattern, name)
	if err == nil && matched {
		return true
	}

	// If pattern contains wildcards but filepath.Match didn't match,
	// try a more flexible substring match for patterns like "*Payment*"
	if strings.Contains(pattern, "*") {
		hasNonEmptyPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasNonEmptyPart = true
			if !strings.Contains(name, part) {
				return false
			}
		}
		return hasNonEmptyPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}
