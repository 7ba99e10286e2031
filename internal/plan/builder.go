// Package plan expands test classes into ordered per-variant descriptors.
package plan

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"vmx/internal/domain"
	"vmx/internal/variant"
)

var (
	// ErrConstructors is reported for classes declaring more than one public constructor.
	ErrConstructors = errors.New("test class should have exactly one public constructor")
	// ErrEmptyVariantSet is reported for methods left without variants when strict mode is on.
	ErrEmptyVariantSet = errors.New("no variants left to run")
)

// InitializationError is a class-level configuration failure. A class that
// fails to initialize contributes no descriptors.
type InitializationError struct {
	Class  string
	Source string
	Err    error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialize %s: %v", e.Class, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// Builder turns test classes into descriptors. It holds the run-wide catalog
// and enabled override and is safe for concurrent use.
type Builder struct {
	supported   *variant.Supported
	enabled     variant.Enabled
	strictEmpty bool
}

// Option configures a Builder
type Option func(*Builder)

// WithStrictEmpty makes a method without any variant a configuration error
// instead of silently contributing no descriptors.
func WithStrictEmpty(strict bool) Option {
	return func(b *Builder) {
		b.strictEmpty = strict
	}
}

// NewBuilder creates a new Builder
func NewBuilder(supported *variant.Supported, enabled variant.Enabled, opts ...Option) *Builder {
	b := &Builder{
		supported: supported,
		enabled:   enabled,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Supported returns the catalog the builder resolves against.
func (b *Builder) Supported() *variant.Supported {
	return b.supported
}

// Build validates the class and returns one descriptor per (method, variant),
// methods in declaration order and variants ascending. On any configuration
// error no descriptor is returned.
func (b *Builder) Build(class domain.TestClass) ([]domain.Descriptor, error) {
	resolved, err := b.resolve(class)
	if err != nil {
		return nil, &InitializationError{Class: class.Name, Source: class.Source, Err: err}
	}

	maxSupported := b.supported.Max()
	var descriptors []domain.Descriptor
	for i, method := range class.Methods {
		for _, v := range resolved[i] {
			descriptors = append(descriptors, domain.Descriptor{
				Class:       class.Name,
				Method:      method,
				Variant:     v,
				DisplayName: DisplayName(method.Name, v, maxSupported),
				Sequence:    len(descriptors),
				Source:      class.Source,
			})
		}
	}
	return descriptors, nil
}

// Resolve returns the variant set of every method, in declaration order.
func (b *Builder) Resolve(class domain.TestClass) ([][]domain.Variant, error) {
	return b.resolve(class)
}

func (b *Builder) resolve(class domain.TestClass) ([][]domain.Variant, error) {
	var result *multierror.Error
	if class.Constructors > 1 {
		result = multierror.Append(result, fmt.Errorf("%w, found %d", ErrConstructors, class.Constructors))
	}

	resolved := make([][]domain.Variant, len(class.Methods))
	for i, method := range class.Methods {
		if method.Name == "" {
			result = multierror.Append(result, fmt.Errorf("method #%d has no name", i+1))
			continue
		}
		effective := variant.Resolve(class.Config, method.Config)
		variants, err := variant.Compute(b.supported, effective, b.enabled)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("method %s: %w", method.Name, err))
			continue
		}
		if len(variants) == 0 {
			if b.strictEmpty {
				result = multierror.Append(result, fmt.Errorf("method %s: %w", method.Name, ErrEmptyVariantSet))
				continue
			}
			log.WithFields(log.Fields{"class": class.Name, "method": method.Name}).Debug("method resolves to no variants")
		}
		resolved[i] = variants
	}
	return resolved, result.ErrorOrNil()
}

// BuildAll builds every class. Classes failing to initialize are returned as
// errors and contribute no descriptors; the others are unaffected.
func (b *Builder) BuildAll(classes []domain.TestClass) ([]domain.Descriptor, []*InitializationError) {
	var descriptors []domain.Descriptor
	var failures []*InitializationError
	for _, class := range classes {
		built, err := b.Build(class)
		if err != nil {
			var initErr *InitializationError
			if errors.As(err, &initErr) {
				failures = append(failures, initErr)
			} else {
				failures = append(failures, &InitializationError{Class: class.Name, Source: class.Source, Err: err})
			}
			continue
		}
		descriptors = append(descriptors, built...)
	}
	return descriptors, failures
}

// DisplayName keeps the plain method name for the newest supported variant so
// that reruns by name keep working, and suffixes every other variant.
func DisplayName(method string, v, maxSupported domain.Variant) string {
	if v == maxSupported {
		return method
	}
	return fmt.Sprintf("%s[%d]", method, v)
}
