package execution

import (
	"context"

	"vmx/internal/domain"
)

// Executor runs descriptors and reports their outcomes
type Executor interface {
	Run(ctx context.Context, descriptors []domain.Descriptor, listener Listener) ([]domain.Outcome, error)
}

// Context is an isolated execution context. It belongs to one descriptor
// from acquisition until Release.
type Context interface {
	domain.Environment
	Release() error
}

// Bootstrapper prepares a variant's runtime context. Acquire returns either a
// usable Context or a non-nil error; a failed Acquire returns a plain nil
// Context, never a nil pointer of a concrete type.
type Bootstrapper interface {
	Acquire(ctx context.Context, v domain.Variant) (Context, error)
}

// BootstrapperFunc adapts a function to the Bootstrapper interface.
type BootstrapperFunc func(ctx context.Context, v domain.Variant) (Context, error)

// Acquire calls f(ctx, v).
func (f BootstrapperFunc) Acquire(ctx context.Context, v domain.Variant) (Context, error) {
	return f(ctx, v)
}
