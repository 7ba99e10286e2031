package domain

import (
	"context"
	"io"
)

// Environment is an isolated execution context bound to one variant.
// It is owned by exactly one descriptor for its lifetime.
type Environment interface {
	Variant() Variant
	// Environ returns the KEY=value pairs a body should run with.
	Environ() []string
	// Dir is the private working directory of the context.
	Dir() string
}

// Body is the test method body. Output written to out is captured per descriptor.
type Body func(ctx context.Context, env Environment, out io.Writer) error

// TestClass groups test methods sharing a class-level Config.
type TestClass struct {
	Name string
	// Constructors is the number of public constructors the class declares.
	// Zero means the implicit default constructor.
	Constructors int
	Config       Config
	Methods      []TestMethod
	// Source is the suite file the class was loaded from, if any.
	Source string
}

// TestMethod is a single declared test.
type TestMethod struct {
	Name   string
	Config Config
	// Skip holds the reason of an explicit skip directive.
	Skip    string
	Command []string
	Dir     string
	Env     []string
	Body    Body
}

// Descriptor is one (method, variant) execution unit of a plan.
type Descriptor struct {
	Class       string
	Method      TestMethod
	Variant     Variant
	DisplayName string
	Sequence    int
	Source      string
}
