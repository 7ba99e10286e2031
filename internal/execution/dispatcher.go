package execution

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"vmx/internal/domain"
)

// Dispatcher runs descriptors against freshly acquired contexts. A failure in
// one descriptor, including a panic or a bootstrap error, is recorded as that
// descriptor's outcome and never affects the others.
type Dispatcher struct {
	bootstrapper Bootstrapper
	runner       *CommandRunner
	workers      int
	failFast     bool
}

var _ Executor = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithWorkers sets how many descriptors may run at once. Values below two
// keep the sequential reference behaviour.
func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.workers = n
	}
}

// WithFailFast stops handing out contexts after the first failure.
func WithFailFast(failFast bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.failFast = failFast
	}
}

// WithCommandRunner sets the runner used for methods declared as commands.
func WithCommandRunner(r *CommandRunner) DispatcherOption {
	return func(d *Dispatcher) {
		d.runner = r
	}
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(bootstrapper Bootstrapper, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		bootstrapper: bootstrapper,
		runner:       NewCommandRunner(""),
		workers:      1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Workers returns the configured concurrency.
func (d *Dispatcher) Workers() int {
	if d.workers < 1 {
		return 1
	}
	return d.workers
}

// Run executes descriptors and returns the outcomes of those that started,
// in descriptor order. Once ctx is cancelled, or fail-fast trips, no further
// descriptor starts; descriptors already started run to completion with a
// context that ignores the cancellation. The cancellation is returned
// alongside the partial outcomes.
func (d *Dispatcher) Run(ctx context.Context, descriptors []domain.Descriptor, listener Listener) ([]domain.Outcome, error) {
	if listener == nil {
		listener = Listeners(nil)
	}
	listener = Synchronized(listener)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]*domain.Outcome, len(descriptors))
	// started descriptors keep ctx values but not its cancellation
	execCtx := context.WithoutCancel(ctx)
	run := func(i int) {
		outcome := d.execute(execCtx, descriptors[i], listener)
		outcomes[i] = &outcome
		if d.failFast && outcome.Failed() {
			log.WithField("test", descriptors[i].DisplayName).Info("fail-fast: stopping after first failure")
			cancel()
		}
	}

	if d.Workers() == 1 {
		for i := range descriptors {
			if runCtx.Err() != nil {
				break
			}
			run(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(d.Workers())
		for i := range descriptors {
			if runCtx.Err() != nil {
				break
			}
			g.Go(func() error {
				// cancellation may have happened while this slot was queued
				if runCtx.Err() != nil {
					return nil
				}
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := make([]domain.Outcome, 0, len(descriptors))
	for _, outcome := range outcomes {
		if outcome != nil {
			result = append(result, *outcome)
		}
	}
	if err := ctx.Err(); err != nil {
		return result, errors.WithMessage(err, "run cancelled")
	}
	return result, nil
}

func (d *Dispatcher) execute(ctx context.Context, desc domain.Descriptor, listener Listener) (outcome domain.Outcome) {
	start := time.Now()
	outcome.Descriptor = desc
	listener.Started(desc)

	defer func() {
		outcome.Duration = time.Since(start)
		switch outcome.Status {
		case domain.StatusIgnored:
			listener.Ignored(desc)
		case domain.StatusFailed:
			listener.Failed(desc, outcome.Error)
			listener.Finished(desc)
		default:
			listener.Finished(desc)
		}
	}()

	if desc.Method.Skip != "" {
		outcome.Status = domain.StatusIgnored
		return outcome
	}

	var out bytes.Buffer
	err := d.runInContext(ctx, desc, &out)
	outcome.Output = out.String()
	switch {
	case err == nil:
		outcome.Status = domain.StatusPassed
	case domain.IsSkip(err):
		outcome.Status = domain.StatusIgnored
	default:
		outcome.Status = domain.StatusFailed
		outcome.Error = err
	}
	return outcome
}

// runInContext acquires the context, runs the body and releases the context.
// Panics from the bootstrapper or the body are turned into errors.
func (d *Dispatcher) runInContext(ctx context.Context, desc domain.Descriptor, out io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in %s: %v", desc.DisplayName, r)
		}
	}()

	body, err := d.bodyFor(desc.Method)
	if err != nil {
		return err
	}

	env, err := d.bootstrapper.Acquire(ctx, desc.Variant)
	if err != nil {
		return errors.WithMessagef(err, "acquire context for variant %d", desc.Variant)
	}
	// a typed nil inside the interface is not caught here; Bootstrapper
	// documents that Acquire returns an untyped nil Context
	if env == nil {
		return errors.Errorf("bootstrapper returned no context for variant %d", desc.Variant)
	}
	defer func() {
		if releaseErr := env.Release(); releaseErr != nil {
			log.WithError(releaseErr).WithField("test", desc.DisplayName).Warn("failed to release context")
			if err == nil {
				err = errors.WithMessage(releaseErr, "release context")
			}
		}
	}()

	return body(ctx, env, out)
}

func (d *Dispatcher) bodyFor(method domain.TestMethod) (domain.Body, error) {
	if method.Body != nil {
		return method.Body, nil
	}
	if len(method.Command) > 0 && d.runner != nil {
		return d.runner.Body(method), nil
	}
	return nil, errors.Errorf("method %s has neither a body nor a command", method.Name)
}
