package bootstrap

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
	log "github.com/sirupsen/logrus"

	"vmx/internal/domain"
	"vmx/internal/execution"
)

const (
	// VariantEnv carries the variant a context was bootstrapped for.
	VariantEnv = execution.VariantEnv
	// WorkdirEnv carries the context's private working directory.
	WorkdirEnv = "VMX_WORKDIR"
)

// EnvBootstrapper gives every acquisition a private temp directory and an
// environment describing the variant.
type EnvBootstrapper struct {
	root string
	env  []string
	seq  atomic.Int64
	live *xsync.Map[int64, *EnvContext]
}

// NewEnvBootstrapper creates a new EnvBootstrapper. Directories are created
// under root, or the system temp directory when root is empty. env is added
// to every context's environment.
func NewEnvBootstrapper(root string, env []string) *EnvBootstrapper {
	return &EnvBootstrapper{
		root: root,
		env:  env,
		live: xsync.NewMap[int64, *EnvContext](),
	}
}

// Acquire creates a fresh context for v.
func (b *EnvBootstrapper) Acquire(ctx context.Context, v domain.Variant) (execution.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, errors.Errorf("cannot bootstrap unresolved variant %s", v)
	}

	id := b.seq.Add(1)
	dir, err := os.MkdirTemp(b.root, fmt.Sprintf("vmx-v%d-%d-", v, id))
	if err != nil {
		return nil, errors.Wrapf(err, "create work directory for variant %d", v)
	}

	env := make([]string, 0, len(b.env)+2)
	env = append(env, b.env...)
	env = append(env,
		fmt.Sprintf("%s=%d", VariantEnv, v),
		fmt.Sprintf("%s=%s", WorkdirEnv, dir),
	)

	c := &EnvContext{id: id, variant: v, dir: dir, env: env, owner: b}
	b.live.Store(id, c)
	log.WithFields(log.Fields{"variant": int(v), "dir": dir}).Debug("context acquired")
	return c, nil
}

// Live returns how many contexts are acquired and not yet released.
func (b *EnvBootstrapper) Live() int {
	return b.live.Size()
}

// Close releases contexts that were never released, for example after an
// interrupted run.
func (b *EnvBootstrapper) Close() error {
	var leaked []*EnvContext
	b.live.Range(func(_ int64, c *EnvContext) bool {
		leaked = append(leaked, c)
		return true
	})
	var firstErr error
	for _, c := range leaked {
		log.WithField("dir", c.dir).Warn("releasing leaked context")
		if err := c.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EnvContext is a context created by EnvBootstrapper
type EnvContext struct {
	id       int64
	variant  domain.Variant
	dir      string
	env      []string
	owner    *EnvBootstrapper
	released atomic.Bool
}

func (c *EnvContext) Variant() domain.Variant { return c.variant }
func (c *EnvContext) Environ() []string       { return c.env }
func (c *EnvContext) Dir() string             { return c.dir }

// Release removes the work directory. Releasing twice is a no-op.
func (c *EnvContext) Release() error {
	if !c.released.CompareAndSwap(false, true) {
		return nil
	}
	c.owner.live.Delete(c.id)
	if err := os.RemoveAll(c.dir); err != nil {
		return errors.Wrapf(err, "remove work directory %s", c.dir)
	}
	return nil
}
