package execution

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"vmx/internal/domain"
)

// SkipExitCode is the exit status a command uses to report an explicit skip.
const SkipExitCode = 77

// VariantEnv is the environment variable carrying the active variant.
const VariantEnv = "VMX_VARIANT"

// CommandRunner executes methods declared as external commands
type CommandRunner struct {
	baseDir string
}

// NewCommandRunner creates a new CommandRunner. Relative method directories
// are resolved against baseDir.
func NewCommandRunner(baseDir string) *CommandRunner {
	return &CommandRunner{baseDir: baseDir}
}

// Body returns the method's command as a test body.
func (r *CommandRunner) Body(method domain.TestMethod) domain.Body {
	return func(ctx context.Context, env domain.Environment, out io.Writer) error {
		return r.Run(ctx, method, env, out)
	}
}

// Run executes the method's command inside env, writing combined output to out
func (r *CommandRunner) Run(ctx context.Context, method domain.TestMethod, env domain.Environment, out io.Writer) error {
	if len(method.Command) == 0 {
		return errors.Errorf("method %s has no command", method.Name)
	}
	cmd := exec.CommandContext(ctx, method.Command[0], method.Command[1:]...)

	// Start with current environment, the context's env wins over it
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, env.Environ()...)
	cmd.Env = append(cmd.Env, method.Env...)
	cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%d", VariantEnv, env.Variant()))

	cmd.Dir = r.dir(method, env)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == SkipExitCode {
		return domain.Skip(fmt.Sprintf("%s exited with %d", method.Command[0], SkipExitCode))
	}
	if err != nil {
		return errors.WithMessagef(err, "run %s", method.Command[0])
	}
	return nil
}

func (r *CommandRunner) dir(method domain.TestMethod, env domain.Environment) string {
	switch {
	case method.Dir == "":
		return env.Dir()
	case filepath.IsAbs(method.Dir):
		return method.Dir
	default:
		return filepath.Join(r.baseDir, method.Dir)
	}
}
