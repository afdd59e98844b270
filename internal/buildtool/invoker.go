package buildtool

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/flipcat/catalog-bundler/internal/logger"
)

// Command is the external build tool executable.
const Command = "ufbt"

// ToolError reports a non-zero exit of the external tool. Output holds the
// combined stdout and stderr verbatim so upstream reporting can forward it
// to the package author unchanged.
type ToolError struct {
	// Args are the tool arguments that were run.
	Args []string
	// Output is the captured combined stdout/stderr.
	Output []byte
	// Err is the underlying exec error.
	Err error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s %s failed: %v\n%s",
		Command, strings.Join(e.Args, " "), e.Err, e.Output)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Update refreshes the tool's SDK state. Run once at the start of a
// pipeline; callers may skip it when the SDK is known to be current.
func Update(ctx context.Context) error {
	logger.Info(ctx, "Refreshing build tool SDK")
	return run(ctx, "", "update")
}

// Lint runs the tool's lint step with dir as the working directory.
func Lint(ctx context.Context, dir string) error {
	logger.Info(ctx, "Linting")
	return run(ctx, dir, "lint")
}

// Build runs the tool's default build with dir as the working directory.
// On success the compiled artifact lands at the conventional dist location.
func Build(ctx context.Context, dir string) error {
	logger.Info(ctx, "Building")
	return run(ctx, dir)
}

func run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, Command, args...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ToolError{Args: args, Output: output, Err: err}
	}

	logger.DebugKV(ctx, "Build tool finished", "args", args, "output", string(output))

	return nil
}
