package commands

import (
	"context"

	"github.com/codelldb/lldb-dist/pkg/utils/process"
)

type runnerKey struct{}

// WithRunner makes all commands invoke external tools through r.
func WithRunner(ctx context.Context, r process.Runner) context.Context {
	return context.WithValue(ctx, runnerKey{}, r)
}

// newRunner returns the runner set with WithRunner, or one that streams tool
// output to the command's output streams.
func newRunner(ctx context.Context) process.Runner {
	if r, ok := ctx.Value(runnerKey{}).(process.Runner); ok {
		return r
	}
	stdout, stderr := getStdStreams(ctx)
	r := process.NewExecRunner(stdout, stderr)
	r.Stdin = getStdin(ctx)
	return r
}
