package pipeline

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/codelldb/lldb-dist/pkg/python"
	"github.com/codelldb/lldb-dist/pkg/utils"
)

type BootstrapOptions struct {
	BuildDir         string
	PythonStandalone string

	// GOOS and GOARCH select the host distribution. They default to the
	// running platform.
	GOOS   string
	GOARCH string
}

// Bootstrap extracts the host python distribution into <build>/python and
// returns the path of its interpreter.
func Bootstrap(ctx context.Context, opts BootstrapOptions) (string, error) {
	goos, goarch := opts.GOOS, opts.GOARCH
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}

	dist := filepath.Join(opts.BuildDir, "python")
	if utils.Exists(dist) {
		return python.HostInterpreter(dist, goos), nil
	}
	archive, err := python.FindArchive(opts.PythonStandalone, python.HostArchivePattern(goos, goarch))
	if err != nil {
		return "", err
	}
	err = python.ExtractDist(ctx, archive, dist)
	if err != nil {
		return "", err
	}
	return python.HostInterpreter(dist, goos), nil
}

// HostArch returns the processor name of the build machine the way it
// appears in CMAKE_SYSTEM_PROCESSOR of the target table.
func HostArch(goos string, goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		if goos == "darwin" {
			return "arm64"
		}
		return "aarch64"
	case "386":
		return "i686"
	}
	return goarch
}
