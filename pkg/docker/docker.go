package docker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/utils/process"
)

const (
	DefaultImage = "vadimcn/linux-builder:latest"

	sourceMount = "/workspace/source"
	buildMount  = "/workspace/build"
	toolsMount  = "/workspace/build-tools"
)

type Options struct {
	// ProjectRoot is mounted read-only as the source directory.
	ProjectRoot string
	Arch        string
	BuildDir    string
	BuildTools  string
	Image       string
}

// withDefaults fills BuildDir, BuildTools and Image from ProjectRoot and Arch.
func (o Options) withDefaults() Options {
	if o.BuildDir == "" {
		if o.Arch != "" {
			o.BuildDir = filepath.Join(o.ProjectRoot, "build-"+o.Arch)
		} else {
			o.BuildDir = filepath.Join(o.ProjectRoot, "build")
		}
	}
	if o.BuildTools == "" {
		o.BuildTools = filepath.Join(filepath.Dir(o.ProjectRoot), "build-tools", "linux")
	}
	if o.Image == "" {
		o.Image = DefaultImage
	}
	return o
}

// EnvArgs returns the docker arguments that start an interactive builder shell.
func EnvArgs(opts Options) []string {
	opts = opts.withDefaults()
	return []string{
		"run", "-it", "--privileged",
		fmt.Sprintf("-v%s:%s:ro", opts.ProjectRoot, sourceMount),
		fmt.Sprintf("-v%s:%s:rw", opts.BuildDir, buildMount),
		fmt.Sprintf("-v%s:%s:ro", opts.BuildTools, toolsMount),
		"-eBUILD_SOURCESDIRECTORY=" + sourceMount,
		"-eAGENT_BUILDDIRECTORY=" + buildMount,
		"-eCMAKE_BUILD_TYPE=RelWithDebInfo",
		"-eSCCACHE_DIR=" + buildMount + "/.sccache",
		"-eSCCACHE_IDLE_TIMEOUT=60",
		"-w" + buildMount,
		"-u1000:1000",
		"-v/etc/passwd:/etc/passwd",
		opts.Image,
		"bash", "-c", "export PATH=" + toolsMount + "/bin:$PATH; bash",
	}
}

func Run(ctx context.Context, r process.Runner, opts Options) error {
	if opts.ProjectRoot == "" {
		return fmt.Errorf("project root must be set")
	}
	err := r.Run(ctx, process.NewCommand("docker", EnvArgs(opts)...).WithInteractive())
	if err != nil {
		return fmt.Errorf("docker environment failed: %w", err)
	}
	return nil
}
