package commands

import (
	"context"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/docker"
)

type dockerEnvCmd struct {
	Arch        string `group:"docker" help:"Target architecture. Selects build-<arch> as the default build directory."`
	BuildDir    string `group:"docker" help:"Build directory mounted at /workspace/build."`
	BuildTools  string `group:"docker" help:"Toolchain directory mounted at /workspace/build-tools. Defaults to ../build-tools/linux."`
	ProjectRoot string `group:"docker" help:"Source directory mounted at /workspace/source. Defaults to the current directory."`
	Image       string `group:"docker" help:"Builder image." default:"vadimcn/linux-builder:latest"`
}

func (cmd *dockerEnvCmd) Help() string {
	return `Starts an interactive shell in the Linux builder container with the source,
build and build-tools directories mounted.`
}

func (cmd *dockerEnvCmd) Run(ctx context.Context) error {
	opts := docker.Options{
		ProjectRoot: cmd.ProjectRoot,
		Arch:        cmd.Arch,
		BuildDir:    cmd.BuildDir,
		BuildTools:  cmd.BuildTools,
		Image:       cmd.Image,
	}
	if opts.ProjectRoot == "" {
		opts.ProjectRoot = "."
	}

	// docker only accepts absolute host paths for bind mounts
	for _, p := range []*string{&opts.ProjectRoot, &opts.BuildDir, &opts.BuildTools} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return err
		}
		*p = abs
	}
	return docker.Run(ctx, newRunner(ctx), opts)
}
