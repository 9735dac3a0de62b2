package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/codelldb/lldb-dist/cmd/lldb-dist/args"
	"github.com/codelldb/lldb-dist/pkg/pipeline"
	"github.com/codelldb/lldb-dist/pkg/python"
)

type buildPythonCmd struct {
	args.TargetFlags
	args.BuildDirFlags
	args.PythonStandaloneFlags
}

func (cmd *buildPythonCmd) Help() string {
	return `Builds the trimmed python runtime (headers, stdlib and shared library) for a
target into <build-dir>/python_lldb.`
}

func (cmd *buildPythonCmd) Run(ctx context.Context) error {
	_, cfg, err := cmd.Resolve()
	if err != nil {
		return err
	}
	workDir, err := cmd.Dir()
	if err != nil {
		return err
	}

	var rt *python.Runtime
	err = pipeline.WithBuildDirLock(ctx, workDir, func() error {
		if cfg.PythonArchive() == "" {
			_, err := pipeline.Bootstrap(ctx, pipeline.BootstrapOptions{
				BuildDir:         workDir,
				PythonStandalone: cmd.PythonStandalone.String(),
			})
			if err != nil {
				return err
			}
		}
		dist, err := pipeline.PythonDist(ctx, workDir, cmd.PythonStandalone.String(), cfg)
		if err != nil {
			return err
		}
		rt, err = python.BuildRuntime(ctx, newRunner(ctx), dist, filepath.Join(workDir, "python_lldb"), cfg)
		return err
	})
	if err != nil {
		return err
	}

	_, err = getStdout(ctx).WriteString(fmt.Sprintf("include: %s\nlibrary: %s\n", rt.IncludeDir, rt.Library))
	return err
}
