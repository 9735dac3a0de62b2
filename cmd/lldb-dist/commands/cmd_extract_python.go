package commands

import (
	"context"

	"github.com/codelldb/lldb-dist/cmd/lldb-dist/args"
	"github.com/codelldb/lldb-dist/pkg/pipeline"
)

type extractPythonCmd struct {
	args.BuildDirFlags
	args.PythonStandaloneFlags
}

func (cmd *extractPythonCmd) Help() string {
	return `Extracts the python-build-standalone distribution matching the host into
<build-dir>/python and prints the path of its interpreter.`
}

func (cmd *extractPythonCmd) Run(ctx context.Context) error {
	pythonStandalone, err := cmd.RequirePythonStandalone()
	if err != nil {
		return err
	}
	workDir, err := cmd.Dir()
	if err != nil {
		return err
	}

	var interpreter string
	err = pipeline.WithBuildDirLock(ctx, workDir, func() error {
		var err error
		interpreter, err = pipeline.Bootstrap(ctx, pipeline.BootstrapOptions{
			BuildDir:         workDir,
			PythonStandalone: pythonStandalone,
		})
		return err
	})
	if err != nil {
		return err
	}
	_, err = getStdout(ctx).WriteString(interpreter + "\n")
	return err
}
