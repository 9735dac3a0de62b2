package commands

import (
	"context"
	"fmt"

	"github.com/codelldb/lldb-dist/cmd/lldb-dist/args"
	"github.com/codelldb/lldb-dist/pkg/pipeline"
)

type buildCmd struct {
	args.TargetFlags
	args.BuildDirFlags
	args.PythonStandaloneFlags
	args.LLVMFlags
	args.PackageFlags
}

func (cmd *buildCmd) Help() string {
	return `Runs the complete build for a target: extracts the host python, builds the
trimmed python runtime, libxml2, swig and LLDB, and packages the result.

Existing clones and installs inside the build directory are reused.`
}

func (cmd *buildCmd) Run(ctx context.Context) error {
	tbl, _, err := cmd.Resolve()
	if err != nil {
		return err
	}
	pythonStandalone, err := cmd.RequirePythonStandalone()
	if err != nil {
		return err
	}
	workDir, err := cmd.Dir()
	if err != nil {
		return err
	}
	output, debugOutput := cmd.ArchivePaths(workDir, cmd.Target)

	result, err := pipeline.Run(ctx, newRunner(ctx), pipeline.Options{
		Target:           cmd.Target,
		Targets:          tbl,
		PythonStandalone: pythonStandalone,
		BuildDir:         workDir,
		BuildType:        cmd.BuildType,
		ReleasePackage:   cmd.ReleasePackage,
		CCache:           cmd.Ccache,
		LLVMSourceDir:    cmd.LLVMSource.String(),
		PythonExe:        cmd.PythonExe.String(),
		Output:           output,
		DebugOutput:      debugOutput,
	})
	if err != nil {
		return err
	}

	_, err = getStdout(ctx).WriteString(fmt.Sprintf("%s\n%s\n", result.Output, result.DebugOutput))
	return err
}
