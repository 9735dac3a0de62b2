package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/codelldb/lldb-dist/cmd/lldb-dist/args"
	"github.com/codelldb/lldb-dist/pkg/lldb"
)

type packageCmd struct {
	args.TargetFlags
	args.PackageFlags
	args.PackageInputFlags
}

func (cmd *packageCmd) Help() string {
	return `Packages an existing LLDB build and python runtime into a release zip and a
debug info zip. Archives default to the current directory.`
}

func (cmd *packageCmd) Run(ctx context.Context) error {
	_, cfg, err := cmd.Resolve()
	if err != nil {
		return err
	}
	lldbRoot, pythonDist, err := cmd.RequireInputs()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	output, debugOutput := cmd.ArchivePaths(cwd, cmd.Target)

	err = lldb.Package(ctx, newRunner(ctx), lldb.PackageOptions{
		LLDBRoot:    lldbRoot,
		PythonDist:  pythonDist,
		Config:      cfg,
		Output:      output,
		DebugOutput: debugOutput,
		Release:     cmd.ReleasePackage,
	})
	if err != nil {
		return err
	}

	_, err = getStdout(ctx).WriteString(fmt.Sprintf("%s\n%s\n", output, debugOutput))
	return err
}
