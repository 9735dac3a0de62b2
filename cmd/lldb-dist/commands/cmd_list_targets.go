package commands

import (
	"context"
	"fmt"

	"github.com/codelldb/lldb-dist/cmd/lldb-dist/args"
	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/codelldb/lldb-dist/pkg/yaml"
)

type listTargetsCmd struct {
	args.TargetsFileFlags
	args.OutputFormatFlags
}

func (cmd *listTargetsCmd) Help() string {
	return `Outputs all known targets, including those from --targets-file, with their
CMake variables.`
}

func (cmd *listTargetsCmd) Run(ctx context.Context) error {
	tbl, err := cmd.LoadTargets()
	if err != nil {
		return err
	}

	var s string
	switch cmd.OutputFormat {
	case "yaml":
		s, err = yaml.WriteYamlString(tbl)
	case "json":
		s, err = yaml.WriteJsonString(tbl)
		s += "\n"
	case "table":
		s = renderTargetsTable(tbl)
	default:
		return fmt.Errorf("invalid output format '%s'", cmd.OutputFormat)
	}
	if err != nil {
		return err
	}
	_, err = getStdout(ctx).WriteString(s)
	return err
}

func renderTargetsTable(tbl target.Table) string {
	var t utils.PrettyTable
	t.AddRow("TRIPLE", "SYSTEM", "PROCESSOR", "COMPILER", "PYTHON ARCHIVE")
	for _, triple := range tbl.Triples() {
		c := tbl[triple]
		t.AddRow(triple, c.SystemName(), c.Processor(), c.CCompiler(), c.PythonArchive())
	}
	return t.Render([]int{-1, -1, -1, -1})
}
