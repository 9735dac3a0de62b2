package args

import (
	"fmt"

	"github.com/codelldb/lldb-dist/pkg/target"
)

type TargetsFileFlags struct {
	TargetsFile existingFileType `group:"target" help:"YAML file with additional or overriding target definitions." exts:"yml,yaml"`
}

// LoadTargets returns the builtin table with the targets file applied.
func (f *TargetsFileFlags) LoadTargets() (target.Table, error) {
	tbl := target.DefaultTable()
	if f.TargetsFile == "" {
		return tbl, nil
	}
	return tbl.LoadOverrides(f.TargetsFile.String())
}

type TargetFlags struct {
	TargetsFileFlags

	Target string `group:"target" short:"t" help:"Target triple, e.g. x86_64-linux-gnu. See list-targets."`
}

// Resolve loads the target table and looks up Target in it.
func (f *TargetFlags) Resolve() (target.Table, target.Config, error) {
	if f.Target == "" {
		return nil, nil, fmt.Errorf("--target is required")
	}
	tbl, err := f.LoadTargets()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := tbl.Get(f.Target)
	if err != nil {
		return nil, nil, err
	}
	return tbl, cfg, nil
}
