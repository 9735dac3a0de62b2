// Package pipeline runs the complete LLDB distribution build: python
// runtime, dependencies, LLVM build and packaging.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/codelldb/lldb-dist/pkg/deps"
	"github.com/codelldb/lldb-dist/pkg/lldb"
	"github.com/codelldb/lldb-dist/pkg/python"
	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Target string
	// Targets defaults to the builtin table.
	Targets target.Table

	PythonStandalone string
	BuildDir         string
	BuildType        string
	ReleasePackage   bool
	CCache           string
	LLVMSourceDir    string

	// PythonExe is the interpreter used by the LLDB build. When empty, the
	// host distribution is bootstrapped into <build>/python.
	PythonExe string

	// Output and DebugOutput default to the names from lldb.ArchiveNames.
	Output      string
	DebugOutput string

	HostArch string
}

type Result struct {
	Runtime     *python.Runtime
	LLDBRoot    string
	Output      string
	DebugOutput string
}

func (o *Options) targetConfig() (target.Config, error) {
	tbl := o.Targets
	if tbl == nil {
		tbl = target.DefaultTable()
	}
	return tbl.Get(o.Target)
}

// PythonDist returns the distribution to build the runtime from. Targets
// without their own archive use the host distribution in <work>/python,
// the others extract their archive into <work>/python_dist.
func PythonDist(ctx context.Context, workDir string, pythonStandalone string, cfg target.Config) (string, error) {
	pattern := cfg.PythonArchive()
	if pattern == "" {
		dist := filepath.Join(workDir, "python")
		if !utils.IsDirectory(dist) {
			return "", fmt.Errorf("host python distribution %s does not exist, run extract-python first", dist)
		}
		return dist, nil
	}

	dist := filepath.Join(workDir, "python_dist")
	archive, err := python.FindArchive(pythonStandalone, pattern)
	if err != nil {
		return "", err
	}
	err = python.ExtractDist(ctx, archive, dist)
	if err != nil {
		return "", err
	}
	return dist, nil
}

// Run builds and packages LLDB for opts.Target.
func Run(ctx context.Context, r process.Runner, opts Options) (*Result, error) {
	cfg, err := opts.targetConfig()
	if err != nil {
		return nil, err
	}

	workDir, err := filepath.Abs(opts.BuildDir)
	if err != nil {
		return nil, err
	}

	var result *Result
	err = WithBuildDirLock(ctx, workDir, func() error {
		var err error
		result, err = run(ctx, r, workDir, cfg, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func run(ctx context.Context, r process.Runner, workDir string, cfg target.Config, opts Options) (*Result, error) {
	// the host distribution is also the runtime source of targets without
	// their own archive, even when the interpreter is given
	pythonExe := opts.PythonExe
	if pythonExe == "" || cfg.PythonArchive() == "" {
		exe, err := Bootstrap(ctx, BootstrapOptions{
			BuildDir:         workDir,
			PythonStandalone: opts.PythonStandalone,
		})
		if err != nil {
			return nil, err
		}
		if pythonExe == "" {
			pythonExe = exe
		}
	}

	pythonDist, err := PythonDist(ctx, workDir, opts.PythonStandalone, cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("Using python_dist: %s", pythonDist)

	pythonLLDB := filepath.Join(workDir, "python_lldb")
	rt, err := python.BuildRuntime(ctx, r, pythonDist, pythonLLDB, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build python runtime: %w", err)
	}

	b := deps.NewBuilder(r, workDir)
	libxml2, err := b.BuildLibXML2(ctx, cfg)
	if err != nil {
		return nil, err
	}
	swig, err := b.BuildSwig(ctx)
	if err != nil {
		return nil, err
	}

	hostArch := opts.HostArch
	if hostArch == "" {
		hostArch = HostArch(runtime.GOOS, runtime.GOARCH)
	}
	llvmSrc := opts.LLVMSourceDir
	if llvmSrc == "" {
		llvmSrc = "llvm"
	}
	llvmSrc, err = filepath.Abs(llvmSrc)
	if err != nil {
		return nil, err
	}

	lldbRoot, err := lldb.Build(ctx, r, workDir, cfg, lldb.BuildOptions{
		BuildType:      opts.BuildType,
		CCache:         opts.CCache,
		LLVMSourceDir:  llvmSrc,
		HostArch:       hostArch,
		LibXML2Include: libxml2.IncludeDir,
		LibXML2Library: libxml2.Library,
		SwigExecutable: swig.Executable,
		SwigDir:        swig.Dir,
		PythonExe:      pythonExe,
		PythonInclude:  rt.IncludeDir,
		PythonLibrary:  rt.Library,
	})
	if err != nil {
		return nil, err
	}

	output, debugOutput := lldb.ArchiveNames(workDir, opts.Target)
	if opts.Output != "" {
		output = opts.Output
	}
	if opts.DebugOutput != "" {
		debugOutput = opts.DebugOutput
	}

	err = lldb.Package(ctx, r, lldb.PackageOptions{
		LLDBRoot:    lldbRoot,
		PythonDist:  pythonLLDB,
		Config:      cfg,
		Output:      output,
		DebugOutput: debugOutput,
		Release:     opts.ReleasePackage,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("Wrote %s and %s", output, debugOutput)
	return &Result{
		Runtime:     rt,
		LLDBRoot:    lldbRoot,
		Output:      output,
		DebugOutput: debugOutput,
	}, nil
}
