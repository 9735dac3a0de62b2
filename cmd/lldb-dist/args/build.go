package args

import (
	"fmt"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/lldb"
)

type BuildDirFlags struct {
	BuildDir pathType `group:"build" short:"b" help:"Working directory for clones, builds and packages." default:"."`
}

// Dir returns the absolute build directory.
func (f *BuildDirFlags) Dir() (string, error) {
	p := f.BuildDir.String()
	if p == "" {
		p = "."
	}
	return filepath.Abs(p)
}

type PythonStandaloneFlags struct {
	PythonStandalone existingDirType `group:"python" help:"Directory containing python-build-standalone archives (cpython-*.tar.zst)."`
}

func (f *PythonStandaloneFlags) RequirePythonStandalone() (string, error) {
	if f.PythonStandalone == "" {
		return "", fmt.Errorf("--python-standalone is required")
	}
	return f.PythonStandalone.String(), nil
}

type LLVMFlags struct {
	LLVMSource existingDirType  `group:"build" help:"The llvm directory of an llvm-project checkout. Defaults to ./llvm."`
	BuildType  string           `group:"build" help:"CMake build type." default:"MinSizeRel"`
	Ccache     string           `group:"build" help:"Compiler launcher, e.g. ccache or sccache."`
	PythonExe  existingFileType `group:"python" help:"Python interpreter for the LLDB build. Defaults to the bootstrapped host distribution."`
}

type PackageFlags struct {
	ReleasePackage bool     `group:"package" help:"Strip binaries and produce a separate debug info archive."`
	Output         pathType `group:"package" short:"o" help:"Output zip. Defaults to lldb--<target>.zip in the build directory."`
	DebugOutput    pathType `group:"package" help:"Debug info zip. Defaults to lldb-debug<target>.zip in the build directory."`
}

// ArchivePaths returns Output and DebugOutput with their defaults applied.
func (f *PackageFlags) ArchivePaths(workDir string, triple string) (string, string) {
	out, dbg := lldb.ArchiveNames(workDir, triple)
	if f.Output != "" {
		out = f.Output.String()
	}
	if f.DebugOutput != "" {
		dbg = f.DebugOutput.String()
	}
	return out, dbg
}

type PackageInputFlags struct {
	LLDBRoot   existingDirType `group:"package" help:"Install root of the LLDB build."`
	PythonDist existingDirType `group:"package" help:"Trimmed python runtime to bundle, usually <build-dir>/python_lldb."`
}

func (f *PackageInputFlags) RequireInputs() (string, string, error) {
	if f.LLDBRoot == "" || f.PythonDist == "" {
		return "", "", fmt.Errorf("--lldb-root and --python-dist are required")
	}
	return f.LLDBRoot.String(), f.PythonDist.String(), nil
}
