// Package lldb configures and builds LLDB and packages the build output
// into release and debug archives.
package lldb

import (
	"context"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/cmake"
	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
)

const DefaultBuildType = "MinSizeRel"

var defaultTargets = []string{"lldb", "llvm-dwarfdump", "llvm-pdbutil", "llvm-readobj"}

type BuildOptions struct {
	BuildType string
	// CCache is used as compiler launcher when set.
	CCache string

	// LLVMSourceDir is the llvm directory of the llvm-project checkout.
	LLVMSourceDir string
	// HostArch is the processor of the build machine, as used in
	// CMAKE_SYSTEM_PROCESSOR.
	HostArch string

	LibXML2Include string
	LibXML2Library string
	SwigExecutable string
	SwigDir        string
	PythonExe      string
	PythonInclude  string
	PythonLibrary  string
}

// CMakeVars returns the cache variables for configuring LLVM, together
// with the list of targets to build.
func CMakeVars(opts BuildOptions, cfg target.Config) (cmake.Vars, []string) {
	buildType := opts.BuildType
	if buildType == "" {
		buildType = DefaultBuildType
	}

	vars := cmake.Vars{
		"CMAKE_BUILD_TYPE":          buildType,
		"LLVM_ENABLE_PROJECTS":      "clang;libcxx;lldb",
		"LLVM_TARGETS_TO_BUILD":     "X86;AArch64;ARM",
		"LLVM_PARALLEL_LINK_JOBS":   "1",
		"LLVM_VERSION_SUFFIX":       "-custom",
		"LLVM_APPEND_VC_REV":        "FALSE",
		"LLVM_ENABLE_TERMINFO":      "FALSE",
		"LLVM_ENABLE_LIBXML2":       "FORCE_ON",
		"LLDB_ENABLE_PYTHON":        "TRUE",
		"LLDB_EMBED_PYTHON_HOME":    "TRUE",
		"LLDB_PYTHON_HOME":          "..",
		"LLDB_PYTHON_RELATIVE_PATH": "lib/lldb-python",
		"LLDB_ENABLE_LIBEDIT":       "FALSE",
		"LLDB_ENABLE_CURSES":        "FALSE",
		"LLDB_ENABLE_LZMA":          "FALSE",
		"Python3_EXECUTABLE":        opts.PythonExe,
		"Python3_INCLUDE_DIRS":      opts.PythonInclude,
		"Python3_LIBRARIES":         opts.PythonLibrary,
		"SWIG_EXECUTABLE":           opts.SwigExecutable,
		"SWIG_DIR":                  opts.SwigDir,
		"LIBXML2_INCLUDE_DIR":       opts.LibXML2Include,
		"LIBXML2_LIBRARY":           opts.LibXML2Library,
	}

	if opts.CCache != "" {
		vars["CMAKE_C_COMPILER_LAUNCHER"] = opts.CCache
		vars["CMAKE_CXX_COMPILER_LAUNCHER"] = opts.CCache
	}

	vars.Update(cfg)

	targets := append([]string{}, defaultTargets...)

	if cfg.IsCrossCompiling(opts.HostArch) {
		vars["CMAKE_CROSSCOMPILING"] = "ON"
		vars["CROSS_TOOLCHAIN_FLAGS_NATIVE"] = "-DLLVM_ENABLE_PROJECTS=clang"
	}

	switch cfg.SystemName() {
	case target.Linux:
		targets = append(targets, "lldb-server")
		libDir := " -L" + filepath.Dir(opts.PythonLibrary)
		vars.Append(target.ExeLinkerFlags, libDir)
		vars.Append(target.SharedLinkerFlags, libDir)
		vars["LLVM_ENABLE_ZLIB"] = "FORCE_ON"
	case target.Darwin:
		vars["LLDB_USE_SYSTEM_DEBUGSERVER"] = "ON"
		vars["LLVM_ENABLE_ZLIB"] = "FORCE_ON"
	}

	return vars, targets
}

// Build configures LLVM into <workDir>/llvm and builds all LLDB targets.
// It returns the build directory.
func Build(ctx context.Context, r process.Runner, workDir string, cfg target.Config, opts BuildOptions) (string, error) {
	vars, targets := CMakeVars(opts, cfg)

	p := &cmake.Project{
		Name:      "LLVM",
		SourceDir: opts.LLVMSourceDir,
		BuildDir:  filepath.Join(workDir, "llvm"),
		Env:       []string{"SWIG_LIB=" + filepath.Join(opts.SwigDir, "Lib")},
	}
	err := p.Configure(ctx, r, vars)
	if err != nil {
		return "", err
	}
	for _, t := range targets {
		err = p.Build(ctx, r, t)
		if err != nil {
			return "", err
		}
	}
	return p.BuildDir, nil
}
