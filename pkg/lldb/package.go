package lldb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/codelldb/lldb-dist/pkg/fileset"
	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

var (
	linuxFiles = []string{
		"bin/lldb",
		"bin/lldb-argdumper",
		"bin/lldb-server",
		"lib/liblldb.*",
	}
	linuxDebugFiles = []string{
		"bin/lldb",
		"bin/lldb-argdumper",
		"bin/lldb-server",
		"bin/llvm-dwarfdump",
		"bin/llvm-pdbutil",
		"bin/llvm-readobj",
		"lib/liblldb.*",
	}

	darwinFiles = []string{
		"bin/lldb",
		"bin/lldb-argdumper",
		"bin/debugserver",
	}
	darwinDebugFiles = []string{
		"bin/llvm-dwarfdump",
		"bin/llvm-pdbutil",
		"bin/llvm-readobj",
		"bin/lldb.dSYM/**/*",
		"bin/lldb-argdumper.dSYM/**/*",
		"bin/llvm-dwarfdump.dSYM/**/*",
		"bin/llvm-pdbutil.dSYM/**/*",
		"bin/llvm-readobj.dSYM/**/*",
		"lib/liblldb*.dSYM/**/*",
	}

	windowsFiles = []string{
		"bin/lldb.exe",
		"bin/lldb-argdumper.exe",
		"bin/liblldb.dll",
		"lib/liblldb.lib",
	}
	windowsDebugFiles = []string{
		"bin/lldb.pdb",
		"bin/lldb-argdumper.pdb",
		"bin/llvm-dwarfdump.exe",
		"bin/llvm-dwarfdump.pdb",
		"bin/llvm-pdbutil.exe",
		"bin/llvm-pdbutil.pdb",
		"bin/llvm-readobj.exe",
		"bin/llvm-readobj.pdb",
		"bin/liblldb.pdb",
	}

	pythonModuleFiles = "lib/lldb-python/**/*"
)

var libpythonRegex = regexp.MustCompile(`(?m)^\s*(.*(libpython3.*))\s\(`)

// ArchiveNames returns the default release and debug archive paths.
func ArchiveNames(workDir string, triple string) (string, string) {
	return filepath.Join(workDir, fmt.Sprintf("lldb--%s.zip", triple)),
		filepath.Join(workDir, fmt.Sprintf("lldb-debug%s.zip", triple))
}

type PackageOptions struct {
	// LLDBRoot is the LLVM build directory.
	LLDBRoot string
	// PythonDist is the trimmed python runtime.
	PythonDist string

	Config target.Config

	Output      string
	DebugOutput string

	// Release packages are compressed, stripped and come with a debug
	// archive. Otherwise the debug archive stays empty.
	Release bool
}

type packager struct {
	r      process.Runner
	opts   PackageOptions
	tmpDir string
	zip    *fileset.Archive
	debug  *fileset.Archive
}

// Package writes the release and debug archives for an LLDB build.
func Package(ctx context.Context, r process.Runner, opts PackageOptions) (err error) {
	tmpBase, err := utils.GetTmpBaseDir(ctx)
	if err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp(tmpBase, "package-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	p := &packager{
		r:      r,
		opts:   opts,
		tmpDir: tmpDir,
	}

	p.zip, err = fileset.CreateArchive(opts.Output, opts.Release)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := p.zip.Close(); err2 != nil {
			err = multierror.Append(err, err2).ErrorOrNil()
		}
	}()

	debugZip, err := fileset.CreateArchive(opts.DebugOutput, opts.Release)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := debugZip.Close(); err2 != nil {
			err = multierror.Append(err, err2).ErrorOrNil()
		}
	}()
	if opts.Release {
		p.debug = debugZip
	}

	log.Infof("Packaging %s into %s", opts.LLDBRoot, opts.Output)

	switch opts.Config.SystemName() {
	case target.Linux:
		err = p.packageLinux(ctx)
	case target.Darwin:
		err = p.packageDarwin(ctx)
	case target.Windows:
		err = p.packageWindows()
	default:
		err = fmt.Errorf("unknown target system '%s'", opts.Config.SystemName())
	}
	if err != nil {
		return err
	}

	err = p.addPythonModule()
	if err != nil {
		return err
	}
	return p.addPythonDist()
}

func (p *packager) glob(patterns ...string) (fileset.Files, error) {
	return fileset.RelGlob(p.opts.LLDBRoot, patterns...)
}

// tempFile returns a fresh path with the given base name inside the
// package temp dir. The parent directory is created by the copy.
func (p *packager) tempFile(name string) string {
	return filepath.Join(p.tmpDir, uuid.NewString(), name)
}

// stripBinaries replaces every entry with a stripped copy for release
// packages.
func (p *packager) stripBinaries(ctx context.Context) fileset.Stage {
	return fileset.Map(func(e fileset.Entry) (fileset.Entry, error) {
		if !p.opts.Release {
			return e, nil
		}
		tmp := p.tempFile(e.Base())
		err := utils.CopyFile(e.Abs, tmp)
		if err != nil {
			return e, err
		}
		err = p.r.Run(ctx, process.NewCommand(p.opts.Config.Strip(), tmp))
		if err != nil {
			return e, err
		}
		e.Abs = tmp
		return e, nil
	})
}

func (p *packager) packageLinux(ctx context.Context) error {
	files, err := p.glob(linuxFiles...)
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files, p.stripBinaries(ctx), fileset.AddToZip(p.zip))
	if err != nil {
		return err
	}

	files, err = p.glob(linuxDebugFiles...)
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files, fileset.AddToZip(p.debug))
	return err
}

func (p *packager) packageDarwin(ctx context.Context) error {
	err := p.addFixedLiblldb(ctx)
	if err != nil {
		return err
	}

	files, err := p.glob(darwinFiles...)
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files, fileset.AddToZip(p.zip))
	if err != nil {
		return err
	}
	for _, e := range files {
		dsym := utils.TrimExt(e.Abs) + ".dSYM"
		err = p.r.Run(ctx, process.NewCommand("dsymutil", e.Abs, "-o", dsym))
		if err != nil {
			log.Warningf("Failed to extract debug symbols of %s: %v", e.Rel, err)
		}
	}

	files, err = p.glob(darwinDebugFiles...)
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files, fileset.AddToZip(p.debug))
	return err
}

// addFixedLiblldb adds liblldb.dylib with its libpython dependency changed
// to be looked up via @rpath.
func (p *packager) addFixedLiblldb(ctx context.Context) error {
	tmp := p.tempFile("liblldb.dylib")
	err := utils.CopyFile(filepath.Join(p.opts.LLDBRoot, "lib", "liblldb.dylib"), tmp)
	if err != nil {
		return err
	}

	out, err := p.r.Output(ctx, process.NewCommand("otool", "-L", tmp))
	if err != nil {
		return err
	}
	m := libpythonRegex.FindStringSubmatch(out)
	if m == nil {
		return fmt.Errorf("liblldb.dylib does not link against libpython3")
	}
	oldName := m[1]
	newName := "@rpath/" + m[2]
	err = p.r.Run(ctx, process.NewCommand("install_name_tool", "-change", oldName, newName, tmp))
	if err != nil {
		return err
	}
	return p.zip.Add(tmp, "lib/liblldb.dylib")
}

func (p *packager) packageWindows() error {
	files, err := p.glob(windowsFiles...)
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files, fileset.AddToZip(p.zip))
	if err != nil {
		return err
	}

	files, err = p.glob(windowsDebugFiles...)
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files, fileset.AddToZip(p.debug))
	return err
}

// addPythonModule adds the lldb python package without the _lldb native
// module links.
func (p *packager) addPythonModule() error {
	files, err := p.glob(pythonModuleFiles)
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files,
		fileset.ExcludeBasenamePrefix("_lldb."),
		fileset.AddToZip(p.zip),
	)
	return err
}

func (p *packager) addPythonDist() error {
	files, err := fileset.RelGlob(p.opts.PythonDist, "**/*")
	if err != nil {
		return err
	}
	_, err = fileset.Compose(files, fileset.AddToZip(p.zip))
	return err
}
