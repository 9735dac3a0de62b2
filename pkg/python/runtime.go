package python

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
	cp "github.com/otiai10/copy"
	log "github.com/sirupsen/logrus"
)

// Runtime describes the trimmed python runtime LLDB is linked against.
type Runtime struct {
	IncludeDir string
	Library    string
}

// BuildRuntime copies the stdlib of dist into out and builds a shared
// python library containing only the selected extensions. On Windows the
// prebuilt DLLs are copied instead.
func BuildRuntime(ctx context.Context, r process.Runner, dist string, out string, cfg target.Config) (*Runtime, error) {
	m, err := LoadManifest(dist)
	if err != nil {
		return nil, err
	}
	major, minor, err := m.Version()
	if err != nil {
		return nil, err
	}

	exts := SelectExtensions(m)
	log.Infof("Included extensions: %s", strings.Join(extensionNames(exts), ", "))

	stdlibSrc, err := StdlibSource(m, dist)
	if err != nil {
		return nil, err
	}
	_, err = CopyStdlib(stdlibSrc, StdlibDest(out, cfg.SystemName(), major, minor))
	if err != nil {
		return nil, err
	}

	b := &runtimeBuilder{
		r:     r,
		m:     m,
		dist:  dist,
		out:   out,
		cfg:   cfg,
		major: major,
		minor: minor,
		exts:  exts,
	}

	switch cfg.SystemName() {
	case target.Linux, target.Darwin:
		return b.buildShared(ctx)
	case target.Windows:
		return b.copyWindows()
	default:
		return nil, fmt.Errorf("unsupported system '%s'", cfg.SystemName())
	}
}

type runtimeBuilder struct {
	r     process.Runner
	m     *Manifest
	dist  string
	out   string
	cfg   target.Config
	major string
	minor string
	exts  []IncludedExtension
}

func (b *runtimeBuilder) includeDir() string {
	return filepath.Join(b.dist, "install", "include", fmt.Sprintf("python%s.%s", b.major, b.minor))
}

// compiler returns the C compiler followed by the target flags.
func (b *runtimeBuilder) compiler(args ...string) process.Command {
	cc := []string{}
	cc = append(cc, strings.Fields(b.cfg.CFlags())...)
	if arch := b.cfg.OSXArchitectures(); arch != "" {
		cc = append(cc, "-arch", arch)
	}
	cc = append(cc, args...)
	return process.NewCommand(b.cfg.CCompiler(), cc...).InDir(b.dist)
}

// objects returns all objects of the core and the selected extensions,
// deduplicated in first-seen order.
func (b *runtimeBuilder) objects() []string {
	objs := []string{"config.o"}
	add := func(l []string) {
		for _, o := range l {
			if o == b.m.BuildInfo.InittabObject {
				continue
			}
			objs = append(objs, filepath.Join(b.dist, filepath.FromSlash(o)))
		}
	}
	add(b.m.BuildInfo.Core.Objs)
	for _, e := range b.exts {
		add(e.Objs)
	}
	return utils.UniqueStrings(objs)
}

func (b *runtimeBuilder) libs() []string {
	libs := []string{"libpython.a"}
	for _, e := range b.exts {
		for _, l := range e.Links {
			switch {
			case l.System:
				libs = append(libs, "-l"+l.Name)
			case l.Framework:
				libs = append(libs, "-Wl,-framework,"+l.Name)
			case l.PathStatic != nil:
				libs = append(libs, filepath.Join(b.dist, filepath.FromSlash(*l.PathStatic)))
			default:
				log.Warningf("Link %s of extension %s has no static library", l.Name, e.Name)
			}
		}
	}
	return libs
}

func (b *runtimeBuilder) writeFile(name string, fn func(f *os.File) error) error {
	f, err := os.Create(filepath.Join(b.dist, name))
	if err != nil {
		return err
	}
	err = fn(f)
	err2 := f.Close()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return err2
}

func (b *runtimeBuilder) buildShared(ctx context.Context) (*Runtime, error) {
	systemName := b.cfg.SystemName()

	err := b.writeFile("config.c", func(f *os.File) error {
		return WriteInittab(f, b.exts)
	})
	if err != nil {
		return nil, err
	}
	err = b.r.Run(ctx, b.compiler("-I", b.includeDir(), "-c", "config.c"))
	if err != nil {
		return nil, err
	}

	objs := b.objects()
	err = b.r.Run(ctx, process.NewCommand("ar", append([]string{"-r", "libpython.a"}, objs...)...).InDir(b.dist))
	if err != nil {
		return nil, err
	}

	err = os.MkdirAll(filepath.Join(b.out, "lib"), 0o755)
	if err != nil {
		return nil, err
	}

	err = b.writeFile("python.exports", func(f *os.File) error {
		return WriteExports(f, systemName, b.major, b.minor)
	})
	if err != nil {
		return nil, err
	}

	libs := b.libs()
	var lib string
	var link process.Command
	if systemName == target.Linux {
		lib = filepath.Join(b.out, "lib", fmt.Sprintf("libpython%s%s.so", b.major, b.minor))
		args := []string{
			"-shared",
			"-Wl,--no-undefined",
			"-Wl,--version-script,python.exports",
			"-o", lib,
		}
		args = append(args, objs...)
		args = append(args, "-Wl,-(")
		args = append(args, libs...)
		args = append(args, "-lpthread", "-lm", "-lutil", "-Wl,-)")
		link = b.compiler(args...)
	} else {
		lib = filepath.Join(b.out, "lib", fmt.Sprintf("libpython%s%s.dylib", b.major, b.minor))
		args := []string{
			"-shared",
			"-Wl,-exported_symbols_list,python.exports",
			"-o", lib,
		}
		args = append(args, objs...)
		args = append(args, libs...)
		link = b.compiler(args...)
	}
	err = b.r.Run(ctx, link)
	if err != nil {
		return nil, err
	}

	if systemName == target.Linux {
		err = b.r.Run(ctx, process.NewCommand(b.cfg.Strip(), lib).InDir(b.dist))
		if err != nil {
			return nil, err
		}
	}

	return &Runtime{
		IncludeDir: b.includeDir(),
		Library:    lib,
	}, nil
}

func copyToDir(src string, dir string) error {
	log.Debugf("Copying %s to %s", src, dir)
	return cp.Copy(src, filepath.Join(dir, filepath.Base(src)))
}

func (b *runtimeBuilder) copyWindows() (*Runtime, error) {
	if b.m.BuildInfo.Core.SharedLib == "" {
		return nil, fmt.Errorf("manifest has no core shared_lib")
	}
	dll := filepath.Join(b.dist, filepath.FromSlash(b.m.BuildInfo.Core.SharedLib))
	binDir := filepath.Join(b.out, "bin")
	for _, p := range []string{dll, filepath.Join(filepath.Dir(dll), "python3.dll")} {
		if err := copyToDir(p, binDir); err != nil {
			return nil, err
		}
	}

	dllsDir := filepath.Join(b.out, "DLLs")
	err := os.MkdirAll(dllsDir, 0o755)
	if err != nil {
		return nil, err
	}
	for _, e := range b.exts {
		if e.SharedLib != nil && *e.SharedLib != "" {
			if err := copyToDir(filepath.Join(b.dist, filepath.FromSlash(*e.SharedLib)), dllsDir); err != nil {
				return nil, err
			}
		}
		for _, l := range e.Links {
			if l.PathDynamic != nil && *l.PathDynamic != "" {
				if err := copyToDir(filepath.Join(b.dist, filepath.FromSlash(*l.PathDynamic)), dllsDir); err != nil {
					return nil, err
				}
			}
		}
	}

	return &Runtime{
		IncludeDir: filepath.Join(b.dist, "install", "include"),
		Library:    filepath.Join(b.dist, "install", "libs", fmt.Sprintf("python%s%s.lib", b.major, b.minor)),
	}, nil
}
