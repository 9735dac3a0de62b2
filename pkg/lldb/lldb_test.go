package lldb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuildOptions() BuildOptions {
	return BuildOptions{
		LLVMSourceDir:  "/src/llvm",
		HostArch:       "x86_64",
		LibXML2Include: "/w/libxml2/install/include/libxml2",
		LibXML2Library: "/w/libxml2/install/lib/libxml2.a",
		SwigExecutable: "/w/swig/swig",
		SwigDir:        "/w/swig",
		PythonExe:      "/w/python/install/bin/python3",
		PythonInclude:  "/w/python_dist/install/include/python3.11",
		PythonLibrary:  "/w/python_lldb/lib/libpython311.so",
	}
}

func getConfig(t *testing.T, triple string) target.Config {
	cfg, err := target.Get(triple)
	require.NoError(t, err)
	return cfg
}

func TestCMakeVarsLinux(t *testing.T) {
	vars, targets := CMakeVars(testBuildOptions(), getConfig(t, "x86_64-linux-gnu"))

	assert.Equal(t, []string{"lldb", "llvm-dwarfdump", "llvm-pdbutil", "llvm-readobj", "lldb-server"}, targets)
	assert.Equal(t, "MinSizeRel", vars["CMAKE_BUILD_TYPE"])
	assert.Equal(t, "clang;libcxx;lldb", vars["LLVM_ENABLE_PROJECTS"])
	assert.Equal(t, "lib/lldb-python", vars["LLDB_PYTHON_RELATIVE_PATH"])
	assert.Equal(t, "FORCE_ON", vars["LLVM_ENABLE_ZLIB"])
	assert.Equal(t, "-target x86_64-linux-gnu -fPIC", vars["CMAKE_C_FLAGS"])
	assert.Equal(t, "-fuse-ld=lld -static-libstdc++ -static-libgcc -L/w/python_lldb/lib", vars["CMAKE_EXE_LINKER_FLAGS"])
	assert.Equal(t, "-fuse-ld=lld -static-libstdc++ -static-libgcc -L/w/python_lldb/lib", vars["CMAKE_SHARED_LINKER_FLAGS"])
	assert.NotContains(t, vars, "CMAKE_CROSSCOMPILING")
	assert.NotContains(t, vars, "CMAKE_C_COMPILER_LAUNCHER")
	assert.NotContains(t, vars, "LLDB_USE_SYSTEM_DEBUGSERVER")
}

func TestCMakeVarsCross(t *testing.T) {
	opts := testBuildOptions()
	opts.CCache = "/usr/bin/sccache"
	opts.BuildType = "RelWithDebInfo"
	vars, _ := CMakeVars(opts, getConfig(t, "aarch64-linux-gnu"))

	assert.Equal(t, "RelWithDebInfo", vars["CMAKE_BUILD_TYPE"])
	assert.Equal(t, "ON", vars["CMAKE_CROSSCOMPILING"])
	assert.Equal(t, "-DLLVM_ENABLE_PROJECTS=clang", vars["CROSS_TOOLCHAIN_FLAGS_NATIVE"])
	assert.Equal(t, "/usr/bin/sccache", vars["CMAKE_C_COMPILER_LAUNCHER"])
	assert.Equal(t, "/usr/bin/sccache", vars["CMAKE_CXX_COMPILER_LAUNCHER"])
	assert.Equal(t, "aarch64-linux-gnu", vars["LLVM_HOST_TRIPLE"])
	// the python archive pattern is passed through like any other entry
	assert.Equal(t, "cpython-*-aarch64-*-linux-*.tar.zst", vars["TARGET_PYTHON_ARCHIVE"])
}

func TestCMakeVarsDarwin(t *testing.T) {
	vars, targets := CMakeVars(testBuildOptions(), getConfig(t, "x86_64-apple-darwin"))
	assert.Equal(t, []string{"lldb", "llvm-dwarfdump", "llvm-pdbutil", "llvm-readobj"}, targets)
	assert.Equal(t, "ON", vars["LLDB_USE_SYSTEM_DEBUGSERVER"])
	assert.Equal(t, "FORCE_ON", vars["LLVM_ENABLE_ZLIB"])
	assert.Equal(t, "x86_64", vars["CMAKE_OSX_ARCHITECTURES"])
	// processor "???" never equals the host arch
	assert.Equal(t, "ON", vars["CMAKE_CROSSCOMPILING"])
	assert.NotContains(t, vars, "CMAKE_EXE_LINKER_FLAGS")
}

func TestCMakeVarsWindows(t *testing.T) {
	vars, targets := CMakeVars(testBuildOptions(), getConfig(t, "x86_64-windows-msvc"))
	assert.Len(t, targets, 4)
	assert.Equal(t, "cl", vars["CMAKE_C_COMPILER"])
	assert.NotContains(t, vars, "LLVM_ENABLE_ZLIB")
	assert.NotContains(t, vars, "CMAKE_CROSSCOMPILING")
}

func TestBuild(t *testing.T) {
	work := t.TempDir()
	r := &process.RecordingRunner{}
	dir, err := Build(context.Background(), r, work, getConfig(t, "x86_64-linux-gnu"), testBuildOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "llvm"), dir)

	require.Len(t, r.Commands, 6)
	assert.Equal(t, []string{"cmake", "-GNinja", "/src/llvm", "-B", dir}, r.Commands[0].Argv()[:5])
	assert.Contains(t, r.Commands[0].Args, "-DSWIG_EXECUTABLE=/w/swig/swig")
	var built []string
	for _, c := range r.Commands {
		assert.Equal(t, []string{"SWIG_LIB=" + filepath.Join("/w/swig", "Lib")}, c.Env)
		if len(c.Args) == 4 && c.Args[2] == "--target" {
			built = append(built, c.Args[3])
		}
	}
	assert.Equal(t, []string{"lldb", "llvm-dwarfdump", "llvm-pdbutil", "llvm-readobj", "lldb-server"}, built)
}

func TestArchiveNames(t *testing.T) {
	rel, dbg := ArchiveNames("/w", "x86_64-linux-gnu")
	assert.Equal(t, filepath.Join("/w", "lldb--x86_64-linux-gnu.zip"), rel)
	assert.Equal(t, filepath.Join("/w", "lldb-debugx86_64-linux-gnu.zip"), dbg)
}

func writeFiles(t *testing.T, dir string, files ...string) {
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o755))
	}
}

func zipEntries(t *testing.T, p string) map[string]*zip.File {
	r, err := zip.OpenReader(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	ret := map[string]*zip.File{}
	for _, f := range r.File {
		ret[f.Name] = f
	}
	return ret
}

func zipNames(t *testing.T, p string) []string {
	var ret []string
	for n := range zipEntries(t, p) {
		ret = append(ret, n)
	}
	sort.Strings(ret)
	return ret
}

func readZipEntry(t *testing.T, f *zip.File) string {
	r, err := f.Open()
	require.NoError(t, err)
	defer r.Close()
	b := new(strings.Builder)
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		b.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return b.String()
}

type packageFixture struct {
	root   string
	python string
	out    string
	debug  string
	ctx    context.Context
}

func newPackageFixture(t *testing.T) *packageFixture {
	f := &packageFixture{
		root:   t.TempDir(),
		python: t.TempDir(),
		ctx:    utils.WithTmpBaseDir(context.Background(), t.TempDir()),
	}
	out := t.TempDir()
	f.out = filepath.Join(out, "lldb.zip")
	f.debug = filepath.Join(out, "lldb-debug.zip")
	writeFiles(t, f.root,
		"lib/lldb-python/lldb/__init__.py",
		"lib/lldb-python/lldb/_lldb.cpython-311-x86_64-linux-gnu.so",
		"lib/lldb-python/lldb/formatters/cpp.py",
	)
	writeFiles(t, f.python,
		"lib/python3.11/os.py",
		"lib/libpython311.so",
	)
	return f
}

func (f *packageFixture) options(cfg target.Config, release bool) PackageOptions {
	return PackageOptions{
		LLDBRoot:    f.root,
		PythonDist:  f.python,
		Config:      cfg,
		Output:      f.out,
		DebugOutput: f.debug,
		Release:     release,
	}
}

var pythonEntries = []string{
	"lib/",
	"lib/libpython311.so",
	"lib/lldb-python/lldb/",
	"lib/lldb-python/lldb/__init__.py",
	"lib/lldb-python/lldb/formatters/",
	"lib/lldb-python/lldb/formatters/cpp.py",
	"lib/python3.11/",
	"lib/python3.11/os.py",
}

func withEntries(entries ...string) []string {
	ret := append(append([]string{}, pythonEntries...), entries...)
	sort.Strings(ret)
	return ret
}

func TestPackageLinuxRelease(t *testing.T) {
	f := newPackageFixture(t)
	writeFiles(t, f.root,
		"bin/lldb",
		"bin/lldb-argdumper",
		"bin/lldb-server",
		"bin/llvm-dwarfdump",
		"bin/llvm-pdbutil",
		"bin/llvm-readobj",
		"lib/liblldb.so.17",
	)

	r := &process.RecordingRunner{
		Hook: func(c process.Command) (string, error) {
			if c.Name == "llvm-strip" {
				return "", os.WriteFile(c.Args[0], []byte("stripped"), 0o755)
			}
			return "", fmt.Errorf("unexpected command %s", c.String())
		},
	}
	err := Package(f.ctx, r, f.options(getConfig(t, "x86_64-linux-gnu"), true))
	require.NoError(t, err)

	assert.Len(t, r.Find("llvm-strip"), 4)
	strippedPaths := map[string]bool{}
	for _, c := range r.Commands {
		strippedPaths[c.Args[0]] = true
		assert.Contains(t, []string{"lldb", "lldb-argdumper", "lldb-server", "liblldb.so.17"}, filepath.Base(c.Args[0]))
	}
	assert.Len(t, strippedPaths, 4)

	entries := zipEntries(t, f.out)
	assert.Equal(t, withEntries("bin/lldb", "bin/lldb-argdumper", "bin/lldb-server", "lib/liblldb.so.17"), zipNames(t, f.out))
	assert.Equal(t, "stripped", readZipEntry(t, entries["bin/lldb"]))
	assert.Equal(t, zip.Deflate, entries["bin/lldb"].Method)

	debugEntries := zipEntries(t, f.debug)
	assert.Equal(t, []string{
		"bin/lldb",
		"bin/lldb-argdumper",
		"bin/lldb-server",
		"bin/llvm-dwarfdump",
		"bin/llvm-pdbutil",
		"bin/llvm-readobj",
		"lib/liblldb.so.17",
	}, zipNames(t, f.debug))
	assert.Equal(t, "bin/lldb", readZipEntry(t, debugEntries["bin/lldb"]))
}

func TestPackageLinuxDev(t *testing.T) {
	f := newPackageFixture(t)
	writeFiles(t, f.root, "bin/lldb", "lib/liblldb.so")

	r := &process.RecordingRunner{}
	err := Package(f.ctx, r, f.options(getConfig(t, "x86_64-linux-gnu"), false))
	require.NoError(t, err)
	assert.Empty(t, r.Commands)

	entries := zipEntries(t, f.out)
	assert.Equal(t, withEntries("bin/lldb", "lib/liblldb.so"), zipNames(t, f.out))
	assert.Equal(t, zip.Store, entries["bin/lldb"].Method)
	assert.Equal(t, "bin/lldb", readZipEntry(t, entries["bin/lldb"]))

	// the debug archive exists but stays empty
	assert.FileExists(t, f.debug)
	assert.Empty(t, zipNames(t, f.debug))
}

const otoolOutput = `/tmp/liblldb.dylib:
	@rpath/liblldb.17.0.0-custom.dylib (compatibility version 0.0.0, current version 17.0.0)
	/install/lib/libpython311.dylib (compatibility version 3.11.0, current version 3.11.0)
	/usr/lib/libc++.1.dylib (compatibility version 1.0.0, current version 1500.65.0)
`

func TestPackageDarwin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths differ on windows")
	}
	f := newPackageFixture(t)
	writeFiles(t, f.root,
		"bin/lldb",
		"bin/lldb-argdumper",
		"bin/debugserver",
		"bin/llvm-dwarfdump",
		"lib/liblldb.dylib",
		"lib/liblldb.dylib.dSYM/Contents/Info.plist",
	)

	r := &process.RecordingRunner{
		Hook: func(c process.Command) (string, error) {
			switch c.Name {
			case "otool":
				return otoolOutput, nil
			case "dsymutil":
				if filepath.Base(c.Args[0]) == "debugserver" {
					return "", &process.ExitError{Command: c, ExitCode: 1}
				}
				writeFiles(t, filepath.Dir(c.Args[2]), filepath.Base(c.Args[2])+"/Contents/Resources/DWARF/"+filepath.Base(c.Args[0]))
			}
			return "", nil
		},
	}
	err := Package(f.ctx, r, f.options(getConfig(t, "aarch64-apple-darwin"), true))
	require.NoError(t, err)

	assert.Equal(t, []string{"otool", "install_name_tool", "dsymutil", "dsymutil", "dsymutil"}, r.Names())
	inst := r.Find("install_name_tool")[0]
	assert.Equal(t, []string{"-change", "/install/lib/libpython311.dylib", "@rpath/libpython311.dylib"}, inst.Args[:3])
	assert.Equal(t, r.Find("otool")[0].Args[1], inst.Args[3])

	dsym := r.Find("dsymutil")[0]
	assert.Equal(t, []string{filepath.Join(f.root, "bin", "lldb"), "-o", filepath.Join(f.root, "bin", "lldb.dSYM")}, dsym.Args)

	assert.Equal(t, withEntries("bin/debugserver", "bin/lldb", "bin/lldb-argdumper", "lib/liblldb.dylib"), zipNames(t, f.out))
	assert.Equal(t, []string{
		"bin/lldb-argdumper.dSYM/Contents/",
		"bin/lldb-argdumper.dSYM/Contents/Resources/",
		"bin/lldb-argdumper.dSYM/Contents/Resources/DWARF/",
		"bin/lldb-argdumper.dSYM/Contents/Resources/DWARF/lldb-argdumper",
		"bin/lldb.dSYM/Contents/",
		"bin/lldb.dSYM/Contents/Resources/",
		"bin/lldb.dSYM/Contents/Resources/DWARF/",
		"bin/lldb.dSYM/Contents/Resources/DWARF/lldb",
		"bin/llvm-dwarfdump",
		"lib/liblldb.dylib.dSYM/Contents/",
		"lib/liblldb.dylib.dSYM/Contents/Info.plist",
	}, zipNames(t, f.debug))
}

func TestPackageDarwinNoLibpython(t *testing.T) {
	f := newPackageFixture(t)
	writeFiles(t, f.root, "lib/liblldb.dylib")

	r := &process.RecordingRunner{
		Hook: func(c process.Command) (string, error) {
			return "/tmp/liblldb.dylib:\n\t/usr/lib/libc++.1.dylib (compatibility version 1.0.0)\n", nil
		},
	}
	err := Package(f.ctx, r, f.options(getConfig(t, "x86_64-apple-darwin"), true))
	assert.ErrorContains(t, err, "libpython3")
}

func TestPackageWindows(t *testing.T) {
	f := newPackageFixture(t)
	writeFiles(t, f.root,
		"bin/lldb.exe",
		"bin/lldb.pdb",
		"bin/lldb-argdumper.exe",
		"bin/liblldb.dll",
		"bin/liblldb.pdb",
		"bin/llvm-readobj.exe",
		"lib/liblldb.lib",
	)

	r := &process.RecordingRunner{}
	err := Package(f.ctx, r, f.options(getConfig(t, "x86_64-windows-msvc"), true))
	require.NoError(t, err)
	assert.Empty(t, r.Commands)

	assert.Equal(t, withEntries("bin/liblldb.dll", "bin/lldb-argdumper.exe", "bin/lldb.exe", "lib/liblldb.lib"), zipNames(t, f.out))
	assert.Equal(t, []string{"bin/liblldb.pdb", "bin/lldb.pdb", "bin/llvm-readobj.exe"}, zipNames(t, f.debug))
}

func TestPackageUnknownSystem(t *testing.T) {
	f := newPackageFixture(t)
	err := Package(f.ctx, &process.RecordingRunner{}, f.options(target.Config{target.SystemName: "Haiku"}, true))
	assert.ErrorContains(t, err, "unknown target system")
}
