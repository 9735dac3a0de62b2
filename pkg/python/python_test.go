package python

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
  "python_version": "3.11.11",
  "python_paths": {
    "stdlib": "install/lib/python3.11"
  },
  "build_info": {
    "core": {
      "objs": ["build/core/a.o", "build/core/config.o", "build/core/shared.o"],
      "shared_lib": "install/python311.dll"
    },
    "inittab_object": "build/core/config.o",
    "extensions": {
      "_abc": [{"required": true, "init_fn": "PyInit__abc", "objs": ["build/ext/_abc.o"], "links": []}],
      "_imp": [{"required": true, "init_fn": "NULL", "objs": [], "links": []}],
      "_ssl": [{"required": false, "init_fn": "PyInit__ssl", "objs": ["build/ext/_ssl.o", "build/core/shared.o"],
                "links": [{"name": "ssl", "path_static": "build/lib/libssl.a", "path_dynamic": "install/DLLs/libssl.dll"}],
                "shared_lib": "install/DLLs/_ssl.pyd"}],
      "_sqlite3": [{"required": false, "init_fn": "PyInit__sqlite3", "objs": ["build/ext/_sqlite3.o"],
                    "links": [{"name": "sqlite3", "path_static": "build/lib/libsqlite3.a"}]}],
      "_locale": [{"required": false, "init_fn": "PyInit__locale", "objs": ["build/ext/_locale.o"],
                   "links": [{"name": "intl", "system": true}, {"name": "iconv", "system": true}]},
                  {"required": false, "init_fn": "PyInit__locale", "objs": ["build/ext/_locale2.o"], "links": []}],
      "_scproxy": [{"required": false, "init_fn": "PyInit__scproxy", "objs": ["build/ext/_scproxy.o"],
                    "links": [{"name": "SystemConfiguration", "framework": true}]}]
    }
  }
}`

func writeFiles(t *testing.T, dir string, files ...string) {
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o644))
	}
}

func createDist(t *testing.T) string {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, ManifestFile), []byte(testManifest), 0o644))
	writeFiles(t, dist,
		"install/lib/python3.11/os.py",
		"install/lib/python3.11/json/__init__.py",
		"install/lib/python3.11/site-packages/README.pth",
		"install/lib/python3.11/pip/_vendor/certifi/cacert.pem",
		"install/lib/python3.11/test/test_os.py",
		"install/lib/python3.11/tkinter/__init__.py",
		"install/lib/python3.11/config-3.11-x86_64-linux-gnu/python-config.py",
		"install/lib/python3.11/lib-dynload/_ssl.so",
		"install/python311.dll",
		"install/python3.dll",
		"install/DLLs/_ssl.pyd",
		"install/DLLs/libssl.dll",
	)
	return dist
}

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest(createDist(t))
	require.NoError(t, err)
	major, minor, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, "3", major)
	assert.Equal(t, "11", minor)
	assert.Equal(t, "build/core/config.o", m.BuildInfo.InittabObject)
	assert.Len(t, m.BuildInfo.Extensions["_locale"], 2)
	assert.True(t, m.BuildInfo.Extensions["_locale"][0].Links[0].System)

	_, err = LoadManifest(t.TempDir())
	assert.Error(t, err)
}

func TestLoadManifestWithBOM(t *testing.T) {
	dist := t.TempDir()
	b := append([]byte{0xef, 0xbb, 0xbf}, []byte(testManifest)...)
	require.NoError(t, os.WriteFile(filepath.Join(dist, ManifestFile), b, 0o644))

	m, err := LoadManifest(dist)
	require.NoError(t, err)
	assert.Equal(t, "build/core/config.o", m.BuildInfo.InittabObject)
}

func TestSelectExtensions(t *testing.T) {
	m, err := LoadManifest(createDist(t))
	require.NoError(t, err)

	exts := SelectExtensions(m)
	assert.Equal(t, []string{"_abc", "_imp", "_locale", "_scproxy", "_ssl"}, extensionNames(exts))
	// first variant wins
	assert.Equal(t, []string{"build/ext/_locale.o"}, exts[2].Objs)
}

func TestStdlibSource(t *testing.T) {
	m := &Manifest{PythonPaths: PythonPaths{Stdlib: "../../../../tmp/build/install/lib/python3.11"}}
	p, err := StdlibSource(m, "/dist")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dist", "install", "lib", "python3.11"), p)

	m.PythonPaths.Stdlib = "install/lib/python3.11"
	p, err = StdlibSource(m, "/dist")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dist", "install", "lib", "python3.11"), p)

	m.PythonPaths.Stdlib = "../lib"
	_, err = StdlibSource(m, "/dist")
	assert.Error(t, err)
}

func TestStdlibDest(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "lib"), StdlibDest("out", target.Windows, "3", "11"))
	assert.Equal(t, filepath.Join("out", "lib", "python3.11"), StdlibDest("out", target.Linux, "3", "11"))
}

func TestWriteInittab(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	err := WriteInittab(buf, []IncludedExtension{
		{Name: "_abc", Extension: Extension{InitFn: "PyInit__abc"}},
		{Name: "_imp", Extension: Extension{InitFn: "NULL"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `#include "Python.h"
extern PyObject* PyInit__abc(void);
struct _inittab _PyImport_Inittab[] = {
    { "_abc", PyInit__abc },
    { "_imp", NULL },
    { 0, 0 }
};
`, buf.String())
}

func TestWriteExports(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	require.NoError(t, WriteExports(buf, target.Linux, "3", "11"))
	assert.Equal(t, "libpython311.so\n{\nglobal:\nPy*;_Py*;__Py*;\nlocal:\n*;\n};\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteExports(buf, target.Darwin, "3", "11"))
	assert.Equal(t, "Py*\n_Py*\n__Py*\n", buf.String())

	assert.Error(t, WriteExports(buf, target.Windows, "3", "11"))
}

func stdlibFiles(t *testing.T, dir string) []string {
	var ret []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(dir, p)
			ret = append(ret, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return ret
}

func TestBuildRuntimeLinux(t *testing.T) {
	dist := createDist(t)
	out := t.TempDir()
	cfg, err := target.Get("x86_64-linux-gnu")
	require.NoError(t, err)

	r := &process.RecordingRunner{}
	rt, err := BuildRuntime(context.Background(), r, dist, out, cfg)
	require.NoError(t, err)

	lib := filepath.Join(out, "lib", "libpython311.so")
	assert.Equal(t, lib, rt.Library)
	assert.Equal(t, filepath.Join(dist, "install", "include", "python3.11"), rt.IncludeDir)

	assert.Equal(t, []string{
		"lib/python3.11/json/__init__.py",
		"lib/python3.11/os.py",
		"lib/python3.11/pip/_vendor/certifi/cacert.pem",
		"lib/python3.11/site-packages/README.pth",
	}, stdlibFiles(t, out))

	require.Equal(t, []string{"clang", "ar", "clang", "llvm-strip"}, r.Names())
	for _, c := range r.Commands {
		assert.Equal(t, dist, c.Dir)
	}

	assert.Equal(t, []string{"clang", "-target", "x86_64-linux-gnu", "-fPIC",
		"-I", rt.IncludeDir, "-c", "config.c"}, r.Commands[0].Argv())

	objs := []string{
		"config.o",
		filepath.Join(dist, "build", "core", "a.o"),
		filepath.Join(dist, "build", "core", "shared.o"),
		filepath.Join(dist, "build", "ext", "_abc.o"),
		filepath.Join(dist, "build", "ext", "_locale.o"),
		filepath.Join(dist, "build", "ext", "_scproxy.o"),
		filepath.Join(dist, "build", "ext", "_ssl.o"),
	}
	assert.Equal(t, append([]string{"ar", "-r", "libpython.a"}, objs...), r.Commands[1].Argv())

	link := r.Commands[2].Argv()
	expected := []string{"clang", "-target", "x86_64-linux-gnu", "-fPIC",
		"-shared", "-Wl,--no-undefined", "-Wl,--version-script,python.exports", "-o", lib}
	expected = append(expected, objs...)
	expected = append(expected, "-Wl,-(", "libpython.a", "-lintl", "-liconv", "-Wl,-framework,SystemConfiguration",
		filepath.Join(dist, "build", "lib", "libssl.a"), "-lpthread", "-lm", "-lutil", "-Wl,-)")
	assert.Equal(t, expected, link)

	assert.Equal(t, []string{"llvm-strip", lib}, r.Commands[3].Argv())

	configC, err := os.ReadFile(filepath.Join(dist, "config.c"))
	require.NoError(t, err)
	assert.Contains(t, string(configC), "extern PyObject* PyInit__ssl(void);\n")
	assert.NotContains(t, string(configC), "sqlite3")

	exports, err := os.ReadFile(filepath.Join(dist, "python.exports"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(exports), "libpython311.so\n"))
}

func TestBuildRuntimeDarwin(t *testing.T) {
	dist := createDist(t)
	out := t.TempDir()
	cfg, err := target.Get("aarch64-apple-darwin")
	require.NoError(t, err)

	r := &process.RecordingRunner{}
	rt, err := BuildRuntime(context.Background(), r, dist, out, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "lib", "libpython311.dylib"), rt.Library)

	require.Equal(t, []string{"clang", "ar", "clang"}, r.Names())
	assert.Equal(t, []string{"clang", "-arch", "arm64", "-I", rt.IncludeDir, "-c", "config.c"}, r.Commands[0].Argv())

	link := r.Commands[2].Argv()
	assert.Equal(t, []string{"clang", "-arch", "arm64", "-shared", "-Wl,-exported_symbols_list,python.exports", "-o", rt.Library}, link[:7])
	assert.NotContains(t, link, "-lpthread")
	assert.NotContains(t, link, "-Wl,-(")
}

func TestBuildRuntimeWindows(t *testing.T) {
	dist := createDist(t)
	out := t.TempDir()
	cfg, err := target.Get("x86_64-windows-msvc")
	require.NoError(t, err)

	r := &process.RecordingRunner{}
	rt, err := BuildRuntime(context.Background(), r, dist, out, cfg)
	require.NoError(t, err)
	assert.Empty(t, r.Commands)

	assert.Equal(t, filepath.Join(dist, "install", "include"), rt.IncludeDir)
	assert.Equal(t, filepath.Join(dist, "install", "libs", "python311.lib"), rt.Library)

	files := stdlibFiles(t, out)
	assert.Contains(t, files, "bin/python311.dll")
	assert.Contains(t, files, "bin/python3.dll")
	assert.Contains(t, files, "DLLs/_ssl.pyd")
	assert.Contains(t, files, "DLLs/libssl.dll")
	assert.Contains(t, files, "lib/os.py")
}

func TestBuildRuntimeToolFailure(t *testing.T) {
	dist := createDist(t)
	cfg, err := target.Get("x86_64-linux-gnu")
	require.NoError(t, err)

	r := &process.RecordingRunner{
		Hook: func(c process.Command) (string, error) {
			if c.Name == "ar" {
				return "", &process.ExitError{Command: c, ExitCode: 1}
			}
			return "", nil
		},
	}
	_, err = BuildRuntime(context.Background(), r, dist, t.TempDir(), cfg)
	assert.ErrorContains(t, err, "exit code 1")
	assert.Equal(t, []string{"clang", "ar"}, r.Names())
}

func TestHostArchivePattern(t *testing.T) {
	assert.Equal(t, "cpython-*-x86_64-*-linux-*.tar.zst", HostArchivePattern("linux", "amd64"))
	assert.Equal(t, "cpython-*-aarch64-*-darwin-*.tar.zst", HostArchivePattern("darwin", "arm64"))
	assert.Equal(t, "cpython-*-x86_64-*-windows-*.tar.zst", HostArchivePattern("windows", "arm64"))
	assert.Equal(t, filepath.Join("p", "install", "bin", "python3"), HostInterpreter("p", "linux"))
}

func TestFindArchive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"cpython-3.11.11+20241219-aarch64-unknown-linux-gnu-lto-full.tar.zst",
		"cpython-3.11.11+20241219-x86_64-unknown-linux-gnu-pgo+lto-full.tar.zst",
	)
	p, err := FindArchive(dir, "cpython-*-aarch64-*-linux-*.tar.zst")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cpython-3.11.11+20241219-aarch64-unknown-linux-gnu-lto-full.tar.zst"), p)

	_, err = FindArchive(dir, "cpython-*-arm*-linux-*.tar.zst")
	assert.ErrorContains(t, err, "no python archive")
}
