package python

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/codelldb/lldb-dist/pkg/fileset"
	"github.com/codelldb/lldb-dist/pkg/target"
	log "github.com/sirupsen/logrus"
)

var stdlibPatterns = []string{"**/*.py", "**/*.pth", "**/*.pem"}

var stdlibExcludes = []string{
	"config-*",
	"idlelib/*",
	"lib2to3/*",
	"test/*",
	"turtledemo/*",
	"tkinter/*",
	"curses/*",
	"sqlite3/*",
}

// StdlibSource returns the stdlib directory of the distribution.
// Cross-compiled distributions report a path relative to the build machine
// ("../../.../install/lib/..."), which is cut down to start at "install".
func StdlibSource(m *Manifest, dist string) (string, error) {
	p := m.PythonPaths.Stdlib
	if strings.HasPrefix(p, "..") {
		pos := strings.Index(p, "install")
		if pos == -1 {
			return "", fmt.Errorf("unexpected stdlib path '%s'", p)
		}
		p = p[pos:]
	}
	return filepath.Join(dist, filepath.FromSlash(p)), nil
}

// StdlibDest returns where the stdlib goes below out.
func StdlibDest(out string, systemName string, major string, minor string) string {
	if systemName == target.Windows {
		return filepath.Join(out, "lib")
	}
	return filepath.Join(out, "lib", fmt.Sprintf("python%s.%s", major, minor))
}

// CopyStdlib copies the pure python part of the stdlib, without test suites
// and GUI toolkits.
func CopyStdlib(src string, dst string) (fileset.Files, error) {
	log.Infof("Copying stdlib from %s to %s", src, dst)
	files, err := fileset.RelGlob(src, stdlibPatterns...)
	if err != nil {
		return nil, err
	}
	return fileset.Compose(files,
		fileset.Exclude(stdlibExcludes...),
		fileset.CopyTo(dst),
	)
}
