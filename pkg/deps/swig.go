package deps

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/fileset"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
	log "github.com/sirupsen/logrus"
)

type Swig struct {
	Executable string
	Dir        string
}

// LibDir is the directory swig looks up its interface library in (SWIG_LIB).
func (s *Swig) LibDir() string {
	return filepath.Join(s.Dir, "Lib")
}

// BuildSwig clones the patched swig and (re)builds it in place whenever the
// executable is older than any of its C sources.
func (b *Builder) BuildSwig(ctx context.Context) (*Swig, error) {
	src := filepath.Join(b.WorkDir, "swig")
	err := b.clone(ctx, src, b.SwigRepo)
	if err != nil {
		return nil, err
	}

	exeName := "swig"
	if b.HostOS == "windows" {
		exeName = "swig.exe"
	}
	ret := &Swig{
		Executable: filepath.Join(src, exeName),
		Dir:        src,
	}

	ood, err := fileset.OutOfDate([]string{ret.Executable}, []string{
		filepath.Join(src, "*.c"),
		filepath.Join(src, "*.h"),
	})
	if err != nil {
		return nil, err
	}
	if !ood {
		log.Infof("%s is up to date", ret.Executable)
		return ret, nil
	}

	for _, c := range []process.Command{
		process.NewCommand("bash", "./autogen.sh"),
		process.NewCommand("bash", "./configure", "--prefix="+src),
		process.NewCommand("make"),
	} {
		err = b.Runner.Run(ctx, c.InDir(src))
		if err != nil {
			return nil, fmt.Errorf("failed to build swig: %w", err)
		}
	}
	return ret, nil
}
