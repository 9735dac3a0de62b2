// Package deps fetches and builds the third party dependencies of LLDB
// that are not taken from the host: libxml2 and a patched swig.
package deps

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/codelldb/lldb-dist/pkg/git"
	"github.com/codelldb/lldb-dist/pkg/utils/process"
	log "github.com/sirupsen/logrus"
)

var (
	LibXML2Repo = git.CloneOptions{
		URL:    "https://github.com/robotology-dependencies/libxml2-cmake-buildsystem.git",
		Branch: "master",
		Depth:  1,
	}
	SwigRepo = git.CloneOptions{
		URL:    "https://github.com/vadimcn/swig.git",
		Branch: "py3-stable-abi",
		Depth:  1,
	}
)

type Builder struct {
	Runner  process.Runner
	WorkDir string

	LibXML2Repo git.CloneOptions
	SwigRepo    git.CloneOptions

	// HostOS is the GOOS of the build machine.
	HostOS string
}

func NewBuilder(r process.Runner, workDir string) *Builder {
	return &Builder{
		Runner:      r,
		WorkDir:     workDir,
		LibXML2Repo: LibXML2Repo,
		SwigRepo:    SwigRepo,
		HostOS:      runtime.GOOS,
	}
}

func (b *Builder) clone(ctx context.Context, dir string, opts git.CloneOptions) error {
	_, err := git.CloneIfMissing(ctx, dir, opts)
	if err != nil {
		return err
	}
	ri, err := git.GetGitRepoInfo(dir)
	if err != nil {
		log.Debugf("Could not read repo info of %s: %v", dir, err)
		return nil
	}
	log.Infof("Using %s at %s (%s)", filepath.Base(dir), ri.CheckedOutCommit, ri.CheckedOutRef)
	return nil
}
