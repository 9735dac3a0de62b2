package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	log "github.com/sirupsen/logrus"
)

type CloneOptions struct {
	URL    string
	Branch string
	// Depth limits the fetched history, 0 means full history.
	Depth int
}

// CloneIfMissing clones opts.URL into dir unless dir already exists. An
// existing checkout is left untouched, no fetch or update is performed.
// It returns true when a clone was performed.
func CloneIfMissing(ctx context.Context, dir string, opts CloneOptions) (bool, error) {
	if utils.Exists(dir) {
		log.Debugf("%s already exists, skipping clone of %s", dir, opts.URL)
		return false, nil
	}

	log.Infof("Cloning %s (branch %s) into %s", opts.URL, opts.Branch, dir)

	err := os.MkdirAll(filepath.Dir(dir), 0o755)
	if err != nil {
		return false, err
	}

	co := &git.CloneOptions{
		URL:          opts.URL,
		SingleBranch: true,
		Depth:        opts.Depth,
		Tags:         git.NoTags,
	}
	if opts.Branch != "" {
		co.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
	}

	_, err = git.PlainCloneContext(ctx, dir, false, co)
	if err != nil {
		_ = os.RemoveAll(dir)
		return false, fmt.Errorf("failed to clone %s: %w", opts.URL, err)
	}
	return true, nil
}
