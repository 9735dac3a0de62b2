package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

const lockFileName = ".lldb-dist.lock"

// WithBuildDirLock runs cb while holding an exclusive lock on dir. Two
// builds sharing a build directory would overwrite each other's clones and
// intermediates, so the second one waits.
func WithBuildDirLock(ctx context.Context, dir string, cb func() error) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("locking of %s failed: %w", fl.Path(), err)
	}
	if !locked {
		log.Infof("Waiting for another build in %s to finish", dir)
		locked, err = fl.TryLockContext(ctx, time.Millisecond*500)
		if err != nil {
			return fmt.Errorf("locking of %s failed: %w", fl.Path(), err)
		}
		if !locked {
			return fmt.Errorf("locking of %s failed: unkown reason", fl.Path())
		}
	}
	defer func() {
		if err := fl.Unlock(); err != nil {
			log.Warningf("Unlock of %s failed: %v", fl.Path(), err)
		}
	}()

	return cb()
}
