package utils

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
)

type tmpBaseDirKey struct{}

type dirValue struct {
	base string

	initOnce sync.Once
	dir      string
	err      error
}

var tmpBaseDirValueDefault = &dirValue{
	base: getDefaultTmpBaseDir(),
}

func WithTmpBaseDir(ctx context.Context, tmpBaseDir string) context.Context {
	return context.WithValue(ctx, tmpBaseDirKey{}, &dirValue{
		base: tmpBaseDir,
	})
}

// GetTmpBaseDir returns the current user's directory below the configured
// temp base dir, creating it on first use.
func GetTmpBaseDir(ctx context.Context) (string, error) {
	v, _ := ctx.Value(tmpBaseDirKey{}).(*dirValue)
	if v == nil {
		v = tmpBaseDirValueDefault
	}
	v.initOnce.Do(func() {
		v.dir, v.err = createTmpBaseDir(v.base)
	})
	return v.dir, v.err
}

func getDefaultTmpBaseDir() string {
	dir := os.Getenv("LLDB_DIST_BASE_TMP_DIR")
	if dir != "" {
		return dir
	}

	return filepath.Join(os.TempDir(), "lldb-dist-workdir")
}

func createTmpBaseDir(base string) (string, error) {
	// the base dir is shared between users, only the per-user dir is ours
	err := os.MkdirAll(base, 0o777)
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir %s: %w", base, err)
	}

	name := strconv.Itoa(os.Getuid())
	if runtime.GOOS == "windows" {
		u, err := user.Current()
		if err != nil {
			return "", err
		}
		name = u.Uid
	}

	dir := filepath.Join(base, name)
	err = os.Mkdir(dir, 0o700)
	if err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("failed to create temp dir %s: %w", dir, err)
	}
	st, err := os.Lstat(dir)
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	if st.Mode().Perm() != 0o700 {
		err = os.Chmod(dir, 0o700)
		if err != nil {
			return "", fmt.Errorf("failed to restrict permissions of %s: %w", dir, err)
		}
	}
	return dir, nil
}
