package python

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/fileset"
	"github.com/codelldb/lldb-dist/pkg/tar"
	"github.com/codelldb/lldb-dist/pkg/utils"
	log "github.com/sirupsen/logrus"
)

// FindArchive returns the first python-build-standalone archive in dir that
// matches pattern.
func FindArchive(dir string, pattern string) (string, error) {
	matches, err := fileset.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no python archive matching '%s' found in %s", pattern, dir)
	}
	if len(matches) > 1 {
		log.Debugf("Multiple archives match '%s', using %s", pattern, matches[0])
	}
	return matches[0], nil
}

// ExtractDist extracts archive into dir, dropping the top level "python"
// directory of the archive. Nothing is done if dir already exists.
func ExtractDist(ctx context.Context, archive string, dir string) error {
	if utils.Exists(dir) {
		log.Debugf("%s already exists, skipping extraction", dir)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := tar.ExtractArchive(archive, dir, tar.WithStripComponents(1))
	if err != nil {
		_ = os.RemoveAll(dir)
		return err
	}
	return nil
}

// HostArchivePattern returns the archive pattern of the distribution that
// runs on the given GOOS/GOARCH.
func HostArchivePattern(goos string, goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}
	if goos == "windows" {
		arch = "x86_64"
	}
	return fmt.Sprintf("cpython-*-%s-*-%s-*.tar.zst", arch, goos)
}

// HostInterpreter returns the path of the interpreter inside an extracted
// distribution.
func HostInterpreter(dist string, goos string) string {
	if goos == "windows" {
		return filepath.Join(dist, "install", "python.exe")
	}
	return filepath.Join(dist, "install", "bin", "python3")
}
