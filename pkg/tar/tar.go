// Package tar extracts (optionally compressed) tarballs, like the
// python-build-standalone distributions.
package tar

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/codelldb/lldb-dist/pkg/utils"
	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
)

const (
	// UnlimitedUntarSize disables the size check.
	UnlimitedUntarSize = -1

	bufferSize = 32 * 1024
)

// Untar reads the uncompressed tar stream from r and writes it into dir.
//
// If dir is a relative path, it cannot ascend from the current working dir.
// If dir exists, it must be a directory.
func Untar(r io.Reader, dir string, inOpts ...TarOption) error {
	opts := tarOpts{
		maxUntarSize: UnlimitedUntarSize,
	}
	opts.applyOpts(inOpts...)

	dir = filepath.Clean(dir)
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		dir, err = securejoin.SecureJoin(cwd, dir)
		if err != nil {
			return err
		}
	}

	fi, err := os.Lstat(dir)
	// Dir does not need to exist, as it can later be created.
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot lstat '%s': %w", dir, err)
	}
	if err == nil && !fi.IsDir() {
		return fmt.Errorf("dir '%s' must be a directory", dir)
	}

	tr := tar.NewReader(r)
	processedBytes := int64(0)
	t0 := time.Now()
	madeDir := map[string]bool{}
	var symlinks []*tar.Header
	var hardlinks []*tar.Header

	buf := make([]byte, bufferSize)
	for {
		f, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar error: %w", err)
		}
		processedBytes += f.Size
		if opts.maxUntarSize > UnlimitedUntarSize && processedBytes > opts.maxUntarSize {
			return fmt.Errorf("tar %q is bigger than max archive size of %d bytes", f.Name, opts.maxUntarSize)
		}

		name, ok := stripComponents(f.Name, opts.stripComponents)
		if !ok {
			continue
		}
		if !validRelPath(name) {
			return fmt.Errorf("tar contained invalid name error %q", f.Name)
		}
		abs := filepath.Join(dir, filepath.FromSlash(name))

		mode := f.FileInfo().Mode()
		switch {
		case f.Typeflag == tar.TypeLink:
			// hard link names are relative to the archive root
			target, ok := stripComponents(f.Linkname, opts.stripComponents)
			if !ok || !validRelPath(target) {
				return fmt.Errorf("tar file entry %s contained invalid link target %q", f.Name, f.Linkname)
			}
			h := *f
			h.Name = name
			h.Linkname = target
			hardlinks = append(hardlinks, &h)
		case mode.IsRegular():
			parent := filepath.Dir(abs)
			if !madeDir[parent] {
				if err := os.MkdirAll(parent, 0o755); err != nil {
					return err
				}
				madeDir[parent] = true
			}
			err = extractFile(tr, f, abs, mode, buf, t0)
			if err != nil {
				return err
			}
		case mode.IsDir():
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return err
			}
			madeDir[abs] = true
		case mode&os.ModeSymlink == os.ModeSymlink:
			if opts.skipSymlinks {
				log.Debugf("Skipping symlink %s", f.Name)
				continue
			}
			h := *f
			h.Name = name
			symlinks = append(symlinks, &h)
		default:
			return fmt.Errorf("tar file entry %s contained unsupported file type %v", f.Name, mode)
		}
	}

	// links are created last so that no regular entry is written through one
	for _, h := range symlinks {
		err := createSymlink(dir, h)
		if err != nil {
			return err
		}
	}
	for _, h := range hardlinks {
		err := createHardlink(dir, h)
		if err != nil {
			return err
		}
	}
	return nil
}

func extractFile(tr *tar.Reader, f *tar.Header, abs string, mode os.FileMode, buf []byte, t0 time.Time) error {
	if runtime.GOOS == "darwin" && mode&0111 != 0 {
		// The darwin kernel caches binary signatures and SIGKILLs binaries
		// whose signature changed in place.
		err := os.Remove(abs)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	wf, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	n, err := io.CopyBuffer(struct{ io.Writer }{wf}, tr, buf)
	if closeErr := wf.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("error writing to %s: %w", abs, err)
	}
	if n != f.Size {
		return fmt.Errorf("only wrote %d bytes to %s; expected %d", n, abs, f.Size)
	}

	modTime := f.ModTime
	if modTime.After(t0) {
		modTime = t0
	}
	if !modTime.IsZero() {
		if err = os.Chtimes(abs, modTime, modTime); err != nil {
			return fmt.Errorf("error changing file time %s: %w", abs, err)
		}
	}
	return nil
}

func createSymlink(dir string, h *tar.Header) error {
	abs := filepath.Join(dir, filepath.FromSlash(h.Name))
	target := h.Linkname
	if path.IsAbs(target) {
		return fmt.Errorf("tar file entry %s is an absolute symlink to %s", h.Name, target)
	}
	resolved := path.Join(path.Dir(h.Name), target)
	if !validRelPath(resolved) || resolved == ".." || strings.HasPrefix(resolved, "../") {
		return fmt.Errorf("tar file entry %s links outside of the target dir: %s", h.Name, target)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	err := os.Remove(abs)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Symlink(filepath.FromSlash(target), abs)
}

func createHardlink(dir string, h *tar.Header) error {
	oldname, err := securejoin.SecureJoin(dir, filepath.FromSlash(h.Linkname))
	if err != nil {
		return err
	}
	newname, err := securejoin.SecureJoin(dir, filepath.FromSlash(h.Name))
	if err != nil {
		return err
	}
	st, err := os.Stat(oldname)
	if err != nil {
		return fmt.Errorf("tar file entry %s links to missing file %s: %w", h.Name, h.Linkname, err)
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("tar file entry %s links to %s, which is not a regular file", h.Name, h.Linkname)
	}

	if err := os.MkdirAll(filepath.Dir(newname), 0o755); err != nil {
		return err
	}
	err = os.Remove(newname)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	err = os.Link(oldname, newname)
	if err != nil {
		log.Debugf("Hard linking %s failed, copying instead: %v", h.Name, err)
		return utils.CopyFile(oldname, newname)
	}
	return nil
}

func stripComponents(name string, n int) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	if n == 0 {
		return name, name != "" && name != "."
	}
	s := strings.SplitN(strings.TrimSuffix(name, "/"), "/", n+1)
	if len(s) <= n {
		return "", false
	}
	return s[n], true
}

func validRelPath(p string) bool {
	if p == "" || strings.Contains(p, `\`) || strings.HasPrefix(p, "/") || strings.Contains(p, "../") {
		return false
	}
	return true
}

// ExtractArchive extracts the tarball at p into dir. The compression is
// picked from the file name: .tar.zst, .tar.gz/.tgz or plain .tar.
func ExtractArchive(p string, dir string, opts ...TarOption) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader
	switch {
	case strings.HasSuffix(p, ".tar.zst") || strings.HasSuffix(p, ".tzst"):
		z, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer z.Close()
		r = z
	case strings.HasSuffix(p, ".tar.gz") || strings.HasSuffix(p, ".tgz"):
		z, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("requires gzip-compressed body: %w", err)
		}
		defer z.Close()
		r = z
	case strings.HasSuffix(p, ".tar"):
		r = f
	default:
		return fmt.Errorf("unsupported archive type: %s", p)
	}

	log.Infof("Extracting %s to %s", p, dir)
	err = Untar(r, dir, opts...)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", p, err)
	}
	return nil
}
