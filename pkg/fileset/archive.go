package fileset

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Archive is a zip file being written.
type Archive struct {
	path   string
	f      *os.File
	w      *zip.Writer
	method uint16
	names  map[string]bool
}

// CreateArchive creates (or truncates) the zip file at p. Entries are
// deflated when compress is true and stored otherwise.
func CreateArchive(p string, compress bool) (*Archive, error) {
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive %s: %w", p, err)
	}
	method := zip.Store
	if compress {
		method = zip.Deflate
	}
	return &Archive{
		path:   p,
		f:      f,
		w:      zip.NewWriter(f),
		method: method,
		names:  map[string]bool{},
	}, nil
}

func (a *Archive) Path() string {
	return a.path
}

// Add writes the file or directory at abs under the name rel. Symlinks are
// followed.
func (a *Archive) Add(abs string, rel string) error {
	st, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to add %s to %s: %w", abs, a.path, err)
	}

	h, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	h.Name = strings.TrimPrefix(rel, "/")
	if st.IsDir() {
		h.Name = strings.TrimSuffix(h.Name, "/") + "/"
		h.Method = zip.Store
	} else {
		h.Method = a.method
	}
	if a.names[h.Name] {
		if st.IsDir() {
			return nil
		}
		return fmt.Errorf("duplicate entry %s in %s", h.Name, a.path)
	}
	a.names[h.Name] = true

	w, err := a.w.CreateHeader(h)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return nil
	}

	f, err := os.Open(abs)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	if err != nil {
		return fmt.Errorf("failed to add %s to %s: %w", abs, a.path, err)
	}
	return nil
}

func (a *Archive) Close() error {
	err := a.w.Close()
	err2 := a.f.Close()
	if err != nil {
		return err
	}
	return err2
}
