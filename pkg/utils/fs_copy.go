package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst, keeping the permission bits of src. Parent
// directories of dst are created as needed.
func CopyFile(src string, dst string) error {
	st, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	err = os.MkdirAll(filepath.Dir(dst), 0o755)
	if err != nil {
		return err
	}
	return CopyFileStream(f, dst, st.Mode().Perm())
}

func CopyFileStream(src io.Reader, dst string, perm os.FileMode) error {
	// remove first so that read-only destinations (e.g. previous copies of binaries) can be replaced
	_ = os.Remove(dst)

	destination, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, src)
	return err
}
