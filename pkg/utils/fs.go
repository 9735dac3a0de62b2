package utils

import (
	"github.com/mitchellh/go-homedir"
	"os"
	"path/filepath"
	"strings"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	if err != nil {
		return false
	}
	return true
}

func IsFile(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}

	return fileInfo.Mode().IsRegular()
}

func IsDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}

	return fileInfo.IsDir()
}

func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		h, err := homedir.Dir()
		if err != nil {
			return p
		}
		p = h + p[1:]
	}
	return p
}

// TrimExt returns p without its final extension.
func TrimExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
