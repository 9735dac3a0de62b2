// Package fileset implements the small glob/filter/transform pipeline used to
// assemble distribution trees and archives.
//
// A pipeline starts with RelGlob, which produces (absolute, relative) path
// pairs, and threads them through stages composed with Compose. Sinks like
// AddToZip and CopyTo are stages as well and pass their input through.
package fileset

import (
	"fmt"
	"path"
)

// Entry is a single file or directory. Abs is the location on disk, Rel the
// slash separated name it should have in the output.
type Entry struct {
	Abs string
	Rel string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s -> %s", e.Abs, e.Rel)
}

// Base returns the last element of the relative name.
func (e Entry) Base() string {
	return path.Base(e.Rel)
}

type Files []Entry

// Stage transforms a list of files. Stages must not modify their input slice.
type Stage func(files Files) (Files, error)

// Compose applies stages in order and stops at the first error.
func Compose(files Files, stages ...Stage) (Files, error) {
	var err error
	for _, s := range stages {
		files, err = s(files)
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// Rels returns the relative names of all entries.
func (f Files) Rels() []string {
	ret := make([]string, 0, len(f))
	for _, e := range f {
		ret = append(ret, e.Rel)
	}
	return ret
}
