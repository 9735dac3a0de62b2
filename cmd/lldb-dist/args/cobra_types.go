package args

import (
	"fmt"

	"github.com/codelldb/lldb-dist/pkg/utils"
)

type existingFileType string

func (s *existingFileType) Set(val string) error {
	val = utils.ExpandPath(val)
	if !utils.Exists(val) {
		return fmt.Errorf("%s does not exist", val)
	}
	if utils.IsDirectory(val) {
		return fmt.Errorf("%s exists but is a directory", val)
	}
	*s = existingFileType(val)
	return nil
}
func (s *existingFileType) Type() string {
	return "existingfile"
}

func (s *existingFileType) String() string { return string(*s) }

type existingDirType string

func (s *existingDirType) Set(val string) error {
	val = utils.ExpandPath(val)
	if !utils.Exists(val) {
		return fmt.Errorf("%s does not exist", val)
	}
	if !utils.IsDirectory(val) {
		return fmt.Errorf("%s exists but is not a directory", val)
	}
	*s = existingDirType(val)
	return nil
}
func (s *existingDirType) Type() string {
	return "existingdir"
}

func (s *existingDirType) String() string { return string(*s) }

// pathType does not need to exist yet, it is only expanded.
type pathType string

func (s *pathType) Set(val string) error {
	*s = pathType(utils.ExpandPath(val))
	return nil
}
func (s *pathType) Type() string {
	return "path"
}

func (s *pathType) String() string { return string(*s) }
