package fileset

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// Exclude drops entries whose relative name matches any of the patterns.
// Patterns are matched against the whole relative name and '*' also matches
// '/', so "test/*" excludes everything below test.
func Exclude(patterns ...string) Stage {
	var globs []glob.Glob
	var compileErr error
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			compileErr = multierror.Append(compileErr, err)
			continue
		}
		globs = append(globs, g)
	}

	return func(files Files) (Files, error) {
		if compileErr != nil {
			return nil, compileErr
		}
		var ret Files
		for _, e := range files {
			excluded := false
			for _, g := range globs {
				if g.Match(e.Rel) {
					excluded = true
					break
				}
			}
			if !excluded {
				ret = append(ret, e)
			}
		}
		return ret, nil
	}
}

// ExcludeBasenamePrefix drops entries whose base name starts with prefix.
func ExcludeBasenamePrefix(prefix string) Stage {
	return func(files Files) (Files, error) {
		var ret Files
		for _, e := range files {
			if !strings.HasPrefix(e.Base(), prefix) {
				ret = append(ret, e)
			}
		}
		return ret, nil
	}
}

// RelPrefix prepends prefix to the relative names.
func RelPrefix(prefix string) Stage {
	return Map(func(e Entry) (Entry, error) {
		e.Rel = path.Join(prefix, e.Rel)
		return e, nil
	})
}

// Map applies fn to every entry.
func Map(fn func(e Entry) (Entry, error)) Stage {
	return func(files Files) (Files, error) {
		ret := make(Files, 0, len(files))
		for _, e := range files {
			e2, err := fn(e)
			if err != nil {
				return nil, err
			}
			ret = append(ret, e2)
		}
		return ret, nil
	}
}

// Inspect logs every entry and passes the list through.
func Inspect(files Files) (Files, error) {
	for _, e := range files {
		log.Infof("### %s %s", e.Abs, e.Rel)
	}
	return files, nil
}

// AddToZip writes all entries into a. A nil archive makes this a no-op.
func AddToZip(a *Archive) Stage {
	return func(files Files) (Files, error) {
		if a == nil {
			return files, nil
		}
		for _, e := range files {
			err := a.Add(e.Abs, e.Rel)
			if err != nil {
				return nil, err
			}
		}
		return files, nil
	}
}

// CopyTo copies all entries into target, using the relative names as paths.
// Directories are created, files are copied with their permissions.
func CopyTo(target string) Stage {
	return func(files Files) (Files, error) {
		var errs *multierror.Error
		for _, e := range files {
			dst := filepath.Join(target, filepath.FromSlash(e.Rel))
			if utils.IsDirectory(e.Abs) {
				if err := os.MkdirAll(dst, 0o755); err != nil {
					errs = multierror.Append(errs, err)
				}
				continue
			}
			log.Debugf("Copying %s to %s", e.Abs, dst)
			if err := utils.CopyFile(e.Abs, dst); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		if err := errs.ErrorOrNil(); err != nil {
			return nil, err
		}
		return files, nil
	}
}
