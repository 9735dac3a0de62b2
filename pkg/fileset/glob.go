package fileset

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// RelGlob expands patterns relative to baseDir. Patterns use '/' as separator.
// A '*', '?' or '[...]' never crosses a separator, while a "**" segment
// matches zero or more directories. Names starting with '.' are only matched
// by segments that start with '.' as well. Both files and directories are
// returned; matches of each pattern are sorted, patterns keep their order.
func RelGlob(baseDir string, patterns ...string) (Files, error) {
	var ret Files
	for _, p := range patterns {
		matches, err := globRel(baseDir, p)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			ret = append(ret, Entry{
				Abs: filepath.Join(baseDir, filepath.FromSlash(m)),
				Rel: m,
			})
		}
	}
	return ret, nil
}

// Glob expands a single absolute or cwd-relative pattern and returns the
// matching paths.
func Glob(pattern string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	segs := strings.Split(pattern, "/")
	i := 0
	for i < len(segs) && !hasMagic(segs[i]) {
		i++
	}
	if i == len(segs) {
		if _, err := os.Lstat(filepath.FromSlash(pattern)); err != nil {
			return nil, nil
		}
		return []string{filepath.FromSlash(pattern)}, nil
	}

	base := strings.Join(segs[:i], "/")
	if base == "" {
		if strings.HasPrefix(pattern, "/") {
			base = "/"
		} else {
			base = "."
		}
	}
	matches, err := globRel(filepath.FromSlash(base), strings.Join(segs[i:], "/"))
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(matches))
	for _, m := range matches {
		ret = append(ret, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m)))
	}
	return ret, nil
}

func hasMagic(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

type globber struct {
	baseDir string
	seen    map[string]bool
	result  []string
}

func globRel(baseDir string, pattern string) ([]string, error) {
	var segs []string
	for _, s := range strings.Split(pattern, "/") {
		if s != "" && s != "." {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("empty glob pattern '%s'", pattern)
	}

	g := &globber{
		baseDir: baseDir,
		seen:    map[string]bool{},
	}
	err := g.match("", segs)
	if err != nil {
		return nil, fmt.Errorf("glob '%s' in %s failed: %w", pattern, baseDir, err)
	}
	sort.Strings(g.result)
	return g.result, nil
}

func (g *globber) abs(rel string) string {
	return filepath.Join(g.baseDir, filepath.FromSlash(rel))
}

func (g *globber) add(rel string) {
	if rel == "" || g.seen[rel] {
		return
	}
	g.seen[rel] = true
	g.result = append(g.result, rel)
}

func (g *globber) isDir(rel string) bool {
	st, err := os.Stat(g.abs(rel))
	return err == nil && st.IsDir()
}

func (g *globber) match(rel string, segs []string) error {
	if len(segs) == 0 {
		g.add(rel)
		return nil
	}
	seg := segs[0]

	if seg == "**" {
		// zero directories
		err := g.match(rel, segs[1:])
		if err != nil {
			return err
		}
		names, err := g.readDir(rel, false)
		if err != nil {
			return err
		}
		for _, n := range names {
			child := path.Join(rel, n)
			if !g.isDir(child) {
				continue
			}
			err = g.match(child, segs)
			if err != nil {
				return err
			}
		}
		return nil
	}

	if !hasMagic(seg) {
		child := path.Join(rel, seg)
		if _, err := os.Lstat(g.abs(child)); err != nil {
			return nil
		}
		if len(segs) > 1 && !g.isDir(child) {
			return nil
		}
		return g.match(child, segs[1:])
	}

	m, err := glob.Compile(seg)
	if err != nil {
		return err
	}
	names, err := g.readDir(rel, strings.HasPrefix(seg, "."))
	if err != nil {
		return err
	}
	for _, n := range names {
		if !m.Match(n) {
			continue
		}
		child := path.Join(rel, n)
		if len(segs) > 1 && !g.isDir(child) {
			continue
		}
		err = g.match(child, segs[1:])
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *globber) readDir(rel string, withHidden bool) ([]string, error) {
	if !g.isDir(rel) {
		return nil, nil
	}
	des, err := os.ReadDir(g.abs(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, de := range des {
		if !withHidden && strings.HasPrefix(de.Name(), ".") {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}
