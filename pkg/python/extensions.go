package python

import (
	"sort"

	"github.com/codelldb/lldb-dist/pkg/utils"
)

// extensions that are always linked in, even though they depend on external
// libraries. ctypes and ssl are needed by codelldb and pip.
var alwaysIncluded = []string{"_ctypes", "_socket", "_ssl", "_scproxy", "select", "zlib"}

// libraries that macOS builds link into most extensions anyway
var allowedLinks = []string{"intl", "iconv"}

type IncludedExtension struct {
	Name string
	Extension
}

func shouldInclude(name string, ext Extension) bool {
	if ext.Required {
		return true
	}
	if utils.FindStrInSlice(alwaysIncluded, name) != -1 {
		return true
	}
	for _, l := range ext.Links {
		if utils.FindStrInSlice(allowedLinks, l.Name) == -1 {
			return false
		}
	}
	return true
}

// SelectExtensions returns the first variant of every extension that should
// be linked into the runtime, sorted by name.
func SelectExtensions(m *Manifest) []IncludedExtension {
	var ret []IncludedExtension
	for name, variants := range m.BuildInfo.Extensions {
		if len(variants) == 0 {
			continue
		}
		if shouldInclude(name, variants[0]) {
			ret = append(ret, IncludedExtension{Name: name, Extension: variants[0]})
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret
}

func extensionNames(exts []IncludedExtension) []string {
	ret := make([]string, 0, len(exts))
	for _, e := range exts {
		ret = append(ret, e.Name)
	}
	return ret
}
