// Package python builds the trimmed CPython runtime that is shipped with
// LLDB, starting from a python-build-standalone distribution.
package python

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/dimchansky/utfbom"
	"sigs.k8s.io/yaml"
)

const ManifestFile = "PYTHON.json"

// Manifest is the subset of PYTHON.json that is needed to relink the runtime.
type Manifest struct {
	PythonVersion string      `json:"python_version"`
	PythonPaths   PythonPaths `json:"python_paths"`
	BuildInfo     BuildInfo   `json:"build_info"`
}

type PythonPaths struct {
	Stdlib string `json:"stdlib"`
}

type BuildInfo struct {
	Core          Core                   `json:"core"`
	Extensions    map[string][]Extension `json:"extensions"`
	InittabObject string                 `json:"inittab_object"`
}

type Core struct {
	Objs      []string `json:"objs"`
	SharedLib string   `json:"shared_lib,omitempty"`
}

// Extension is one build variant of an extension module.
type Extension struct {
	Required  bool     `json:"required"`
	InitFn    string   `json:"init_fn"`
	Objs      []string `json:"objs"`
	Links     []Link   `json:"links"`
	SharedLib *string  `json:"shared_lib,omitempty"`
}

// Link is a library an extension or the core links against.
type Link struct {
	Name        string  `json:"name"`
	System      bool    `json:"system,omitempty"`
	Framework   bool    `json:"framework,omitempty"`
	PathStatic  *string `json:"path_static,omitempty"`
	PathDynamic *string `json:"path_dynamic,omitempty"`
}

func LoadManifest(dist string) (*Manifest, error) {
	p := filepath.Join(dist, ManifestFile)
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read python manifest: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(utfbom.SkipOnly(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read python manifest: %w", err)
	}
	var m Manifest
	err = yaml.Unmarshal(b, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return &m, nil
}

// Version returns the major and minor version of the distribution.
func (m *Manifest) Version() (string, string, error) {
	v, err := semver.NewVersion(m.PythonVersion)
	if err != nil {
		return "", "", fmt.Errorf("invalid python_version '%s': %w", m.PythonVersion, err)
	}
	return fmt.Sprint(v.Major()), fmt.Sprint(v.Minor()), nil
}
