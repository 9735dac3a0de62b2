package target

import (
	"errors"
	"fmt"
	"sort"

	"dario.cat/mergo"
	"github.com/codelldb/lldb-dist/pkg/utils"
	"github.com/codelldb/lldb-dist/pkg/yaml"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownTarget = errors.New("unsupported target triple")

// Table maps target triples to their configuration.
type Table map[string]Config

var linux = Config{
	HostSystemName:      Linux,
	HostSystemProcessor: "x86_64",
	SystemName:          Linux,
	SystemProcessor:     "???",
	CXXCompiler:         "clang++",
	CCompiler:           "clang",
	CXXFlags:            "",
	CFlags:              "",
	Strip:               "llvm-strip",
	ExeLinkerFlags:      "-fuse-ld=lld -static-libstdc++ -static-libgcc",
	SharedLinkerFlags:   "-fuse-ld=lld -static-libstdc++ -static-libgcc",
}

var darwin = Config{
	HostSystemName:      Darwin,
	HostSystemProcessor: "x86_64",
	SystemName:          Darwin,
	SystemProcessor:     "???",
	CXXCompiler:         "clang++",
	CCompiler:           "clang",
	CXXFlags:            "",
	CFlags:              "",
	Strip:               "strip",
}

var defaultTable = Table{
	"x86_64-linux-gnu": Update(linux, map[string]string{
		SystemProcessor: "x86_64",
		CFlags:          "-target x86_64-linux-gnu -fPIC",
		CXXFlags:        "-target x86_64-linux-gnu -fPIC",
	}),
	"aarch64-linux-gnu": Update(linux, map[string]string{
		PythonArchive:      "cpython-*-aarch64-*-linux-*.tar.zst",
		SystemProcessor:    "aarch64",
		CFlags:             "-target aarch64-linux-gnu -fPIC",
		CXXFlags:           "-target aarch64-linux-gnu -fPIC",
		"LLVM_HOST_TRIPLE": "aarch64-linux-gnu",
		"LLVM_TARGET_ARCH": "aarch64",
	}),
	"arm-linux-gnueabihf": Update(linux, map[string]string{
		PythonArchive:      "cpython-*-arm*-linux-*.tar.zst",
		SystemProcessor:    "arm",
		CFlags:             "-target arm-linux-gnueabihf -fPIC",
		CXXFlags:           "-target arm-linux-gnueabihf -fPIC",
		"LLVM_HOST_TRIPLE": "arm-linux-gnueabihf",
		"LLVM_TARGET_ARCH": "arm",
	}),
	"x86_64-apple-darwin": Update(darwin, map[string]string{
		OSXArchitectures:       "x86_64",
		"CMAKE_SYSTEM_VERSION": "11.0.0",
	}),
	"aarch64-apple-darwin": Update(darwin, map[string]string{
		PythonArchive:          "cpython-*-aarch64-*-darwin-*.tar.zst",
		SystemProcessor:        "arm64",
		OSXArchitectures:       "arm64",
		"CMAKE_SYSTEM_VERSION": "20.0.0",
		"LLVM_HOST_TRIPLE":     "arm64-apple-darwin",
		"LLVM_TARGET_ARCH":     "arm64",
	}),
	"x86_64-windows-msvc": {
		HostSystemName:      Windows,
		HostSystemProcessor: "x86_64",
		SystemName:          Windows,
		SystemProcessor:     "x86_64",
		CCompiler:           "cl",
		CXXCompiler:         "cl",
		CXXFlags:            "",
		CFlags:              "",
		Strip:               "",
	},
}

// DefaultTable returns a copy of the builtin target table.
func DefaultTable() Table {
	return defaultTable.Clone()
}

// Get looks up triple in the builtin table.
func Get(triple string) (Config, error) {
	return defaultTable.Get(triple)
}

func (t Table) Get(triple string) (Config, error) {
	c, ok := t[triple]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, triple)
	}
	return Update(c, nil), nil
}

// Triples returns all known triples, sorted.
func (t Table) Triples() []string {
	ret := make([]string, 0, len(t))
	for k := range t {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func (t Table) Clone() Table {
	var ret Table
	err := utils.DeepCopy(&ret, t)
	if err != nil {
		panic(err)
	}
	return ret
}

func (t Table) Validate() error {
	var errs *multierror.Error
	for _, triple := range t.Triples() {
		if err := t[triple].Validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("target %s: %w", triple, err))
		}
	}
	return errs.ErrorOrNil()
}

// OverrideEntry describes a target in a targets file. Vars are merged over
// the vars of Base (if set) or over the existing entry of the same triple.
type OverrideEntry struct {
	Base string            `yaml:"base,omitempty"`
	Vars map[string]string `yaml:"vars" validate:"required"`
}

type OverridesFile struct {
	Targets map[string]OverrideEntry `yaml:"targets" validate:"required"`
}

// LoadOverrides reads a targets file and returns t with the entries applied.
// t itself is not modified.
func (t Table) LoadOverrides(p string) (Table, error) {
	var f OverridesFile
	err := yaml.ReadYamlFile(p, &f)
	if err != nil {
		return nil, err
	}
	return t.ApplyOverrides(f)
}

func (t Table) ApplyOverrides(f OverridesFile) (Table, error) {
	ret := t.Clone()

	triples := make([]string, 0, len(f.Targets))
	for k := range f.Targets {
		triples = append(triples, k)
	}
	sort.Strings(triples)

	for _, triple := range triples {
		e := f.Targets[triple]
		base := ret[triple]
		if e.Base != "" {
			b, err := ret.Get(e.Base)
			if err != nil {
				return nil, fmt.Errorf("target %s: %w", triple, err)
			}
			base = b
		}
		cfg := Update(base, nil)
		err := mergo.Merge(&cfg, Config(e.Vars), mergo.WithOverride)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", triple, err)
		}
		log.Debugf("Overriding target %s", triple)
		ret[triple] = cfg
	}

	err := ret.Validate()
	if err != nil {
		return nil, err
	}
	return ret, nil
}
