package target

import (
	"fmt"
	"sort"

	"github.com/codelldb/lldb-dist/pkg/yaml"
	"github.com/hashicorp/go-multierror"
)

// Config holds the CMake variables describing a target platform. Besides the
// keys below, any other CMAKE_* or LLVM_* variable may be present and is
// passed to CMake as is.
type Config map[string]string

const (
	HostSystemName      = "CMAKE_HOST_SYSTEM_NAME"
	HostSystemProcessor = "CMAKE_HOST_SYSTEM_PROCESSOR"
	SystemName          = "CMAKE_SYSTEM_NAME"
	SystemProcessor     = "CMAKE_SYSTEM_PROCESSOR"
	CCompiler           = "CMAKE_C_COMPILER"
	CXXCompiler         = "CMAKE_CXX_COMPILER"
	CFlags              = "CMAKE_C_FLAGS"
	CXXFlags            = "CMAKE_CXX_FLAGS"
	Strip               = "CMAKE_STRIP"
	ExeLinkerFlags      = "CMAKE_EXE_LINKER_FLAGS"
	SharedLinkerFlags   = "CMAKE_SHARED_LINKER_FLAGS"
	OSXArchitectures    = "CMAKE_OSX_ARCHITECTURES"

	// PythonArchive is not a CMake variable. It names the glob pattern of
	// the python-build-standalone archive to use for the target.
	PythonArchive = "TARGET_PYTHON_ARCHIVE"
)

const (
	Linux   = "Linux"
	Darwin  = "Darwin"
	Windows = "Windows"
)

var requiredKeys = []string{
	HostSystemName,
	HostSystemProcessor,
	SystemName,
	SystemProcessor,
	CCompiler,
	CXXCompiler,
	CFlags,
	CXXFlags,
	Strip,
}

// Update returns a deep copy of base with updates applied on top.
func Update(base Config, updates map[string]string) Config {
	ret := Config{}
	for k, v := range base {
		ret[k] = v
	}
	for k, v := range updates {
		ret[k] = v
	}
	return ret
}

// Validate checks that all required keys are present and that the system
// names are known.
func (c Config) Validate() error {
	var errs *multierror.Error
	for _, k := range requiredKeys {
		if _, ok := c[k]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("missing required key %s", k))
		}
	}
	for _, k := range []string{HostSystemName, SystemName} {
		v, ok := c[k]
		if !ok {
			continue
		}
		if err := yaml.Validator.Var(v, "oneof=Linux Darwin Windows"); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid %s '%s'", k, v))
		}
	}
	return errs.ErrorOrNil()
}

func (c Config) SystemName() string {
	return c[SystemName]
}

func (c Config) HostSystemName() string {
	return c[HostSystemName]
}

func (c Config) Processor() string {
	return c[SystemProcessor]
}

func (c Config) HostProcessor() string {
	return c[HostSystemProcessor]
}

func (c Config) CCompiler() string {
	return c[CCompiler]
}

func (c Config) CFlags() string {
	return c[CFlags]
}

func (c Config) Strip() string {
	return c[Strip]
}

func (c Config) PythonArchive() string {
	return c[PythonArchive]
}

func (c Config) OSXArchitectures() string {
	return c[OSXArchitectures]
}

// IsCrossCompiling reports whether the target processor differs from hostArch.
func (c Config) IsCrossCompiling(hostArch string) bool {
	return c.Processor() != hostArch
}

// Keys returns all keys in sorted order.
func (c Config) Keys() []string {
	ret := make([]string, 0, len(c))
	for k := range c {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
