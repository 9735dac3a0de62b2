// Package cmake renders CMake cache variables and drives configure/build
// steps through a process.Runner.
package cmake

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/codelldb/lldb-dist/pkg/utils/process"
	log "github.com/sirupsen/logrus"
)

// Vars is a set of CMake cache variables.
type Vars map[string]string

// Update sets all entries of other, overwriting existing ones.
func (v Vars) Update(other map[string]string) {
	for k, x := range other {
		v[k] = x
	}
}

// Append adds suffix to the current value of key, which may be unset.
func (v Vars) Append(key string, suffix string) {
	v[key] = v[key] + suffix
}

// Args renders vars as -DKEY=VALUE arguments, sorted by key.
func Args(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ret := make([]string, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, fmt.Sprintf("-D%s=%s", k, vars[k]))
	}
	return ret
}

// LogArgs prints a banner followed by one argument per line.
func LogArgs(title string, args []string) {
	var b strings.Builder
	b.WriteString(title)
	for _, a := range args {
		b.WriteString("\n  ")
		b.WriteString(a)
	}
	log.Info(b.String())
}

// Project is a CMake source tree together with its build directory.
type Project struct {
	Name      string
	SourceDir string
	BuildDir  string

	// Generator defaults to Ninja.
	Generator string

	// Env is added to the environment of every cmake invocation.
	Env []string
}

func (p *Project) command(args ...string) process.Command {
	return process.NewCommand("cmake", args...).WithEnv(p.Env...)
}

// Configure runs cmake -G<generator> <src> -B <build> with vars.
func (p *Project) Configure(ctx context.Context, r process.Runner, vars map[string]string) error {
	err := os.MkdirAll(p.BuildDir, 0o755)
	if err != nil {
		return err
	}

	gen := p.Generator
	if gen == "" {
		gen = "Ninja"
	}
	args := Args(vars)
	LogArgs(fmt.Sprintf("Configuring %s with:", p.Name), args)

	c := p.command(append([]string{"-G" + gen, p.SourceDir, "-B", p.BuildDir}, args...)...)
	err = r.Run(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to configure %s: %w", p.Name, err)
	}
	return nil
}

// Build builds target, or the default target if target is empty.
func (p *Project) Build(ctx context.Context, r process.Runner, target string) error {
	args := []string{"--build", p.BuildDir}
	if target != "" {
		log.Infof("Building %s", target)
		args = append(args, "--target", target)
	}
	err := r.Run(ctx, p.command(args...))
	if err != nil {
		if target == "" {
			target = p.Name
		}
		return fmt.Errorf("failed to build %s: %w", target, err)
	}
	return nil
}

func (p *Project) Install(ctx context.Context, r process.Runner) error {
	return p.Build(ctx, r, "install")
}
