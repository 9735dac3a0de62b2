package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Command describes a single invocation of an external tool.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the environment of the current process.
	Env []string

	// Interactive commands read from stdin and stay in the foreground
	// process group of the terminal.
	Interactive bool
}

func NewCommand(name string, args ...string) Command {
	return Command{
		Name: name,
		Args: args,
	}
}

func (c Command) InDir(dir string) Command {
	c.Dir = dir
	return c
}

func (c Command) WithEnv(env ...string) Command {
	c.Env = append(append([]string{}, c.Env...), env...)
	return c
}

func (c Command) WithInteractive() Command {
	c.Interactive = true
	return c
}

// Argv returns the name followed by all arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

func (c Command) String() string {
	var parts []string
	for _, a := range c.Argv() {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Runner executes commands. Run streams the output of the command, Output
// captures stdout and returns it.
type Runner interface {
	Run(ctx context.Context, c Command) error
	Output(ctx context.Context, c Command) (string, error)
}

type ExitError struct {
	Command  Command
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command '%s' failed with exit code %d", e.Command.String(), e.ExitCode)
}

func wrapError(c Command, err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{
			Command:  c,
			ExitCode: ee.ExitCode(),
		}
	}
	return fmt.Errorf("failed to run '%s': %w", c.String(), err)
}
