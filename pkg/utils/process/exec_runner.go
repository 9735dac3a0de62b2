package process

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
)

// ExecRunner runs commands as child processes. Each child gets its own process
// group, which is terminated when the context is cancelled.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecRunner(stdout io.Writer, stderr io.Writer) *ExecRunner {
	return &ExecRunner{
		Stdout: stdout,
		Stderr: stderr,
	}
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func (r *ExecRunner) buildCmd(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) != 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.WaitDelay = 10 * time.Second
	if c.Interactive {
		cmd.Stdin = r.Stdin
		if cmd.Stdin == nil {
			cmd.Stdin = os.Stdin
		}
		return cmd
	}
	cmd.SysProcAttr = ProcAttrWithProcessGroup
	cmd.Cancel = func() error {
		return TerminateProcess(cmd.Process.Pid, os.Interrupt)
	}
	return cmd
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := r.buildCmd(ctx, c)
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	log.Infof("Running: %s", c.String())
	return wrapError(c, cmd.Run())
}

func (r *ExecRunner) Output(ctx context.Context, c Command) (string, error) {
	cmd := r.buildCmd(ctx, c)
	buf := bytes.NewBuffer(nil)
	cmd.Stdout = buf
	cmd.Stderr = r.stderr()

	log.Debugf("Running: %s", c.String())
	err := cmd.Run()
	if err != nil {
		return "", wrapError(c, err)
	}
	return buf.String(), nil
}
