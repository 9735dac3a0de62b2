package process

import (
	"context"
)

// RecordingRunner records commands instead of executing them. Hook, if set,
// is called for every command and can simulate side effects, output and
// failures of the tool.
type RecordingRunner struct {
	Commands []Command
	Hook     func(c Command) (string, error)
}

func (r *RecordingRunner) Run(ctx context.Context, c Command) error {
	_, err := r.Output(ctx, c)
	return err
}

func (r *RecordingRunner) Output(ctx context.Context, c Command) (string, error) {
	r.Commands = append(r.Commands, c)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Hook == nil {
		return "", nil
	}
	return r.Hook(c)
}

// Names returns the tool names of all recorded commands.
func (r *RecordingRunner) Names() []string {
	var ret []string
	for _, c := range r.Commands {
		ret = append(ret, c.Name)
	}
	return ret
}

// Find returns all recorded commands with the given tool name.
func (r *RecordingRunner) Find(name string) []Command {
	var ret []Command
	for _, c := range r.Commands {
		if c.Name == name {
			ret = append(ret, c)
		}
	}
	return ret
}
