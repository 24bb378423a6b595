package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// ExecAction runs an external program.
type ExecAction struct {
	Argv []string
	Dir  string
	Env  map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Perform runs the program and waits for it to exit.
func (a *ExecAction) Perform(ctx context.Context) error {
	if len(a.Argv) == 0 {
		return errors.New("exec action has no program")
	}

	cmd := exec.CommandContext(ctx, a.Argv[0], a.Argv[1:]...)
	cmd.Dir = a.Dir
	if len(a.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range a.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	cmd.Stdin = a.Stdin
	cmd.Stdout = a.Stdout
	cmd.Stderr = a.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}
