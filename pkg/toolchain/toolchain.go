// Package toolchain invokes the external compiler and linker.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Role identifies which external tool produces an artifact kind.
type Role string

const (
	RoleCompile Role = "compile"
	RoleLink    Role = "link"
)

// Tool describes one external command and its argument template. The
// placeholders {in} and {out} in Args expand per invocation to the
// dependency path and the artifact path.
type Tool struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

func (t Tool) render(in, out string) []string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		a = strings.ReplaceAll(a, "{in}", in)
		a = strings.ReplaceAll(a, "{out}", out)
		args[i] = a
	}
	return args
}

// BuildFailure reports an external tool exiting non-zero. It carries
// the exit status and the tool's combined output verbatim.
type BuildFailure struct {
	Role     Role
	Command  string
	ExitCode int
	Output   string
}

func (e *BuildFailure) Error() string {
	msg := fmt.Sprintf("%s failed: %s exited with status %d", e.Role, e.Command, e.ExitCode)
	if e.Output != "" {
		msg += "\n" + strings.TrimRight(e.Output, "\n")
	}
	return msg
}

// Invoker runs one tool against one input/output pair. The build
// session depends on this interface so tests can substitute a fake.
type Invoker interface {
	Invoke(ctx context.Context, role Role, tool Tool, in, out string) error
}

// Exec invokes tools as child processes, blocking until they finish
// and capturing their combined output. There is no timeout: a hanging
// tool blocks the session.
type Exec struct{}

// Invoke runs the tool with its rendered arguments. A non-zero exit
// becomes a BuildFailure; failure to start the process at all is
// returned as a wrapped error.
func (Exec) Invoke(ctx context.Context, role Role, tool Tool, in, out string) error {
	cmd := exec.CommandContext(ctx, tool.Command, tool.render(in, out)...)

	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &BuildFailure{
			Role:     role,
			Command:  tool.Command,
			ExitCode: exitErr.ExitCode(),
			Output:   string(output),
		}
	}
	return fmt.Errorf("failed to start %s command %s: %w", role, tool.Command, err)
}

// Run executes a linked binary with inherited standard streams and
// returns its exit status. Running the program is a convenience action
// after a successful link, so a non-zero exit is reported, not failed.
func Run(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("failed to run %s: %w", path, err)
}
