package executil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Cmd  string
	Args []string
}

// Line returns the command and its arguments joined by spaces.
func (c RecordedCommand) Line() string {
	return strings.TrimSpace(c.Cmd + " " + strings.Join(c.Args, " "))
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors maps to control return values.
//
// Keys are matched longest prefix first: "docker images -f" is preferred
// over "docker images", which is preferred over "docker".
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	Outputs map[string][]byte
	Errors  map[string]error

	// Missing lists command names LookPath should fail for.
	Missing map[string]bool
}

var _ Executor = (*RecordingExecutor)(nil)

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(_ context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record(cmd, args...)
}

// Output records the command and returns configured output/error.
func (e *RecordingExecutor) Output(_ context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record(cmd, args...)
}

// LookPath fails for commands listed in Missing.
func (e *RecordingExecutor) LookPath(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Missing[name] {
		return "", fmt.Errorf("exec: %q: %w", name, exec.ErrNotFound)
	}
	return "/usr/bin/" + name, nil
}

// Lines returns every recorded command line in order.
func (e *RecordingExecutor) Lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.Commands))
	for i, c := range e.Commands {
		out[i] = c.Line()
	}
	return out
}

func (e *RecordingExecutor) record(cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Cmd: cmd, Args: args})

	parts := append([]string{cmd}, args...)
	for n := len(parts); n > 0; n-- {
		key := strings.Join(parts[:n], " ")
		out, hasOut := e.Outputs[key]
		err, hasErr := e.Errors[key]
		if hasOut || hasErr {
			return out, err
		}
	}

	return nil, nil
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
