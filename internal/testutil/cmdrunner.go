// Package testutil provides test infrastructure shared by relgraph packages:
// the CommandRunner abstraction used to invoke scoring commands, its mock,
// connection fixtures and filesystem helpers.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandCall records a command invocation for assertion purposes.
type CommandCall struct {
	Name string
	Args []string
}

func (c CommandCall) String() string {
	return commandLine(c.Name, c.Args)
}

type cannedResult struct {
	out []byte
	err error
}

// MockRunner answers commands from canned results and records every call.
// A result registered for "score --json" also answers "score --json doc.md";
// the longest registered prefix wins.
type MockRunner struct {
	mu      sync.Mutex
	results map[string]cannedResult
	calls   []CommandCall
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{results: make(map[string]cannedResult)}
}

// Run records the call and returns the best matching canned result.
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, CommandCall{Name: name, Args: append([]string(nil), args...)})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	line := commandLine(name, args)
	best, found := "", false
	for k := range m.results {
		if matches(line, k) && (!found || len(k) > len(best)) {
			best, found = k, true
		}
	}
	if !found {
		return nil, fmt.Errorf("unexpected command: %s", line)
	}
	r := m.results[best]
	return r.out, r.err
}

// SetResponse configures the output of a command.
func (m *MockRunner) SetResponse(name string, args []string, response []byte) {
	m.set(name, args, cannedResult{out: response})
}

// SetError makes a command fail with err.
func (m *MockRunner) SetError(name string, args []string, err error) {
	m.set(name, args, cannedResult{err: err})
}

func (m *MockRunner) set(name string, args []string, r cannedResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[commandLine(name, args)] = r
}

// Calls returns a copy of all recorded calls.
func (m *MockRunner) Calls() []CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CommandCall(nil), m.calls...)
}

// Reset clears recorded calls; canned results stay.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// matches reports whether prefix covers line on a word boundary.
func matches(line, prefix string) bool {
	if !strings.HasPrefix(line, prefix) {
		return false
	}
	return len(line) == len(prefix) || line[len(prefix)] == ' '
}

// ExecRunner executes real commands using os/exec.
// This is the production implementation of CommandRunner.
type ExecRunner struct {
	// Env entries appended to the current environment of each command.
	Env []string
}

// NewExecRunner creates a new ExecRunner for production use.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command and returns its stdout.
// On a non-zero exit the trimmed stderr is folded into the returned error.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}
