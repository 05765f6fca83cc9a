package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// AssertCalled verifies that a command was called with exactly these args.
func AssertCalled(t *testing.T, mock *MockRunner, name string, args ...string) {
	t.Helper()
	calls := mock.Calls()
	for _, call := range calls {
		if call.Name == name && slices.Equal(call.Args, args) {
			return
		}
	}
	t.Errorf("expected call to %s not found in %v", commandLine(name, args), calls)
}

// SetupMockScorer makes mock answer the scoring command for focusKey, which
// the command source appends as the last argument.
func SetupMockScorer(mock *MockRunner, command []string, focusKey, response string) {
	args := append(slices.Clone(command[1:]), focusKey)
	mock.SetResponse(command[0], args, []byte(response))
}
