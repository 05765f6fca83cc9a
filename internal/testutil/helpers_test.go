package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := WriteFile(t, dir, "nested/deeper/connections.json", ConnectionsIndexJSON)
	if path != filepath.Join(dir, "nested", "deeper", "connections.json") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != ConnectionsIndexJSON {
		t.Error("content mismatch")
	}
}

func TestAssertCalled(t *testing.T) {
	m := NewMockRunner()
	m.SetResponse("score", nil, nil)
	_, _ = m.Run(context.Background(), "score", "--json", "doc.md")

	AssertCalled(t, m, "score", "--json", "doc.md")
}

func TestSetupMockScorer(t *testing.T) {
	m := NewMockRunner()
	SetupMockScorer(m, []string{"smart-connections", "--json"}, "notes/focus.md", ConnectionsListJSON)

	out, err := m.Run(context.Background(), "smart-connections", "--json", "notes/focus.md")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if string(out) != ConnectionsListJSON {
		t.Errorf("out = %q", out)
	}
	if _, err := m.Run(context.Background(), "smart-connections", "--json", "notes/other.md"); err == nil {
		t.Error("scorer answered for a focus key it was not set up for")
	}
}
