package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/npratt/relgraph/internal/config"
	"github.com/npratt/relgraph/internal/connections"
	"github.com/npratt/relgraph/internal/graph"
	"github.com/npratt/relgraph/internal/testutil"
)

// runCLI executes the command tree with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	logger := slog.New(slog.DiscardHandler)
	root := newRootCmd(&out, logger, &slog.LevelVar{})
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func writeIndex(t *testing.T) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "connections.json", testutil.ConnectionsIndexJSON)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "relgraph ") {
		t.Errorf("output = %q", out)
	}
}

func TestSnapshotCommand_JSON(t *testing.T) {
	path := writeIndex(t)

	out, err := runCLI(t, "snapshot", "notes/focus.md",
		"--source-file", path, "--filter", "both", "--ticks", "50")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	var snap graph.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if snap.Focus != "notes/focus.md" {
		t.Errorf("Focus = %q", snap.Focus)
	}
	// Three records clear the default 0.5 threshold.
	if len(snap.Nodes) != 4 || len(snap.Edges) != 3 {
		t.Errorf("nodes=%d edges=%d, want 4 and 3", len(snap.Nodes), len(snap.Edges))
	}
	if snap.MinScore != 0.58 || snap.MaxScore != 0.91 {
		t.Errorf("score range = [%v, %v], want [0.58, 0.91]", snap.MinScore, snap.MaxScore)
	}
}

func TestSnapshotCommand_YAMLAndThreshold(t *testing.T) {
	path := writeIndex(t)

	out, err := runCLI(t, "snapshot", "notes/focus.md",
		"--source-file", path, "--format", "yaml", "--threshold", "0.8", "--ticks", "10")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	var snap graph.Snapshot
	if err := yaml.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if len(snap.Edges) != 1 || snap.Edges[0].Target != "notes/alpha.md#Intro" {
		t.Errorf("edges = %+v, want only the 0.91 block", snap.Edges)
	}
}

func TestSnapshotCommand_Deterministic(t *testing.T) {
	path := writeIndex(t)
	args := []string{"snapshot", "notes/focus.md", "--source-file", path, "--seed", "42", "--ticks", "30"}

	first, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	second, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if first != second {
		t.Error("same seed produced different layouts")
	}
}

func TestSnapshotCommand_Errors(t *testing.T) {
	path := writeIndex(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", []string{"snapshot", "notes/focus.md"}, "no connection source"},
		{"bad format", []string{"snapshot", "notes/focus.md", "--source-file", path, "--format", "xml"}, "unknown format"},
		{"bad filter", []string{"snapshot", "notes/focus.md", "--source-file", path, "--filter", "all"}, "connectionkindfilter must be one of"},
		{"missing focus", []string{"snapshot"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestKeysCommand(t *testing.T) {
	path := writeIndex(t)

	out, err := runCLI(t, "keys", "--source-file", path)
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if out != "notes/alpha.md\nnotes/focus.md\n" {
		t.Errorf("output = %q", out)
	}
}

func TestBuildSource(t *testing.T) {
	cfg := config.Default()
	if _, err := buildSource(cfg, nil); err == nil {
		t.Error("expected an error without a configured source")
	}

	cfg.Source.File = "connections.json"
	src, err := buildSource(cfg, nil)
	if err != nil {
		t.Fatalf("buildSource failed: %v", err)
	}
	if _, ok := src.(*connections.BreakerSource); !ok {
		t.Errorf("source = %T, want the breaker wrapper", src)
	}

	cfg.Source.Breaker.Enabled = false
	src, _ = buildSource(cfg, nil)
	if _, ok := src.(*connections.FileSource); !ok {
		t.Errorf("source = %T, want the bare file source", src)
	}

	cfg.Source.Command = []string{"scorer", "--json"}
	src, _ = buildSource(cfg, nil)
	if _, ok := src.(*connections.CommandSource); !ok {
		t.Errorf("source = %T, want the command source", src)
	}
}
