package connections

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/npratt/relgraph/internal/testutil"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "block", want: KindBlock},
		{in: "note", want: KindNote},
		{in: " Note ", want: KindNote},
		{in: "chapter", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownKind) {
					t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapSource_ReturnsCopy(t *testing.T) {
	src := MapSource{
		"focus.md": {{TargetID: "A", Score: 0.9, Kind: KindBlock}},
	}

	got, err := src.Connections(context.Background(), "focus.md")
	if err != nil {
		t.Fatalf("Connections failed: %v", err)
	}
	got[0].TargetID = "mutated"

	again, _ := src.Connections(context.Background(), "focus.md")
	if again[0].TargetID != "A" {
		t.Errorf("MapSource leaked its backing slice: got %q", again[0].TargetID)
	}
}

func TestFileSource_Connections(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "conns.json", testutil.ConnectionsIndexJSON)

	src := NewFileSource(path)
	conns, err := src.Connections(context.Background(), "notes/focus.md")
	if err != nil {
		t.Fatalf("Connections failed: %v", err)
	}
	if len(conns) != 4 {
		t.Fatalf("len(conns) = %d, want 4", len(conns))
	}
	if conns[0].TargetID != "notes/alpha.md#Intro" || conns[0].Kind != KindBlock {
		t.Errorf("conns[0] = %+v", conns[0])
	}

	missing, err := src.Connections(context.Background(), "notes/unknown.md")
	if err != nil {
		t.Fatalf("Connections for unknown key failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("unknown key returned %d records, want 0", len(missing))
	}

	keys, err := src.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("len(keys) = %d, want 2", len(keys))
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	src := NewFileSource(filepath.Join(dir, "missing.json"))
	if _, err := src.Connections(context.Background(), "x"); err == nil {
		t.Error("expected error for missing file")
	}

	bad := testutil.WriteFile(t, dir, "bad.json", "{not json")
	if _, err := NewFileSource(bad).Connections(context.Background(), "x"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestCommandSource_Connections(t *testing.T) {
	runner := testutil.NewMockRunner()
	testutil.SetupMockScorer(runner, []string{"smart-connections", "--json"}, "notes/focus.md", testutil.ConnectionsListJSON)

	src, err := NewCommandSource(runner, []string{"smart-connections", "--json"}, time.Second)
	if err != nil {
		t.Fatalf("NewCommandSource failed: %v", err)
	}

	conns, err := src.Connections(context.Background(), "notes/focus.md")
	if err != nil {
		t.Fatalf("Connections failed: %v", err)
	}
	if len(conns) != 3 {
		t.Errorf("len(conns) = %d, want 3", len(conns))
	}
	testutil.AssertCalled(t, runner, "smart-connections", "--json", "notes/focus.md")
}

func TestCommandSource_Error(t *testing.T) {
	runner := testutil.NewMockRunner()
	runner.SetError("score", []string{"doc.md"}, errors.New("boom"))

	src, err := NewCommandSource(runner, []string{"score"}, 0)
	if err != nil {
		t.Fatalf("NewCommandSource failed: %v", err)
	}
	if _, err := src.Connections(context.Background(), "doc.md"); err == nil {
		t.Error("expected command error to propagate")
	}
}

func TestNewCommandSource_EmptyArgv(t *testing.T) {
	if _, err := NewCommandSource(testutil.NewMockRunner(), nil, time.Second); err == nil {
		t.Error("expected error for empty argv")
	}
}

// failingSource always fails and counts calls.
type failingSource struct {
	calls int
}

func (f *failingSource) Connections(ctx context.Context, focusKey string) ([]Connection, error) {
	f.calls++
	return nil, errors.New("backend down")
}

func TestBreakerSource_TripsAfterFailures(t *testing.T) {
	next := &failingSource{}
	src := NewBreakerSource(next, BreakerSettings{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}, nil)

	for i := 0; i < 2; i++ {
		if _, err := src.Connections(context.Background(), "doc.md"); err == nil {
			t.Fatalf("call %d: expected backend error", i)
		}
	}
	if src.State() != gobreaker.StateOpen {
		t.Fatalf("State = %v, want open", src.State())
	}

	_, err := src.Connections(context.Background(), "doc.md")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("error = %v, want ErrSourceUnavailable", err)
	}
	if next.calls != 2 {
		t.Errorf("wrapped source called %d times, want 2", next.calls)
	}
}

func TestBreakerSource_PassesThrough(t *testing.T) {
	src := NewBreakerSource(MapSource{
		"doc.md": {{TargetID: "A", Score: 0.7, Kind: KindNote}},
	}, BreakerSettings{Name: "ok", MinRequests: 1, FailureThreshold: 1}, nil)

	conns, err := src.Connections(context.Background(), "doc.md")
	if err != nil {
		t.Fatalf("Connections failed: %v", err)
	}
	if len(conns) != 1 || conns[0].TargetID != "A" {
		t.Errorf("conns = %+v", conns)
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "conns.json", "{}")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	if err := os.WriteFile(path, []byte(testutil.ConnectionsIndexJSON), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification within 3s")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "conns.json", "{}")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	testutil.WriteFile(t, dir, "other.json", "{}")

	select {
	case <-w.Changes():
		t.Error("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseClosesChannel(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "conns.json", "{}")

	w, err := NewWatcher(path, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("Changes channel should be closed after Close")
	}
	// Second close is a no-op
	_ = w.Close()
}
