package tui

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/npratt/relgraph/internal/connections"
)

// lockedSource lets a test swap records while the program fetches them.
type lockedSource struct {
	mu  sync.Mutex
	src connections.MapSource
}

func (s *lockedSource) Connections(ctx context.Context, focusKey string) ([]connections.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Connections(ctx, focusKey)
}

func (s *lockedSource) add(focusKey string, c connections.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src[focusKey] = append(s.src[focusKey], c)
}

// TestTUILifecycleSmoke verifies the full bubbletea program lifecycle:
// start, fetch and lay out the graph, handle keyboard input, and quit cleanly.
// This test uses teatest to run the TUI headlessly without a real TTY.
func TestTUILifecycleSmoke(t *testing.T) {
	var quitCalled bool
	tui := newTestTUI(testSource(), WithOnQuit(func() { quitCalled = true }))

	tm := teatest.NewTestModel(
		t,
		tui.newModel(),
		teatest.WithInitialTermSize(80, 24),
	)

	// Wait until the graph has been fetched and drawn
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("3 nodes"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if fm == nil {
		t.Fatal("FinalModel returned nil")
	}
	if !quitCalled {
		t.Error("quit callback was not invoked")
	}

	final, ok := fm.(model)
	if !ok {
		t.Fatalf("FinalModel is not of type model: %T", fm)
	}
	if got := final.view.Config().Graph.ConnectionKindFilter; got != "note" {
		t.Errorf("filter = %q, want note", got)
	}
}

// TestTUILifecycleCtrlCQuit verifies that ctrl+c also triggers quit.
func TestTUILifecycleCtrlCQuit(t *testing.T) {
	var quitCalled bool
	tui := newTestTUI(testSource(), WithOnQuit(func() { quitCalled = true }))

	tm := teatest.NewTestModel(
		t,
		tui.newModel(),
		teatest.WithInitialTermSize(80, 24),
	)

	// Wait for Init
	time.Sleep(50 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if fm == nil {
		t.Fatal("FinalModel returned nil")
	}
	if !quitCalled {
		t.Error("quit callback was not invoked on ctrl+c")
	}
}

// TestTUILifecycleSourceChange verifies that a change notification refetches
// the graph while the program is running.
func TestTUILifecycleSourceChange(t *testing.T) {
	changes := make(chan struct{}, 1)
	src := &lockedSource{src: testSource()}
	tui := newTestTUI(src, WithChanges(changes))

	tm := teatest.NewTestModel(
		t,
		tui.newModel(),
		teatest.WithInitialTermSize(80, 24),
	)

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("3 nodes"))
	}, teatest.WithDuration(3*time.Second))

	src.add("notes/focus.md", connections.Connection{
		TargetID: "notes/d.md#Delta", Score: 0.6, Kind: connections.KindBlock,
	})
	changes <- struct{}{}

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("4 nodes"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	close(changes)
}
