package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/npratt/relgraph/internal/graph"
	"golang.org/x/term"
)

const (
	// simpleFrame and simpleMaxTicks bound the headless settle in runSimple.
	simpleFrame    = 16 * time.Millisecond
	simpleMaxTicks = 600
)

// isTerminal returns true if both stdout and stdin are TTYs.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTerminal reports whether the process is attached to an interactive
// terminal.
func IsTerminal() bool {
	return isTerminal()
}

// terminalSize returns the current terminal width and height.
// Returns 0, 0 if the terminal size cannot be determined.
func terminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0
	}
	return width, height
}

// runSimple provides a static rendering for non-interactive environments:
// it fetches once, runs the layout until it settles and prints the frame.
func (t *TUI) runSimple(ctx context.Context, now time.Time) error {
	cols, rows := terminalSize()
	if cols < minWidth || rows < minHeight {
		cols, rows = defaultCols, defaultRows
	}
	rows -= chromeRows

	v, canvas, _ := t.build(cols, rows)
	v.SetFocus(t.focus)

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Source.Timeout)
	defer cancel()
	if err := v.Refresh(ctx, now); err != nil {
		return fmt.Errorf("fetch connections for %s: %w", t.focus, err)
	}
	if err := v.Status().LastError; err != nil {
		return err
	}
	ticks := v.Simulation().Settle(now, simpleFrame, simpleMaxTicks)
	t.logger.Debug("layout settled", "ticks", ticks)

	st := v.Status()
	fmt.Fprintf(t.out, "%s  %s, %s, threshold %.2f, %s\n",
		graph.DisplayName(st.Focus),
		pluralize(st.Nodes, "node", "nodes"),
		pluralize(st.Edges, "edge", "edges"),
		st.Threshold,
		st.Filter)
	fmt.Fprintln(t.out, canvas.Render(cols, rows))
	return nil
}
