package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/relgraph/internal/graph"
	"github.com/npratt/relgraph/internal/layout"
)

const (
	minWidth  = 40
	minHeight = 10
)

// View implements tea.Model. This renders the full TUI display.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	footer := m.renderFooter()
	rows := max(1, m.height-2-lipgloss.Height(footer))

	sections := []string{
		m.renderHeader(),
		m.canvas.Render(m.width, rows),
		m.renderStatus(),
		footer,
	}
	return strings.Join(sections, "\n")
}

// renderTooSmall renders a message when the terminal is too small.
func (m model) renderTooSmall() string {
	msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d", m.width, m.height, minWidth, minHeight)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

// renderHeader renders the focus document on the left and the graph
// settings on the right.
func (m model) renderHeader() string {
	st := m.view.Status()

	focus := styles.Focus.Render(graph.DisplayName(st.Focus))

	threshold := fmt.Sprintf("≥%.2f", st.Threshold)
	if st.PendingThreshold != nil {
		threshold = fmt.Sprintf("≥%.2f→%.2f", st.Threshold, *st.PendingThreshold)
	}
	parts := []string{
		pluralize(st.Nodes, "node", "nodes"),
		pluralize(st.Edges, "edge", "edges"),
		threshold,
		st.Filter,
		m.renderEnergy(st.Energy),
	}
	if st.PinnedAll {
		parts = append(parts, styles.Pinned.Render("pinned"))
	}
	info := styles.Info.Render(strings.Join(parts, " · "))

	gap := max(1, m.width-lipgloss.Width(focus)-lipgloss.Width(info))
	return focus + strings.Repeat(" ", gap) + info
}

func (m model) renderEnergy(s layout.State) string {
	switch s {
	case layout.Active:
		return styles.EnergyActive.Render(s.String())
	case layout.CoolingDown:
		return styles.EnergyCooling.Render(s.String())
	default:
		return styles.EnergyIdle.Render(s.String())
	}
}

// renderStatus renders the status row: the focus prompt, loading state,
// an error, or details about the node under the pointer.
func (m model) renderStatus() string {
	w := safeWidth(m.width)
	st := m.view.Status()

	switch {
	case m.prompt.IsOpen():
		return m.prompt.View()
	case m.loading:
		elapsed := time.Since(m.startedAt).Round(100 * time.Millisecond)
		return styles.Loading.Width(w).Render(m.spinner.View() + " Loading connections... (" + elapsed.String() + ")")
	case m.errorMsg != "":
		return styles.Error.Width(w).Render(truncate("Error: "+m.errorMsg, w))
	case m.view.Graph() == nil:
		return styles.Muted.Width(w).Render("No graph yet. Press R to refresh or / to pick a focus.")
	case st.Empty:
		return styles.Muted.Width(w).Render("No connections above the threshold.")
	}

	if id := m.nav.preview; id != "" && m.view.Graph().Node(id) != nil {
		return styles.Preview.Width(w).Render(truncate(graph.DisplayName(id)+"  "+id, w))
	}
	if sel := m.view.Graph().Selected(); len(sel) > 0 {
		return styles.Muted.Width(w).Render(pluralize(len(sel), "node selected", "nodes selected"))
	}
	return ""
}

// renderFooter renders the key help.
func (m model) renderFooter() string {
	return styles.Footer.Render(m.help.View(m.keys))
}

// safeWidth returns a width that is at least 1 to prevent negative values.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}

// truncate shortens s to maxLen runes, marking the cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
