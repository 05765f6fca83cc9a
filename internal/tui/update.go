package tui

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/npratt/relgraph/internal/config"
	"github.com/npratt/relgraph/internal/connections"
	"github.com/npratt/relgraph/internal/render"
	"github.com/npratt/relgraph/internal/view"
)

const (
	// frameInterval is the delay between simulation frames.
	frameInterval = 33 * time.Millisecond
	// zoomStep is the zoom factor applied per key press or wheel notch.
	zoomStep = 1.25
	minZoom  = 0.1
	maxZoom  = 8
	// panCells is how far one pan key press moves the view.
	panCells = 4

	thresholdStep = 0.05
	repelStep     = 50
	linkStep      = 0.05
)

// frameMsg drives the simulation.
type frameMsg time.Time

// fetchResultMsg carries the connections fetched for a ticket.
type fetchResultMsg struct {
	ticket view.Ticket
	conns  []connections.Connection
	err    error
}

// sourceChangedMsg signals that the connection source changed on disk.
type sourceChangedMsg struct{}

// doFrame schedules the next simulation frame.
func doFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// waitForChange waits for the next source change notification. A nil or
// closed channel yields no further messages.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sourceChangedMsg{}
	}
}

// fetchCmd fetches connections for a ticket in the background.
func (m model) fetchCmd(t view.Ticket) tea.Cmd {
	src := m.source
	timeout := m.timeout
	return func() tea.Msg {
		if src == nil {
			return fetchResultMsg{ticket: t}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		conns, err := src.Connections(ctx, t.Focus)
		return fetchResultMsg{ticket: t, conns: conns, err: err}
	}
}

// startFetch marks the model as loading and fetches for t.
func (m *model) startFetch(t view.Ticket) tea.Cmd {
	m.loading = true
	m.startedAt = time.Now()
	return tea.Batch(m.spinner.Tick, m.fetchCmd(t))
}

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt.IsOpen() {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.view.SetCanvas(World(m.width, m.canvasRows()), time.Now())
		return m, nil

	case frameMsg:
		m.view.Frame(time.Time(msg))
		return m, doFrame()

	case fetchResultMsg:
		if !m.view.Apply(msg.ticket, msg.conns, msg.err, time.Now()) {
			return m, nil
		}
		m.loading = false
		m.errorMsg = ""
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
		} else if err := m.view.Status().LastError; err != nil {
			m.errorMsg = err.Error()
		}
		return m, nil

	case focusSubmittedMsg:
		cmd := m.startFetch(m.view.SetFocus(msg.key))
		return m, cmd

	case sourceChangedMsg:
		m.logger.Info("connection source changed, refreshing", "focus", m.view.Focus())
		cmd := m.startFetch(m.view.Request())
		return m, tea.Batch(cmd, waitForChange(m.changes))

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		if m.prompt.IsOpen() {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// handleKey processes keyboard input and returns the updated model and command.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	cfg := m.view.Config()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.ThresholdUp):
		m.view.SetThreshold(m.view.Threshold()+thresholdStep, now)

	case key.Matches(msg, m.keys.ThresholdDown):
		m.view.SetThreshold(m.view.Threshold()-thresholdStep, now)

	case key.Matches(msg, m.keys.Filter):
		m.setError(m.view.SetFilter(nextFilter(cfg.Graph.ConnectionKindFilter), now))

	case key.Matches(msg, m.keys.RepelUp, m.keys.RepelDown):
		f := cfg.Forces
		if key.Matches(msg, m.keys.RepelUp) {
			f.RepelForce += repelStep
		} else {
			f.RepelForce = math.Max(0, f.RepelForce-repelStep)
		}
		m.setError(m.view.SetForces(f, now))

	case key.Matches(msg, m.keys.LinkUp, m.keys.LinkDown):
		f := cfg.Forces
		if key.Matches(msg, m.keys.LinkUp) {
			f.LinkForce = math.Min(1, f.LinkForce+linkStep)
		} else {
			f.LinkForce = math.Max(0, f.LinkForce-linkStep)
		}
		m.setError(m.view.SetForces(f, now))

	case key.Matches(msg, m.keys.CenterMode):
		f := cfg.Forces
		if f.CenterMode == config.CenterPrimary {
			f.CenterMode = config.CenterAll
		} else {
			f.CenterMode = config.CenterPrimary
		}
		m.setError(m.view.SetForces(f, now))

	case key.Matches(msg, m.keys.SizeUp, m.keys.SizeDown):
		d := cfg.Display
		if key.Matches(msg, m.keys.SizeUp) {
			d.NodeSize++
		} else if d.NodeSize > 1 {
			d.NodeSize--
		}
		m.setError(m.view.SetDisplay(d, now))

	case key.Matches(msg, m.keys.ZoomIn, m.keys.ZoomOut):
		factor := zoomStep
		if key.Matches(msg, m.keys.ZoomOut) {
			factor = 1 / zoomStep
		}
		sx, sy := cellToScreen(m.width/2, m.canvasRows()/2)
		m.view.SetTransform(m.view.Transform().ZoomAt(factor, sx, sy, minZoom, maxZoom))

	case key.Matches(msg, m.keys.PanUp):
		m.pan(0, panCells)
	case key.Matches(msg, m.keys.PanDown):
		m.pan(0, -panCells)
	case key.Matches(msg, m.keys.PanLeft):
		m.pan(panCells, 0)
	case key.Matches(msg, m.keys.PanRight):
		m.pan(-panCells, 0)

	case key.Matches(msg, m.keys.Pin):
		m.view.PinAll(!m.view.Simulation().PinnedAll(), now)

	case key.Matches(msg, m.keys.Reset):
		m.view.Reset(now)
		m.view.SetTransform(render.Identity)

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.startFetch(m.view.Request())
		return m, cmd

	case key.Matches(msg, m.keys.Focus):
		cmd := m.prompt.Open(m.view.Focus(), m.width-4)
		return m, cmd

	case key.Matches(msg, m.keys.Follow):
		if id := m.followTarget(); id != "" {
			cmd := m.startFetch(m.view.SetFocus(id))
			return m, cmd
		}

	case key.Matches(msg, m.keys.Clear):
		if m.errorMsg != "" {
			m.errorMsg = ""
		} else {
			m.view.Highlight().ClickCanvas(false)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// followTarget picks the node to refocus on: the single selected node, or
// the hovered one.
func (m model) followTarget() string {
	g := m.view.Graph()
	if g == nil {
		return ""
	}
	if sel := g.Selected(); len(sel) == 1 && sel[0] != g.PrimaryID {
		return sel[0]
	}
	if h := m.view.Highlight().Hovered(); h != "" {
		return h
	}
	return ""
}

func (m *model) setError(err error) {
	if err != nil {
		m.errorMsg = err.Error()
	}
}

// pan shifts the view by a number of cells.
func (m *model) pan(cols, rows int) {
	m.view.SetTransform(m.view.Transform().Pan(float64(cols*cellWidth), float64(rows*cellHeight)))
}

// handleMouse turns pointer events into hover, selection, drag, box select,
// pan and zoom.
func (m *model) handleMouse(msg tea.MouseMsg) {
	now := time.Now()
	col, row := msg.X, msg.Y-canvasTop
	wx, wy := m.canvas.CellToWorld(col, row)
	tolerance := cellWidth / m.view.Transform().K
	ms := m.mouse
	ctrl := m.view.Highlight()

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		factor := zoomStep
		if msg.Button == tea.MouseButtonWheelDown {
			factor = 1 / zoomStep
		}
		sx, sy := cellToScreen(col, row)
		m.view.SetTransform(m.view.Transform().ZoomAt(factor, sx, sy, minZoom, maxZoom))

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		*ms = mouseState{down: true, additive: msg.Shift, lastCol: col, lastRow: row}
		switch id := m.view.NodeAt(wx, wy, tolerance); {
		case msg.Ctrl:
			ms.boxing = true
			ctrl.BoxStart(wx, wy, msg.Shift)
		case id != "":
			ms.node = id
			m.view.Simulation().DragStart(id, now)
		default:
			ms.panning = true
		}

	case msg.Action == tea.MouseActionMotion && ms.down:
		if col == ms.lastCol && row == ms.lastRow {
			return
		}
		switch {
		case ms.boxing:
			ctrl.BoxMove(wx, wy)
			if r, ok := ctrl.Box(); ok {
				m.canvas.SetBox(&r)
			}
		case ms.node != "":
			m.view.Simulation().DragMove(ms.node, wx, wy, now)
		case ms.panning:
			m.pan(col-ms.lastCol, row-ms.lastRow)
		}
		ms.moved = true
		ms.lastCol, ms.lastRow = col, row

	case msg.Action == tea.MouseActionMotion:
		id := m.view.NodeAt(wx, wy, tolerance)
		if hovered := ctrl.Hovered(); id != hovered {
			if hovered != "" {
				ctrl.Leave(hovered)
			}
			if id != "" {
				ctrl.Enter(id)
			}
		}

	case msg.Action == tea.MouseActionRelease && ms.down:
		switch {
		case ms.boxing:
			ctrl.BoxEnd()
			m.canvas.SetBox(nil)
		case ms.node != "":
			m.view.Simulation().DragEnd(ms.node, now)
			if !ms.moved {
				ctrl.Click(ms.node, ms.additive)
			}
		case !ms.moved:
			ctrl.ClickCanvas(ms.additive)
		}
		*ms = mouseState{}
	}
}

func nextFilter(current string) string {
	switch current {
	case config.KindBlock:
		return config.KindNote
	case config.KindNote:
		return config.KindBoth
	default:
		return config.KindBlock
	}
}
