package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/relgraph/internal/connections"
	"github.com/npratt/relgraph/internal/view"
)

// Screen layout: one header row, the canvas, one status row, the help row.
const (
	canvasTop   = 1
	chromeRows  = 3
	defaultCols = 80
	defaultRows = 24
)

// navigator records pointer navigation requests from the highlight
// controller so Update can act on them after the event is handled.
type navigator struct {
	opened  string
	preview string
	onOpen  func(id string)
}

func (n *navigator) Open(id string) {
	n.opened = id
	if n.onOpen != nil {
		n.onOpen(id)
	}
}

func (n *navigator) Preview(id string) {
	n.preview = id
}

// mouseState tracks the gesture in progress.
type mouseState struct {
	down     bool
	node     string // Node pressed, for drag and click
	boxing   bool
	panning  bool
	moved    bool
	additive bool
	lastCol  int
	lastRow  int
}

// model is the bubbletea model for the graph view.
type model struct {
	view    *view.View
	canvas  *Canvas
	nav     *navigator
	source  connections.Source
	changes <-chan struct{}
	timeout time.Duration
	logger  *slog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	prompt  focusPrompt

	// Fetch state
	initial   view.Ticket
	loading   bool
	startedAt time.Time
	errorMsg  string

	// UI state
	width  int
	height int
	mouse  *mouseState

	onQuit func()
}

// modelOptions collects what newModel needs.
type modelOptions struct {
	View    *view.View
	Canvas  *Canvas
	Nav     *navigator
	Source  connections.Source
	Focus   string
	Changes <-chan struct{}
	Timeout time.Duration
	Logger  *slog.Logger
	OnQuit  func()
}

func newModel(o modelOptions) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	m := model{
		view:    o.View,
		canvas:  o.Canvas,
		nav:     o.Nav,
		source:  o.Source,
		changes: o.Changes,
		timeout: timeout,
		logger:  logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		prompt:  newFocusPrompt(),
		mouse:   &mouseState{},
		onQuit:  o.OnQuit,
		width:   defaultCols,
		height:  defaultRows,
	}
	m.initial = m.view.SetFocus(o.Focus)
	m.loading = true
	m.startedAt = time.Now()
	return m
}

// canvasRows returns the number of rows available to the graph.
func (m model) canvasRows() int {
	return max(1, m.height-chromeRows)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchCmd(m.initial),
		doFrame(),
		waitForChange(m.changes),
	)
}

// Update, handleKey, handleMouse are implemented in update.go
// View is implemented in view.go
