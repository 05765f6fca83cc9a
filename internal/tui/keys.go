package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every key binding of the graph view.
type keyMap struct {
	ThresholdUp   key.Binding
	ThresholdDown key.Binding
	Filter        key.Binding
	RepelUp       key.Binding
	RepelDown     key.Binding
	LinkUp        key.Binding
	LinkDown      key.Binding
	CenterMode    key.Binding
	SizeUp        key.Binding
	SizeDown      key.Binding
	ZoomIn        key.Binding
	ZoomOut       key.Binding
	PanUp         key.Binding
	PanDown       key.Binding
	PanLeft       key.Binding
	PanRight      key.Binding
	Pin           key.Binding
	Reset         key.Binding
	Refresh       key.Binding
	Focus         key.Binding
	Follow        key.Binding
	Clear         key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ThresholdUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "threshold")),
		ThresholdDown: key.NewBinding(key.WithKeys("-", "_")),
		Filter:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "kind filter")),
		RepelUp:       key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "repel")),
		RepelDown:     key.NewBinding(key.WithKeys("[")),
		LinkUp:        key.NewBinding(key.WithKeys("}"), key.WithHelp("{/}", "link force")),
		LinkDown:      key.NewBinding(key.WithKeys("{")),
		CenterMode:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "center mode")),
		SizeUp:        key.NewBinding(key.WithKeys("S"), key.WithHelp("s/S", "node size")),
		SizeDown:      key.NewBinding(key.WithKeys("s")),
		ZoomIn:        key.NewBinding(key.WithKeys("z"), key.WithHelp("z/Z", "zoom")),
		ZoomOut:       key.NewBinding(key.WithKeys("Z")),
		PanUp:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓←→", "pan")),
		PanDown:       key.NewBinding(key.WithKeys("down", "j")),
		PanLeft:       key.NewBinding(key.WithKeys("left", "h")),
		PanRight:      key.NewBinding(key.WithKeys("right", "l")),
		Pin:           key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin all")),
		Reset:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Refresh:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		Focus:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "focus")),
		Follow:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "follow selection")),
		Clear:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ThresholdUp, k.Filter, k.Pin, k.Reset, k.Focus, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ThresholdUp, k.Filter, k.Refresh, k.Focus, k.Follow},
		{k.RepelUp, k.LinkUp, k.CenterMode, k.SizeUp},
		{k.ZoomIn, k.PanUp, k.Pin, k.Clear},
		{k.Reset, k.Help, k.Quit},
	}
}
