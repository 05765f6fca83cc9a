package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// focusPrompt is the one-line input used to jump to another focus document.
type focusPrompt struct {
	input textarea.Model
	open  bool
}

// focusSubmittedMsg carries the key entered in the focus prompt.
type focusSubmittedMsg struct {
	key string
}

func newFocusPrompt() focusPrompt {
	ta := textarea.New()
	ta.Placeholder = "focus document key..."
	ta.SetHeight(1)
	ta.CharLimit = 512
	ta.ShowLineNumbers = false
	ta.Prompt = "/ "
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter submits
	return focusPrompt{input: ta}
}

// Open shows the prompt prefilled with the current focus.
func (p *focusPrompt) Open(current string, width int) tea.Cmd {
	p.open = true
	p.input.SetWidth(max(10, width))
	p.input.SetValue(current)
	p.input.CursorEnd()
	return p.input.Focus()
}

// Close hides the prompt and clears its input.
func (p *focusPrompt) Close() {
	p.open = false
	p.input.Blur()
	p.input.Reset()
}

// IsOpen reports whether the prompt is visible.
func (p focusPrompt) IsOpen() bool {
	return p.open
}

// Update handles keys while the prompt is open.
func (p focusPrompt) Update(msg tea.Msg) (focusPrompt, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			value := strings.TrimSpace(p.input.Value())
			p.Close()
			if value == "" {
				return p, nil
			}
			return p, func() tea.Msg { return focusSubmittedMsg{key: value} }
		case "esc":
			p.Close()
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View renders the prompt line.
func (p focusPrompt) View() string {
	return p.input.View()
}
