// Package browse implements an interactive terminal browser over a single
// game's load order: navigate, toggle active state, reorder, and repair,
// all backed by an engine.Handle.
package browse

import (
	"fmt"

	"loadctl/internal/domain"
	"loadctl/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the bubbletea model for the load-order browser.
type Model struct {
	handle   *engine.Handle
	gameID   string
	names    []string
	selected int
	width    int
	height   int
	status   string
	err      error
}

// New builds a browser model over an already-open handle.
func New(gameID string, h *engine.Handle) Model {
	return Model{
		handle: h,
		gameID: gameID,
		names:  h.GetLoadOrder(),
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if len(m.names) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.names) - 1
			}
		}
		return m, nil

	case "down", "j":
		if len(m.names) > 0 {
			m.selected++
			if m.selected >= len(m.names) {
				m.selected = 0
			}
		}
		return m, nil

	case " ":
		return m.toggleActive()

	case "K":
		return m.move(m.selected - 1)

	case "J":
		return m.move(m.selected + 1)

	case "f":
		return m.fix()

	case "home", "g":
		m.selected = 0
		return m, nil

	case "end", "G":
		if len(m.names) > 0 {
			m.selected = len(m.names) - 1
		}
		return m, nil
	}

	return m, nil
}

func (m Model) toggleActive() (tea.Model, tea.Cmd) {
	if len(m.names) == 0 {
		return m, nil
	}
	name := m.names[m.selected]
	var code domain.ResultCode
	var err error
	if m.handle.IsActive(name) {
		code, err = m.handle.Deactivate(name)
	} else {
		code, err = m.handle.Activate(name)
	}
	return m.refresh(code, err, "toggled "+name)
}

func (m Model) move(to int) (tea.Model, tea.Cmd) {
	if len(m.names) == 0 || to < 0 || to >= len(m.names) {
		return m, nil
	}
	name := m.names[m.selected]
	code, err := m.handle.SetPosition(name, to)
	if err == nil {
		m.selected = to
	}
	return m.refresh(code, err, "moved "+name)
}

func (m Model) fix() (tea.Model, tea.Cmd) {
	code, err := m.handle.Fix()
	return m.refresh(code, err, "repaired load order")
}

func (m Model) refresh(code domain.ResultCode, err error, action string) (tea.Model, tea.Cmd) {
	m.err = err
	m.names = m.handle.GetLoadOrder()
	if m.selected >= len(m.names) {
		m.selected = len(m.names) - 1
	}
	if err == nil {
		if code.IsWarning() {
			m.status = fmt.Sprintf("%s (warning: %s)", action, code)
		} else {
			m.status = action
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("205")).Bold(true)
	itemStyle := lipgloss.NewStyle().PaddingLeft(2)
	inactiveStyle := lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("241"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)

	out := titleStyle.Render(fmt.Sprintf("loadctl browse - %s", m.gameID)) + "\n"
	out += infoStyle.Render(fmt.Sprintf("%d plugins", len(m.names))) + "\n\n"

	if len(m.names) == 0 {
		out += itemStyle.Render("No plugins found.") + "\n"
	}

	for i, name := range m.names {
		cursor := "  "
		style := itemStyle
		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		} else if !m.handle.IsActive(name) {
			style = inactiveStyle
		}
		status := "[ ]"
		if m.handle.IsActive(name) {
			status = "[✓]"
		}
		out += style.Render(fmt.Sprintf("%s%3d %s %s", cursor, i, status, name)) + "\n"
	}

	if m.err != nil {
		out += "\n" + errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	} else if m.status != "" {
		out += "\n" + infoStyle.Render(m.status) + "\n"
	}

	out += helpStyle.Render("up/down: navigate  space: toggle active  K/J: reorder  f: fix  q: quit")
	return out
}

// Run starts the browser as a full-screen terminal program.
func Run(gameID string, h *engine.Handle) error {
	p := tea.NewProgram(New(gameID, h), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
