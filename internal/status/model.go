// Package status renders the connection state in the terminal.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leandrodaf/midilink/internal/controller"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	statusColors = map[contracts.ConnectionStatus]lipgloss.Color{
		contracts.Disconnected: lipgloss.Color("244"),
		contracts.Connecting:   lipgloss.Color("220"),
		contracts.Connected:    lipgloss.Color("42"),
		contracts.Error:        lipgloss.Color("196"),
	}
)

type stateMsg controller.State

type closedMsg struct{}

// Model is the bubbletea model of the status line.
type Model struct {
	updates  <-chan controller.State
	endpoint string
	state    controller.State
	quitting bool
}

// NewModel renders states from updates. endpoint is shown as-is.
func NewModel(updates <-chan controller.State, initial controller.State, endpoint string) Model {
	return Model{updates: updates, endpoint: endpoint, state: initial}
}

// ListenForUpdates waits for the next controller state.
func ListenForUpdates(updates <-chan controller.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg(st)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case stateMsg:
		m.state = controller.State(msg)
		return m, ListenForUpdates(m.updates)
	case closedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(Render(m.state))
	if m.endpoint != "" {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(m.endpoint))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

// Render formats one state as a single status line.
func Render(st controller.State) string {
	color, ok := statusColors[st.Status]
	if !ok {
		color = statusColors[contracts.Disconnected]
	}
	dot := lipgloss.NewStyle().Foreground(color).Render("●")
	name := lipgloss.NewStyle().Foreground(color).Bold(true).Render(string(st.Status))

	line := dot + " " + name
	if st.HasLatency {
		line += "  " + labelStyle.Render("ping") + " " + fmt.Sprintf("%d ms", st.Latency.Milliseconds())
	}
	if st.Reconnects > 0 {
		line += "  " + labelStyle.Render("reconnects") + " " + fmt.Sprint(st.Reconnects)
	}
	return line
}
