package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mfdcache/pkg/config"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConfigListModel - Interactive configuration selection
// =============================================================================

// ConfigEntry is one selectable configuration.
type ConfigEntry struct {
	Module *config.Module
	Config *config.Node
}

// ConfigListModel is the bubbletea model for picking a configuration across
// every loaded module.
type ConfigListModel struct {
	Entries  []ConfigEntry
	Cursor   int
	Selected *ConfigEntry
	Height   int
	Offset   int
}

// NewConfigListModel lists every configuration of every module in order.
func NewConfigListModel(modules []*config.Module) ConfigListModel {
	var entries []ConfigEntry
	for _, m := range modules {
		for _, c := range m.Configurations {
			entries = append(entries, ConfigEntry{Module: m, Config: c})
		}
	}
	return ConfigListModel{Entries: entries, Height: 15}
}

func (m ConfigListModel) Init() tea.Cmd {
	return nil
}

func (m ConfigListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Entries) == 0 {
				return m, tea.Quit
			}
			e := m.Entries[m.Cursor]
			m.Selected = &e
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ConfigListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Configuration"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		enabled := "✓"
		if !e.Module.IsEnabled() || !e.Config.IsEnabled() {
			enabled = ""
		}
		size := "—"
		if e.Config.Width != nil && e.Config.Height != nil {
			size = fmt.Sprintf("%dx%d", *e.Config.Width, *e.Config.Height)
		}
		rows = append(rows, []string{cursor, e.Module.Title(), e.Config.Name, enabled, size,
			strconv.Itoa(len(switches(e.Config)))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Module", "Configuration", "Enabled", "Size", "Switches").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			e := m.Entries[idx]
			enabled := e.Module.IsEnabled() && e.Config.IsEnabled()
			switch {
			case idx == m.Cursor && enabled:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorDim).Bold(true)
			case enabled:
				return lipgloss.NewStyle()
			default:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// =============================================================================
// SwitchListModel - Interactive switch selection
// =============================================================================

// SwitchListModel is the bubbletea model for toggling the switch
// sub-configurations to render.
type SwitchListModel struct {
	Switches  []*config.Node
	Cursor    int
	Toggled   map[int]bool
	Confirmed bool
}

// NewSwitchListModel lists every switch below cfg in pre-order.
func NewSwitchListModel(cfg *config.Node) SwitchListModel {
	return SwitchListModel{Switches: switches(cfg), Toggled: make(map[int]bool)}
}

// Selection returns the names of the toggled switches in list order.
func (m SwitchListModel) Selection() []string {
	var names []string
	for i, s := range m.Switches {
		if m.Toggled[i] {
			names = append(names, s.Name)
		}
	}
	return names
}

func (m SwitchListModel) Init() tea.Cmd {
	return nil
}

func (m SwitchListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Switches)-1 {
				m.Cursor++
			}
		case " ", "x":
			if len(m.Switches) > 0 {
				m.Toggled[m.Cursor] = !m.Toggled[m.Cursor]
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SwitchListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Switches"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  space: toggle  enter: render  q: quit"))
	b.WriteString("\n\n")

	if len(m.Switches) == 0 {
		b.WriteString(listDimStyle.Render("  no switches, press enter to render"))
		b.WriteString("\n")
	}
	for i, s := range m.Switches {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		box := "[ ]"
		if m.Toggled[i] {
			box = StyleSuccess.Render("[x]")
		}
		depth := strings.Count(s.ReadableName(), ":") - 1
		if depth < 0 {
			depth = 0
		}
		line := fmt.Sprintf("%s%s %s%s", cursor, box, strings.Repeat("  ", depth), s.Name)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// switches returns every switch node below n in pre-order.
func switches(n *config.Node) []*config.Node {
	var out []*config.Node
	for _, d := range n.Descendants() {
		if d.IsSwitch() {
			out = append(out, d)
		}
	}
	return out
}

// pickConfiguration runs the interactive pickers. It returns nil when the
// user quits without choosing.
func pickConfiguration(modules []*config.Module) (*ConfigEntry, []string, error) {
	final, err := tea.NewProgram(NewConfigListModel(modules)).Run()
	if err != nil {
		return nil, nil, err
	}
	cm, ok := final.(ConfigListModel)
	if !ok || cm.Selected == nil {
		return nil, nil, nil
	}

	sm := NewSwitchListModel(cm.Selected.Config)
	if len(sm.Switches) == 0 {
		return cm.Selected, nil, nil
	}
	final, err = tea.NewProgram(sm).Run()
	if err != nil {
		return nil, nil, err
	}
	sm, ok = final.(SwitchListModel)
	if !ok || !sm.Confirmed {
		return nil, nil, nil
	}
	return cm.Selected, sm.Selection(), nil
}
