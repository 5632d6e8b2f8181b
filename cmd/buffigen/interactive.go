package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/buffi"
	"github.com/wippyai/buffi/registry"
	"github.com/wippyai/buffi/rustdoc"
	"github.com/wippyai/buffi/signature"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entry struct {
	fn     signature.Function
	client string
}

type interactiveModel struct {
	err      error
	docFile  string
	cfg      buffi.Config
	ex       *buffi.Extraction
	entries  []entry
	filtered []int
	filter   textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

type loadedMsg struct {
	err error
	ex  *buffi.Extraction
}

func newInteractiveModel(docFile string, cfg buffi.Config) *interactiveModel {
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Prompt = "/ "
	filter.Width = 40
	return &interactiveModel{docFile: docFile, cfg: cfg, filter: filter}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	crate, err := rustdoc.LoadFile(m.docFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	ex, err := buffi.Extract(m.cfg, crate)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{ex: ex}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateBrowse && m.filter.Focused() {
				break
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.filtered)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateBrowse && !m.filter.Focused() {
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if m.filter.Focused() {
					m.filter.Blur()
				} else if len(m.filtered) > 0 {
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateBrowse
			}

		case "esc":
			switch {
			case m.state == stateDetail:
				m.state = stateBrowse
			case m.filter.Focused():
				m.filter.Blur()
			case m.filter.Value() != "":
				m.filter.SetValue("")
				m.applyFilter()
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ex = msg.ex
		m.entries = nil
		for _, fn := range m.ex.Signatures.Free {
			m.entries = append(m.entries, entry{fn: fn})
		}
		for _, c := range m.ex.Signatures.Clients {
			for _, fn := range c.Methods {
				m.entries = append(m.entries, entry{fn: fn, client: c.Name})
			}
		}
		m.applyFilter()
	}

	if m.state == stateBrowse && m.filter.Focused() {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.filtered = m.filtered[:0]
	for i, e := range m.entries {
		if needle == "" || strings.Contains(strings.ToLower(e.fn.Name), needle) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = 0
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.ex == nil {
		return "Loading doc index..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("BuFFI API Surface"))
	b.WriteString(" ")
	b.WriteString(m.docFile)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		if m.filter.Focused() || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		for pos, idx := range m.filtered {
			e := m.entries[idx]
			cursor := "  "
			line := m.formatEntry(e)
			if pos == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + line))
			} else {
				b.WriteString(cursor + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))

	case stateDetail:
		e := m.entries[m.filtered[m.selected]]
		fn := e.fn
		b.WriteString(funcStyle.Render(fn.Name))
		b.WriteString("\n\n")
		if fn.Docs != "" {
			b.WriteString(fn.Docs)
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("Class:       %s\n", fn.Class))
		if fn.Receiver != "" {
			b.WriteString(fmt.Sprintf("Receiver:    %s\n", typeStyle.Render(fn.Receiver)))
		}
		b.WriteString(fmt.Sprintf("Entry point: %s\n", fn.EntryPoint))
		b.WriteString(fmt.Sprintf("Carrier:     %s\n", typeStyle.Render(fn.ResultCarrier)))
		b.WriteString("\nParameters:\n")
		if len(fn.Params) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, p := range fn.Params {
			b.WriteString(fmt.Sprintf("  %s: %s\n", p.Name, typeStyle.Render(registry.WireName(p.Type))))
		}
		b.WriteString(fmt.Sprintf("\nReturns: %s\n", typeStyle.Render(registry.WireName(fn.Return))))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatEntry(e entry) string {
	var params []string
	for _, p := range e.fn.Params {
		params = append(params, p.Name+": "+typeStyle.Render(registry.WireName(p.Type)))
	}
	prefix := ""
	if e.client != "" {
		prefix = typeStyle.Render(e.client) + "."
	}
	marker := ""
	if e.fn.Class == signature.ClassAsyncClientMethod {
		marker = helpStyle.Render(" async")
	}
	return prefix + funcStyle.Render(e.fn.Name) + "(" + strings.Join(params, ", ") + ") -> " +
		typeStyle.Render(registry.WireName(e.fn.Return)) + marker
}

func runInteractive(docFile string, cfg buffi.Config) error {
	p := tea.NewProgram(newInteractiveModel(docFile, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
