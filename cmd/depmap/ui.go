// # cmd/depmap/ui.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"depmap/internal/graph"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list        list.Model
	cycles      [][]string
	unresolved  []graph.UnresolvedDependency
	lastUpdate  time.Time
	moduleCount int
	edgeCount   int
}

type updateMsg struct {
	cycles      [][]string
	unresolved  []graph.UnresolvedDependency
	moduleCount int
	edgeCount   int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.cycles = msg.cycles
		m.unresolved = msg.unresolved
		m.moduleCount = msg.moduleCount
		m.edgeCount = msg.edgeCount
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, c := range m.cycles {
			items = append(items, item{
				title: "Dependency Cycle",
				desc:  strings.Join(c, " -> "),
			})
		}
		for _, u := range m.unresolved {
			items = append(items, item{
				title: "Unresolved Import",
				desc:  fmt.Sprintf("%q (%s) in %s", u.Raw, u.Kind, u.FromRelativePath),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d modules | %d edges",
		m.lastUpdate.Format("15:04:05"), m.moduleCount, m.edgeCount))

	var summary string
	if len(m.cycles) == 0 && len(m.unresolved) == 0 {
		summary = successStyle.Render("Graph Clean")
	} else {
		summary = fmt.Sprintf("%s | %s",
			cycleStyle.Render(fmt.Sprintf("%d Cycles", len(m.cycles))),
			unresolvedStyle.Render(fmt.Sprintf("%d Unresolved", len(m.unresolved))))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Dependency Map Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Detected Issues"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
