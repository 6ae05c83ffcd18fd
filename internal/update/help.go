package update

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Sort        key.Binding
	Overdue     key.Binding
	Today       key.Binding
	Week        key.Binding
	Priority    key.Binding
	Search      key.Binding
	Command     key.Binding
	ClearFilter key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Toggle:      key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "toggle done")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Overdue:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overdue")),
		Today:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "due today")),
		Week:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "due this week")),
		Priority:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Command:     key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		ClearFilter: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filters")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Sort, k.Search, k.Command, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Sort, k.Priority, k.Overdue, k.Today, k.Week},
		{k.Search, k.Command, k.ClearFilter},
		{k.Help, k.Quit},
	}
}

func (m Model) renderHelpView() string {
	m.helpModel.ShowAll = m.HelpVisible
	return m.helpModel.View(m.keys)
}
