package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todo/internal/commands"
	"github.com/sandeepkv93/todo/internal/filter"
	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/order"
)

func (m Model) openInput(mode InputMode, prompt string) Model {
	m.Mode = mode
	m.input.Prompt = prompt
	m.input.SetValue("")
	m.input.Focus()
	return m
}

func (m Model) closeInput() Model {
	m.Mode = InputNone
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		mode := m.Mode
		m = m.closeInput()
		m.setStatus(fmt.Sprintf("%s cancelled", mode))
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.Mode
		m = m.closeInput()
		if mode == InputSearch {
			m = m.applySearch(value)
		} else {
			m = m.executePaletteCommand(value)
		}
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.input.SetValue(m.input.Value() + string(msg.Runes))
			return m
		case tea.KeySpace:
			m.input.SetValue(m.input.Value() + " ")
			return m
		}
		m.input, _ = m.input.Update(msg)
	}
	return m
}

func (m Model) applySearch(keyword string) Model {
	m.Criteria.Keyword = keyword
	m.Cursor = 0
	m.refresh()
	if keyword == "" {
		m.setStatus("search cleared")
		return m
	}
	m.setStatus(fmt.Sprintf("%d task(s) match %q", len(m.Visible), keyword))
	return m
}

func (m Model) executePaletteCommand(raw string) Model {
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.setError(err)
		return m
	}

	ctx := context.Background()
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.store.Add(ctx, commands.AddInput{Title: a.Title, Priority: a.Priority, Tags: a.Tags, DueDate: a.DueDate})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added #%d %s", task.ID, task.Title)}, nil
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			_, next, err := m.store.Complete(ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: completedMessage(a.ID, next)}, nil
		},
		Undo: func(a commands.TargetArgs) (commands.Result, error) {
			if _, err := m.store.Reopen(ctx, a.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("reopened #%d", a.ID)}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			if err := m.store.Delete(ctx, a.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted #%d", a.ID)}, nil
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			m.SortKey = a.Key
			return commands.Result{Message: "sorted by " + order.Description(a.Key)}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.Criteria.Keyword = a.Keyword
			return commands.Result{Message: fmt.Sprintf("searching %q", a.Keyword)}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			if a.Clear {
				m.Criteria = filter.Criteria{}
			} else {
				m.Criteria = a.Criteria
			}
			return commands.Result{Message: filter.Summary(m.Criteria)}, nil
		},
	})
	if err != nil {
		m.setError(err)
	} else {
		m.setStatus(res.Message)
	}
	m.reload()
	return m
}

func completedMessage(id int, next *model.Task) string {
	if next == nil {
		return fmt.Sprintf("completed #%d", id)
	}
	return fmt.Sprintf("completed #%d, next occurrence #%d", id, next.ID)
}
