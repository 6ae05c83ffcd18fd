package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todo/internal/filter"
	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/order"
	"github.com/sandeepkv93/todo/internal/views"
)

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// ReminderTickMsg asks the model to fire any reminders that came due.
type ReminderTickMsg struct {
	At time.Time
}

func (m Model) Init() tea.Cmd {
	return m.reminderTick()
}

func (m Model) reminderTick() tea.Cmd {
	return tea.Tick(m.checkInterval, func(t time.Time) tea.Msg { return ReminderTickMsg{At: t} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Mode != InputNone {
			return m.handleInputKey(typed), nil
		}
		return m.handleKey(typed)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m.setError(typed.Err)
		}
		return m, nil
	case ReminderTickMsg:
		m = m.fireReminders()
		return m, m.reminderTick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.HelpVisible = !m.HelpVisible
	case key.Matches(msg, m.keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.Cursor < len(m.Visible)-1 {
			m.Cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		m = m.toggleSelected()
	case key.Matches(msg, m.keys.Sort):
		m.SortKey = m.SortKey.Next()
		m.refresh()
		m.setStatus("sorted by " + order.Description(m.SortKey))
	case key.Matches(msg, m.keys.Overdue):
		m.Criteria.OverdueOnly = !m.Criteria.OverdueOnly
		m = m.criteriaChanged()
	case key.Matches(msg, m.keys.Today):
		m.Criteria.DueTodayOnly = !m.Criteria.DueTodayOnly
		m = m.criteriaChanged()
	case key.Matches(msg, m.keys.Week):
		m.Criteria.DueThisWeekOnly = !m.Criteria.DueThisWeekOnly
		m = m.criteriaChanged()
	case key.Matches(msg, m.keys.Priority):
		m.Criteria.Priorities = nextPriorityFilter(m.Criteria.Priorities)
		m = m.criteriaChanged()
	case key.Matches(msg, m.keys.Search):
		m = m.openInput(InputSearch, "search> ")
	case key.Matches(msg, m.keys.Command):
		m = m.openInput(InputCommand, ":")
	case key.Matches(msg, m.keys.ClearFilter):
		m.Criteria = filter.Criteria{}
		m = m.criteriaChanged()
	}
	return m, nil
}

func (m Model) criteriaChanged() Model {
	m.Cursor = 0
	m.refresh()
	m.setStatus(filter.Summary(m.Criteria))
	return m
}

func (m Model) toggleSelected() Model {
	task, ok := m.Selected()
	if !ok {
		return m
	}
	ctx := context.Background()
	if task.IsComplete() {
		if _, err := m.store.Reopen(ctx, task.ID); err != nil {
			m.setError(err)
			return m
		}
		m.setStatus(fmt.Sprintf("reopened #%d", task.ID))
	} else {
		_, next, err := m.store.Complete(ctx, task.ID)
		if err != nil {
			m.setError(err)
			return m
		}
		m.setStatus(completedMessage(task.ID, next))
	}
	m.reload()
	return m
}

func (m Model) fireReminders() Model {
	fired, err := m.store.CheckReminders(context.Background())
	if err != nil {
		m.setError(err)
	}
	for _, rem := range fired {
		m.pushNotification(rem.ReminderTime, rem.NotificationMessage)
		if sendErr := m.notifier.Send("todo reminder", rem.NotificationMessage); sendErr != nil {
			m.setError(fmt.Errorf("desktop notification: %w", sendErr))
		}
	}
	if len(fired) > 0 {
		m.refresh()
	}
	return m
}

// nextPriorityFilter cycles none → HIGH → MEDIUM → LOW → none.
func nextPriorityFilter(current []model.Priority) []model.Priority {
	if len(current) != 1 {
		if current == nil {
			return []model.Priority{model.PriorityHigh}
		}
		return nil
	}
	switch current[0] {
	case model.PriorityHigh:
		return []model.Priority{model.PriorityMedium}
	case model.PriorityMedium:
		return []model.Priority{model.PriorityLow}
	default:
		return nil
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	inputLine := ""
	if m.Mode != InputNone {
		inputLine = m.input.View()
	}

	messages := make([]string, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		messages = append(messages, n.Body)
	}

	footer := m.renderHelpView()
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("todo | %d of %d tasks | sort: %s", len(m.Visible), len(m.Tasks), order.Description(m.SortKey)),
		Filters:      filter.Summary(m.Criteria),
		Body:         views.RenderList(m.Visible, m.store.Now(), m.Cursor),
		StatusLine:   status,
		Palette:      strings.TrimSpace(inputLine),
		Notification: views.RenderNotifications(messages),
		Footer:       footer,
	})
}
