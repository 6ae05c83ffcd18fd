package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/todo/internal/commands"
	"github.com/sandeepkv93/todo/internal/filter"
	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/notify"
	"github.com/sandeepkv93/todo/internal/order"
)

// Store is the slice of the task service the TUI drives.
type Store interface {
	List(ctx context.Context) ([]model.Task, error)
	Add(ctx context.Context, in commands.AddInput) (model.Task, error)
	Complete(ctx context.Context, id int) (model.Task, *model.Task, error)
	Reopen(ctx context.Context, id int) (model.Task, error)
	Delete(ctx context.Context, id int) error
	CheckReminders(ctx context.Context) ([]model.Reminder, error)
	Now() time.Time
}

type InputMode string

const (
	InputNone    InputMode = ""
	InputSearch  InputMode = "search"
	InputCommand InputMode = "command"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type Notification struct {
	At   time.Time
	Body string
}

type Config struct {
	CheckInterval time.Duration
	Notifier      notify.Notifier
}

const maxNotifications = 5

type Model struct {
	Tasks         []model.Task
	Visible       []model.Task
	Cursor        int
	Criteria      filter.Criteria
	SortKey       order.Key
	Mode          InputMode
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Quitting      bool
	LastError     error

	store         Store
	notifier      notify.Notifier
	checkInterval time.Duration
	keys          keyMap
	input         textinput.Model
	helpModel     help.Model
}

func NewModel(store Store, cfg Config) Model {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 30 * time.Second
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NoopNotifier{}
	}
	m := Model{
		SortKey:       order.KeyCreatedDate,
		store:         store,
		notifier:      cfg.Notifier,
		checkInterval: cfg.CheckInterval,
		keys:          defaultKeyMap(),
		input:         textinput.New(),
		helpModel:     help.New(),
	}
	m.input.CharLimit = 256
	m.input.Width = 48
	m.reload()
	return m
}

// Selected returns the task under the cursor.
func (m Model) Selected() (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return model.Task{}, false
	}
	return m.Visible[m.Cursor], true
}

func (m *Model) reload() {
	tasks, err := m.store.List(context.Background())
	if err != nil {
		m.setError(err)
		return
	}
	m.Tasks = tasks
	m.refresh()
}

// refresh reapplies the active criteria and sort key to Tasks.
func (m *Model) refresh() {
	now := m.store.Now()
	m.Visible = order.Sort(filter.Combine(m.Tasks, m.Criteria, now), m.SortKey)
	if m.Cursor >= len(m.Visible) {
		m.Cursor = len(m.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) setStatus(text string) {
	m.Status = StatusBar{Text: text}
}

func (m *Model) setError(err error) {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
}

func (m *Model) pushNotification(at time.Time, body string) {
	m.Notifications = append(m.Notifications, Notification{At: at, Body: body})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}
