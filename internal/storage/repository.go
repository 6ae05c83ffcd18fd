package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/todo/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

const (
	DriverSQLite = "sqlite"
	DriverYAML   = "yaml"
)

// Repository persists tasks and their reminders. Task IDs are assigned on
// create; ListTasks returns tasks in creation order.
type Repository interface {
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	GetTask(ctx context.Context, id int) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id int) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)

	CreateReminder(ctx context.Context, in model.Reminder) (model.Reminder, error)
	GetReminder(ctx context.Context, id string) (model.Reminder, error)
	UpdateReminder(ctx context.Context, in model.Reminder) error
	DeleteReminder(ctx context.Context, id string) error
	DeleteRemindersForTask(ctx context.Context, taskID int) error
	ListReminders(ctx context.Context, filter ReminderListFilter) ([]model.Reminder, error)

	Close() error
}

type TaskListFilter struct {
	Status model.Status
	Limit  int
	Offset int
}

type ReminderListFilter struct {
	TaskID int
	Status model.ReminderStatus
	Limit  int
	Offset int
}

// Open returns a migrated repository for the given driver.
func Open(driver, path string) (Repository, error) {
	switch driver {
	case DriverSQLite, "":
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		repo, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		if err := MigrateUp(repo.db); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil
	case DriverYAML:
		return OpenFile(path)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

func ensureDir(path string) error {
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
