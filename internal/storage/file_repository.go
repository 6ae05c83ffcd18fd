package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/todo/internal/model"
)

// FileRepository keeps the whole task list in one YAML document, rewritten
// atomically after every change.
type FileRepository struct {
	mu   sync.Mutex
	path string
	doc  fileDocument
}

type fileDocument struct {
	NextID    int            `yaml:"next_id"`
	Tasks     []fileTask     `yaml:"tasks"`
	Reminders []fileReminder `yaml:"reminders"`
}

type fileTask struct {
	ID             int        `yaml:"id"`
	Title          string     `yaml:"title"`
	Description    string     `yaml:"description,omitempty"`
	Status         string     `yaml:"status"`
	Priority       string     `yaml:"priority"`
	Tags           []string   `yaml:"tags,omitempty"`
	DueDate        *time.Time `yaml:"due_date,omitempty"`
	Recurrence     string     `yaml:"recurrence,omitempty"`
	ReminderOffset *float64   `yaml:"reminder_offset,omitempty"`
	CreatedDate    time.Time  `yaml:"created_date"`
}

type fileReminder struct {
	ID                  string    `yaml:"id"`
	TaskID              int       `yaml:"task_id"`
	ReminderTime        time.Time `yaml:"reminder_time"`
	Status              string    `yaml:"status"`
	NotificationMessage string    `yaml:"notification_message,omitempty"`
}

func OpenFile(path string) (*FileRepository, error) {
	repo := &FileRepository{path: path, doc: fileDocument{NextID: 1}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repo, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &repo.doc); err != nil {
		return nil, fmt.Errorf("decode task file %s: %w", path, err)
	}
	if repo.doc.NextID < 1 {
		repo.doc.NextID = 1
	}
	for _, t := range repo.doc.Tasks {
		if t.ID >= repo.doc.NextID {
			repo.doc.NextID = t.ID + 1
		}
	}
	return repo, nil
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) CreateTask(_ context.Context, in model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := in.Clone()
	out.ID = r.doc.NextID
	r.doc.NextID++
	r.doc.Tasks = append(r.doc.Tasks, toFileTask(out))
	if err := r.flush(); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (r *FileRepository) GetTask(_ context.Context, id int) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.taskIndex(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	return fromFileTask(r.doc.Tasks[i]), nil
}

func (r *FileRepository) UpdateTask(_ context.Context, in model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.taskIndex(in.ID)
	if i < 0 {
		return ErrNotFound
	}
	updated := toFileTask(in.Clone())
	updated.CreatedDate = r.doc.Tasks[i].CreatedDate
	r.doc.Tasks[i] = updated
	return r.flush()
}

func (r *FileRepository) DeleteTask(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.taskIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	r.doc.Tasks = slices.Delete(r.doc.Tasks, i, i+1)
	r.doc.Reminders = slices.DeleteFunc(r.doc.Reminders, func(rem fileReminder) bool { return rem.TaskID == id })
	return r.flush()
}

func (r *FileRepository) ListTasks(_ context.Context, filter TaskListFilter) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Task, 0, len(r.doc.Tasks))
	for _, t := range r.doc.Tasks {
		if filter.Status != "" && model.Status(t.Status) != filter.Status {
			continue
		}
		out = append(out, fromFileTask(t))
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *FileRepository) CreateReminder(_ context.Context, in model.Reminder) (model.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taskIndex(in.TaskID) < 0 {
		return model.Reminder{}, fmt.Errorf("insert reminder: task %d: %w", in.TaskID, ErrNotFound)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	r.doc.Reminders = append(r.doc.Reminders, toFileReminder(in))
	if err := r.flush(); err != nil {
		return model.Reminder{}, err
	}
	return in, nil
}

func (r *FileRepository) GetReminder(_ context.Context, id string) (model.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.reminderIndex(id)
	if i < 0 {
		return model.Reminder{}, ErrNotFound
	}
	return fromFileReminder(r.doc.Reminders[i]), nil
}

func (r *FileRepository) UpdateReminder(_ context.Context, in model.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.reminderIndex(in.ID)
	if i < 0 {
		return ErrNotFound
	}
	r.doc.Reminders[i] = toFileReminder(in)
	return r.flush()
}

func (r *FileRepository) DeleteReminder(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.reminderIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	r.doc.Reminders = slices.Delete(r.doc.Reminders, i, i+1)
	return r.flush()
}

func (r *FileRepository) DeleteRemindersForTask(_ context.Context, taskID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.doc.Reminders)
	r.doc.Reminders = slices.DeleteFunc(r.doc.Reminders, func(rem fileReminder) bool { return rem.TaskID == taskID })
	if len(r.doc.Reminders) == before {
		return nil
	}
	return r.flush()
}

func (r *FileRepository) ListReminders(_ context.Context, filter ReminderListFilter) ([]model.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Reminder, 0, len(r.doc.Reminders))
	for _, rem := range r.doc.Reminders {
		if filter.TaskID != 0 && rem.TaskID != filter.TaskID {
			continue
		}
		if filter.Status != "" && model.ReminderStatus(rem.Status) != filter.Status {
			continue
		}
		out = append(out, fromFileReminder(rem))
	}
	slices.SortStableFunc(out, func(a, b model.Reminder) int { return a.ReminderTime.Compare(b.ReminderTime) })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *FileRepository) taskIndex(id int) int {
	return slices.IndexFunc(r.doc.Tasks, func(t fileTask) bool { return t.ID == id })
}

func (r *FileRepository) reminderIndex(id string) int {
	return slices.IndexFunc(r.doc.Reminders, func(rem fileReminder) bool { return rem.ID == id })
}

func (r *FileRepository) flush() error {
	payload, err := yaml.Marshal(&r.doc)
	if err != nil {
		return fmt.Errorf("encode task file: %w", err)
	}
	dir := filepath.Dir(r.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func toFileTask(t model.Task) fileTask {
	return fileTask{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		Tags:           t.Tags,
		DueDate:        t.DueDate,
		Recurrence:     string(t.Recurrence),
		ReminderOffset: t.ReminderOffset,
		CreatedDate:    t.CreatedDate,
	}
}

func fromFileTask(t fileTask) model.Task {
	return model.Task{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         model.Status(t.Status),
		Priority:       model.Priority(t.Priority),
		Tags:           t.Tags,
		DueDate:        t.DueDate,
		Recurrence:     model.Recurrence(t.Recurrence),
		ReminderOffset: t.ReminderOffset,
		CreatedDate:    t.CreatedDate,
	}.Clone()
}

func toFileReminder(r model.Reminder) fileReminder {
	return fileReminder{
		ID:                  r.ID,
		TaskID:              r.TaskID,
		ReminderTime:        r.ReminderTime,
		Status:              string(r.Status),
		NotificationMessage: r.NotificationMessage,
	}
}

func fromFileReminder(r fileReminder) model.Reminder {
	return model.Reminder{
		ID:                  r.ID,
		TaskID:              r.TaskID,
		ReminderTime:        r.ReminderTime,
		Status:              model.ReminderStatus(r.Status),
		NotificationMessage: r.NotificationMessage,
	}
}
