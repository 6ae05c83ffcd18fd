package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/notify"
	"github.com/sandeepkv93/todo/internal/storage"
)

var ErrTaskNotFound = errors.New("commands: task not found")

// Service applies task mutations against a repository and keeps each task's
// reminder in step with its due date and offset.
type Service struct {
	repo   storage.Repository
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo storage.Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{repo: repo, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Now() time.Time { return s.now() }

type AddInput struct {
	Title          string
	Description    string
	Priority       model.Priority
	Tags           []string
	DueDate        *time.Time
	Recurrence     model.Recurrence
	ReminderOffset *float64
}

// UpdateInput carries partial edits. Nil fields are left alone; the Clear
// flags remove the optional due date or reminder.
type UpdateInput struct {
	Title          *string
	Description    *string
	Priority       *model.Priority
	Tags           *[]string
	DueDate        *time.Time
	ClearDueDate   bool
	Recurrence     *model.Recurrence
	ReminderOffset *float64
	ClearReminder  bool
}

func (u UpdateInput) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.Tags == nil &&
		u.DueDate == nil && !u.ClearDueDate && u.Recurrence == nil && u.ReminderOffset == nil && !u.ClearReminder
}

func (s *Service) Add(ctx context.Context, in AddInput) (model.Task, error) {
	task := model.Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         model.StatusIncomplete,
		Priority:       in.Priority,
		Tags:           in.Tags,
		DueDate:        in.DueDate,
		Recurrence:     in.Recurrence,
		ReminderOffset: in.ReminderOffset,
		CreatedDate:    s.now(),
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	if err := s.syncReminder(ctx, created); err != nil {
		if delErr := s.repo.DeleteTask(ctx, created.ID); delErr != nil {
			err = errors.Join(err, fmt.Errorf("remove task %d: %w", created.ID, delErr))
		}
		return model.Task{}, err
	}
	s.logger.Debug("task added", "id", created.ID, "title", created.Title, "priority", created.Priority)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int) (model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, notFound(id, err)
	}
	return task, nil
}

// List returns every task in creation order.
func (s *Service) List(ctx context.Context) ([]model.Task, error) {
	return s.repo.ListTasks(ctx, storage.TaskListFilter{})
}

func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (model.Task, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	next := current.Clone()
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.Priority != nil {
		next.Priority = *in.Priority
	}
	if in.Tags != nil {
		next.Tags = *in.Tags
	}
	if in.ClearDueDate {
		next.DueDate = nil
		next.ReminderOffset = nil
	} else if in.DueDate != nil {
		due := *in.DueDate
		next.DueDate = &due
	}
	if in.Recurrence != nil {
		next.Recurrence = *in.Recurrence
	}
	if in.ClearReminder {
		next.ReminderOffset = nil
	} else if in.ReminderOffset != nil {
		off := *in.ReminderOffset
		next.ReminderOffset = &off
	}
	if err := next.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, next); err != nil {
		return model.Task{}, notFound(id, err)
	}
	if err := s.reconcileReminder(ctx, current, next); err != nil {
		return model.Task{}, s.rollback(ctx, current, err)
	}
	s.logger.Debug("task updated", "id", id)
	return next, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return notFound(id, err)
	}
	s.logger.Debug("task deleted", "id", id)
	return nil
}

// Complete marks a task done and drops its reminder. For a recurring task it
// also creates the next instance, due one period after the current due date
// (or after now when the task had none), and returns it as next. A failure
// part way through restores the task as it was.
func (s *Service) Complete(ctx context.Context, id int) (done model.Task, next *model.Task, err error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return model.Task{}, nil, err
	}
	if original.IsComplete() {
		return original, nil, nil
	}
	task := original.Clone()
	task.Status = model.StatusComplete
	var instance model.Task
	if task.Recurrence.IsSet() {
		base := s.now()
		if task.DueDate != nil {
			base = *task.DueDate
		}
		nextDue, err := task.Recurrence.Next(base)
		if err != nil {
			return model.Task{}, nil, err
		}
		instance = task.Clone()
		instance.ID = 0
		instance.Status = model.StatusIncomplete
		instance.DueDate = &nextDue
		instance.CreatedDate = s.now()
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, nil, notFound(id, err)
	}
	var created *model.Task
	if task.Recurrence.IsSet() {
		stored, err := s.repo.CreateTask(ctx, instance)
		if err != nil {
			return model.Task{}, nil, s.rollback(ctx, original, fmt.Errorf("create next occurrence: %w", err))
		}
		created = &stored
		if err := s.syncReminder(ctx, stored); err != nil {
			return model.Task{}, nil, s.rollback(ctx, original, s.discard(ctx, created, err))
		}
	}
	if err := s.repo.DeleteRemindersForTask(ctx, id); err != nil {
		err = fmt.Errorf("drop reminders for task %d: %w", id, err)
		return model.Task{}, nil, s.rollback(ctx, original, s.discard(ctx, created, err))
	}
	s.logger.Info("task completed", "id", id, "title", task.Title)
	if created != nil {
		s.logger.Info("recurring task regenerated", "from", id, "id", created.ID, "due", created.DueDate.Format(notify.TimeLayout))
	}
	return task, created, nil
}

// discard removes a next occurrence created by a Complete that failed later.
func (s *Service) discard(ctx context.Context, created *model.Task, cause error) error {
	if created == nil {
		return cause
	}
	if err := s.repo.DeleteTask(ctx, created.ID); err != nil {
		return errors.Join(cause, fmt.Errorf("remove next occurrence %d: %w", created.ID, err))
	}
	return cause
}

// Reopen marks a task incomplete again. Its reminder comes back only when the
// reminder time is still ahead; one that already fired stays fired.
func (s *Service) Reopen(ctx context.Context, id int) (model.Task, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if !original.IsComplete() {
		return original, nil
	}
	task := original.Clone()
	task.Status = model.StatusIncomplete
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, notFound(id, err)
	}
	if err := s.restoreReminder(ctx, task); err != nil {
		return model.Task{}, s.rollback(ctx, original, err)
	}
	s.logger.Debug("task reopened", "id", id)
	return task, nil
}

// CheckReminders fires every pending reminder whose time has come. Each one
// is persisted as triggered, so a reminder is returned at most once.
func (s *Service) CheckReminders(ctx context.Context) ([]model.Reminder, error) {
	pending, err := s.repo.ListReminders(ctx, storage.ReminderListFilter{Status: model.ReminderPending})
	if err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	due := notify.Due(pending, s.now())
	fired := make([]model.Reminder, 0, len(due))
	for _, rem := range due {
		triggered, err := rem.MarkTriggered()
		if err != nil {
			continue
		}
		if err := s.repo.UpdateReminder(ctx, triggered); err != nil {
			return fired, fmt.Errorf("mark reminder %s triggered: %w", rem.ID, err)
		}
		s.logger.Info("reminder fired", "task", rem.TaskID, "message", rem.NotificationMessage)
		fired = append(fired, triggered)
	}
	return fired, nil
}

// reconcileReminder brings the stored reminder in line with an edit. A new
// reminder time replaces the reminder; otherwise the existing one keeps its
// status and only its message is refreshed.
func (s *Service) reconcileReminder(ctx context.Context, before, after model.Task) error {
	oldRem, hadOld := notify.ForTask(before)
	newRem, hasNew := notify.ForTask(after)
	if hadOld != hasNew || (hasNew && !oldRem.ReminderTime.Equal(newRem.ReminderTime)) {
		return s.syncReminder(ctx, after)
	}
	if !hasNew || oldRem.NotificationMessage == newRem.NotificationMessage {
		return nil
	}
	existing, err := s.repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: after.ID})
	if err != nil {
		return fmt.Errorf("list reminders for task %d: %w", after.ID, err)
	}
	for _, rem := range existing {
		rem.NotificationMessage = newRem.NotificationMessage
		if err := s.repo.UpdateReminder(ctx, rem); err != nil {
			return fmt.Errorf("update reminder %s: %w", rem.ID, err)
		}
	}
	return nil
}

// restoreReminder recreates a reopened task's reminder unless one already
// exists for the same time or that time has passed.
func (s *Service) restoreReminder(ctx context.Context, task model.Task) error {
	rem, ok := notify.ForTask(task)
	if !ok {
		return nil
	}
	existing, err := s.repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
	if err != nil {
		return fmt.Errorf("list reminders for task %d: %w", task.ID, err)
	}
	for _, old := range existing {
		if old.ReminderTime.Equal(rem.ReminderTime) {
			return nil
		}
	}
	if !rem.ReminderTime.After(s.now()) {
		return nil
	}
	return s.syncReminder(ctx, task)
}

// syncReminder replaces a task's reminders with the one its due date and
// offset call for. The new reminder is stored before the old ones go, so a
// failed insert leaves the previous reminders in place.
func (s *Service) syncReminder(ctx context.Context, task model.Task) error {
	existing, err := s.repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
	if err != nil {
		return fmt.Errorf("list reminders for task %d: %w", task.ID, err)
	}
	keep := ""
	if rem, ok := notify.ForTask(task); ok && !task.IsComplete() {
		created, err := s.repo.CreateReminder(ctx, rem)
		if err != nil {
			return fmt.Errorf("schedule reminder for task %d: %w", task.ID, err)
		}
		keep = created.ID
		s.logger.Debug("reminder scheduled", "task", task.ID, "at", rem.ReminderTime.Format(notify.TimeLayout))
	}
	for _, old := range existing {
		if old.ID == keep {
			continue
		}
		if err := s.repo.DeleteReminder(ctx, old.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("drop reminder %s: %w", old.ID, err)
		}
	}
	return nil
}

// rollback writes the task back as it was before a failed operation.
func (s *Service) rollback(ctx context.Context, original model.Task, cause error) error {
	if err := s.repo.UpdateTask(ctx, original); err != nil {
		return errors.Join(cause, fmt.Errorf("restore task %d: %w", original.ID, err))
	}
	s.logger.Warn("task change rolled back", "id", original.ID, "err", cause)
	return cause
}

func notFound(id int, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return err
}
