package commands

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/storage"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func setupService(t *testing.T, driver string) (*Service, storage.Repository, *fakeClock) {
	t.Helper()
	name := "todo.db"
	if driver == storage.DriverYAML {
		name = "todo.yaml"
	}
	repo, err := storage.Open(driver, filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	clock := &fakeClock{t: time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC)}
	return NewService(repo, nil, WithClock(clock.Now)), repo, clock
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

func TestServiceAddDefaultsAndValidation(t *testing.T) {
	svc, _, clock := setupService(t, storage.DriverSQLite)
	ctx := context.Background()

	task, err := svc.Add(ctx, AddInput{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.ID != 1 || task.Priority != model.PriorityMedium || task.Status != model.StatusIncomplete {
		t.Fatalf("unexpected defaults: %+v", task)
	}
	if !task.CreatedDate.Equal(clock.t) {
		t.Fatalf("created date should come from clock: %s", task.CreatedDate)
	}

	if _, err := svc.Add(ctx, AddInput{Title: "  "}); !errors.Is(err, model.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := svc.Add(ctx, AddInput{Title: "x", ReminderOffset: ptrFloat(1)}); !errors.Is(err, model.ErrReminderRequiresDueDate) {
		t.Fatalf("expected ErrReminderRequiresDueDate, got %v", err)
	}
}

func TestServiceReminderLifecycle(t *testing.T) {
	for _, driver := range []string{storage.DriverSQLite, storage.DriverYAML} {
		t.Run(driver, func(t *testing.T) {
			svc, repo, clock := setupService(t, driver)
			ctx := context.Background()
			due := time.Date(2025, 12, 10, 14, 0, 0, 0, time.UTC)

			task, err := svc.Add(ctx, AddInput{Title: "Team meeting", DueDate: &due, ReminderOffset: ptrFloat(1)})
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			rems, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
			if err != nil {
				t.Fatalf("list reminders: %v", err)
			}
			if len(rems) != 1 || !rems[0].ReminderTime.Equal(time.Date(2025, 12, 10, 13, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected reminders: %+v", rems)
			}

			fired, err := svc.CheckReminders(ctx)
			if err != nil {
				t.Fatalf("check early: %v", err)
			}
			if len(fired) != 0 {
				t.Fatalf("nothing should fire before 13:00: %+v", fired)
			}

			clock.t = time.Date(2025, 12, 10, 13, 5, 0, 0, time.UTC)
			fired, err = svc.CheckReminders(ctx)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if len(fired) != 1 || fired[0].Status != model.ReminderTriggered || fired[0].TaskID != task.ID {
				t.Fatalf("expected one fired reminder: %+v", fired)
			}

			again, err := svc.CheckReminders(ctx)
			if err != nil {
				t.Fatalf("second check: %v", err)
			}
			if len(again) != 0 {
				t.Fatalf("reminder must fire once: %+v", again)
			}
		})
	}
}

func TestServiceUpdateResyncsReminder(t *testing.T) {
	svc, repo, _ := setupService(t, storage.DriverSQLite)
	ctx := context.Background()
	due := time.Date(2025, 12, 10, 14, 0, 0, 0, time.UTC)

	task, err := svc.Add(ctx, AddInput{Title: "Dentist", DueDate: &due, ReminderOffset: ptrFloat(1)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	later := due.Add(24 * time.Hour)
	if _, err := svc.Update(ctx, task.ID, UpdateInput{DueDate: &later}); err != nil {
		t.Fatalf("update due: %v", err)
	}
	rems, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rems) != 1 || !rems[0].ReminderTime.Equal(later.Add(-time.Hour)) {
		t.Fatalf("reminder not moved: %+v", rems)
	}

	prio := model.PriorityHigh
	updated, err := svc.Update(ctx, task.ID, UpdateInput{Priority: &prio, ClearReminder: true})
	if err != nil {
		t.Fatalf("update clear reminder: %v", err)
	}
	if updated.ReminderOffset != nil || updated.Priority != model.PriorityHigh {
		t.Fatalf("unexpected update: %+v", updated)
	}
	rems, err = repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rems) != 0 {
		t.Fatalf("reminder should be dropped: %+v", rems)
	}

	if _, err := svc.Update(ctx, task.ID, UpdateInput{ClearDueDate: true, ReminderOffset: ptrFloat(2)}); !errors.Is(err, model.ErrReminderRequiresDueDate) {
		t.Fatalf("expected ErrReminderRequiresDueDate, got %v", err)
	}
	if _, err := svc.Update(ctx, 99, UpdateInput{Priority: &prio}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestServiceCompleteRecurring(t *testing.T) {
	svc, repo, _ := setupService(t, storage.DriverSQLite)
	ctx := context.Background()
	due := time.Date(2025, 1, 31, 9, 0, 0, 0, time.Local)

	task, err := svc.Add(ctx, AddInput{
		Title:          "Pay rent",
		Tags:           []string{"home"},
		DueDate:        &due,
		Recurrence:     model.RecurrenceMonthly,
		ReminderOffset: ptrFloat(24),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	done, next, err := svc.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.IsComplete() {
		t.Fatalf("task not completed: %+v", done)
	}
	if next == nil {
		t.Fatal("expected next occurrence")
	}
	wantDue := time.Date(2025, 2, 28, 9, 0, 0, 0, time.Local)
	if next.ID == task.ID || next.IsComplete() || next.DueDate == nil || !next.DueDate.Equal(wantDue) {
		t.Fatalf("unexpected next occurrence: %+v", next)
	}
	if next.Recurrence != model.RecurrenceMonthly || !next.HasTag("home") {
		t.Fatalf("next occurrence lost fields: %+v", next)
	}

	old, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
	if err != nil {
		t.Fatalf("list old: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("completed task keeps no reminders: %+v", old)
	}
	fresh, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: next.ID})
	if err != nil {
		t.Fatalf("list fresh: %v", err)
	}
	if len(fresh) != 1 || !fresh[0].IsPending() || !fresh[0].ReminderTime.Equal(wantDue.Add(-24*time.Hour)) {
		t.Fatalf("unexpected fresh reminder: %+v", fresh)
	}

	again, nextAgain, err := svc.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("complete twice: %v", err)
	}
	if !again.IsComplete() || nextAgain != nil {
		t.Fatal("completing a done task must not regenerate")
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}
}

func TestServiceCompleteRecurringWithoutDueDate(t *testing.T) {
	svc, _, clock := setupService(t, storage.DriverYAML)
	ctx := context.Background()

	task, err := svc.Add(ctx, AddInput{Title: "Stretch", Recurrence: model.RecurrenceDaily})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	_, next, err := svc.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if next == nil || next.DueDate == nil || !next.DueDate.Equal(clock.t.AddDate(0, 0, 1)) {
		t.Fatalf("expected next due one day after completion: %+v", next)
	}
}

func TestServiceReopenAndDelete(t *testing.T) {
	svc, repo, _ := setupService(t, storage.DriverSQLite)
	ctx := context.Background()
	due := time.Date(2025, 12, 12, 10, 0, 0, 0, time.UTC)

	task, err := svc.Add(ctx, AddInput{Title: "Report", DueDate: &due, ReminderOffset: ptrFloat(2)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := svc.Complete(ctx, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	reopened, err := svc.Reopen(ctx, task.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.IsComplete() {
		t.Fatal("expected incomplete after reopen")
	}
	rems, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID, Status: model.ReminderPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rems) != 1 {
		t.Fatalf("reopen should restore reminder: %+v", rems)
	}

	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestServiceTitleEditKeepsReminderState(t *testing.T) {
	for _, driver := range []string{storage.DriverSQLite, storage.DriverYAML} {
		t.Run(driver, func(t *testing.T) {
			svc, repo, clock := setupService(t, driver)
			ctx := context.Background()
			due := time.Date(2025, 12, 10, 14, 0, 0, 0, time.UTC)

			task, err := svc.Add(ctx, AddInput{Title: "Team meeting", DueDate: &due, ReminderOffset: ptrFloat(1)})
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			before, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
			if err != nil || len(before) != 1 {
				t.Fatalf("list reminders: %v %+v", err, before)
			}

			title := "Standup"
			if _, err := svc.Update(ctx, task.ID, UpdateInput{Title: &title}); err != nil {
				t.Fatalf("retitle pending: %v", err)
			}
			after, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
			if err != nil {
				t.Fatalf("list reminders: %v", err)
			}
			if len(after) != 1 || after[0].ID != before[0].ID || !after[0].IsPending() {
				t.Fatalf("title edit should keep the pending reminder: %+v", after)
			}
			if !strings.Contains(after[0].NotificationMessage, "Standup") {
				t.Fatalf("message not refreshed: %q", after[0].NotificationMessage)
			}

			clock.t = time.Date(2025, 12, 10, 13, 5, 0, 0, time.UTC)
			fired, err := svc.CheckReminders(ctx)
			if err != nil || len(fired) != 1 {
				t.Fatalf("expected one fired reminder: %v %+v", err, fired)
			}

			title = "Team sync"
			if _, err := svc.Update(ctx, task.ID, UpdateInput{Title: &title}); err != nil {
				t.Fatalf("retitle fired: %v", err)
			}
			again, err := svc.CheckReminders(ctx)
			if err != nil {
				t.Fatalf("check after retitle: %v", err)
			}
			if len(again) != 0 {
				t.Fatalf("title edit re-armed a fired reminder: %+v", again)
			}
			rems, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
			if err != nil {
				t.Fatalf("list reminders: %v", err)
			}
			if len(rems) != 1 || rems[0].Status != model.ReminderTriggered || !strings.Contains(rems[0].NotificationMessage, "Team sync") {
				t.Fatalf("expected triggered reminder with new title: %+v", rems)
			}

			later := due.Add(2 * time.Hour)
			if _, err := svc.Update(ctx, task.ID, UpdateInput{DueDate: &later}); err != nil {
				t.Fatalf("move due: %v", err)
			}
			rems, err = repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
			if err != nil {
				t.Fatalf("list reminders: %v", err)
			}
			if len(rems) != 1 || !rems[0].IsPending() || !rems[0].ReminderTime.Equal(later.Add(-time.Hour)) {
				t.Fatalf("new due date should schedule a fresh reminder: %+v", rems)
			}
		})
	}
}

func TestServiceReopenKeepsFiredReminderFired(t *testing.T) {
	svc, repo, clock := setupService(t, storage.DriverSQLite)
	ctx := context.Background()
	due := time.Date(2025, 12, 10, 14, 0, 0, 0, time.UTC)

	task, err := svc.Add(ctx, AddInput{Title: "Team meeting", DueDate: &due, ReminderOffset: ptrFloat(1)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	clock.t = time.Date(2025, 12, 10, 13, 5, 0, 0, time.UTC)
	if fired, err := svc.CheckReminders(ctx); err != nil || len(fired) != 1 {
		t.Fatalf("expected one fired reminder: %v %+v", err, fired)
	}
	if _, _, err := svc.Complete(ctx, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.Reopen(ctx, task.ID); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again, err := svc.CheckReminders(ctx)
	if err != nil {
		t.Fatalf("check after reopen: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("reopen re-armed a fired reminder: %+v", again)
	}
	pending, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID, Status: model.ReminderPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("no pending reminder expected for a past reminder time: %+v", pending)
	}
}

type failingReminderRepo struct {
	storage.Repository
	failCreate bool
}

func (r *failingReminderRepo) CreateReminder(ctx context.Context, in model.Reminder) (model.Reminder, error) {
	if r.failCreate {
		return model.Reminder{}, errors.New("disk full")
	}
	return r.Repository.CreateReminder(ctx, in)
}

func TestServiceRestoresTaskWhenReminderWriteFails(t *testing.T) {
	_, inner, clock := setupService(t, storage.DriverSQLite)
	repo := &failingReminderRepo{Repository: inner}
	svc := NewService(repo, nil, WithClock(clock.Now))
	ctx := context.Background()
	due := time.Date(2025, 12, 12, 10, 0, 0, 0, time.UTC)

	task, err := svc.Add(ctx, AddInput{Title: "Review", DueDate: &due, Recurrence: model.RecurrenceWeekly, ReminderOffset: ptrFloat(2)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	repo.failCreate = true

	later := due.Add(24 * time.Hour)
	if _, err := svc.Update(ctx, task.ID, UpdateInput{DueDate: &later}); err == nil {
		t.Fatal("expected reminder write failure")
	}
	stored, err := svc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.DueDate.Equal(due) {
		t.Fatalf("due date change should be rolled back: %s", stored.DueDate)
	}
	rems, err := repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rems) != 1 || !rems[0].ReminderTime.Equal(due.Add(-2*time.Hour)) {
		t.Fatalf("previous reminder should survive: %+v", rems)
	}

	if _, _, err := svc.Complete(ctx, task.ID); err == nil {
		t.Fatal("expected failure scheduling the next occurrence's reminder")
	}
	stored, err = svc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.IsComplete() {
		t.Fatal("completion should be rolled back")
	}
	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("next occurrence should be removed, got %d tasks", len(all))
	}
	rems, err = repo.ListReminders(ctx, storage.ReminderListFilter{TaskID: task.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rems) != 1 || !rems[0].IsPending() {
		t.Fatalf("reminder should survive a failed completion: %+v", rems)
	}

	if _, err := svc.Add(ctx, AddInput{Title: "Call", DueDate: &due, ReminderOffset: ptrFloat(1)}); err == nil {
		t.Fatal("expected add to fail")
	}
	all, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("failed add should not leave a task behind, got %d tasks", len(all))
	}
}
