package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
)

func TestCalculateReminderTime(t *testing.T) {
	due := time.Date(2025, 12, 10, 14, 0, 0, 0, time.UTC)
	cases := []struct {
		offset float64
		want   time.Time
	}{
		{1.0, time.Date(2025, 12, 10, 13, 0, 0, 0, time.UTC)},
		{24.0, time.Date(2025, 12, 9, 14, 0, 0, 0, time.UTC)},
		{2.5, time.Date(2025, 12, 10, 11, 30, 0, 0, time.UTC)},
		{0, due},
	}
	for _, tc := range cases {
		if got := CalculateReminderTime(due, tc.offset); !got.Equal(tc.want) {
			t.Fatalf("offset %v: got %s want %s", tc.offset, got, tc.want)
		}
	}
}

func TestShouldTrigger(t *testing.T) {
	now := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)
	rem := model.Reminder{
		TaskID:              1,
		ReminderTime:        now.Add(-5 * time.Minute),
		Status:              model.ReminderPending,
		NotificationMessage: "Test",
	}
	if !ShouldTrigger(rem, now) {
		t.Fatal("expected past pending reminder to trigger")
	}
	if !ShouldTrigger(rem, now) {
		t.Fatal("repeated check must give the same answer")
	}

	fired := rem
	fired.Status = model.ReminderTriggered
	if ShouldTrigger(fired, now) {
		t.Fatal("triggered reminder must not trigger again")
	}

	future := rem
	future.ReminderTime = now.Add(5 * time.Minute)
	if ShouldTrigger(future, now) {
		t.Fatal("future reminder must not trigger")
	}

	exact := rem
	exact.ReminderTime = now
	if !ShouldTrigger(exact, now) {
		t.Fatal("reminder at exactly now should trigger")
	}
}

func TestDue(t *testing.T) {
	now := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)
	rems := []model.Reminder{
		{ID: "a", TaskID: 1, ReminderTime: now.Add(-time.Hour), Status: model.ReminderPending},
		{ID: "b", TaskID: 2, ReminderTime: now.Add(time.Hour), Status: model.ReminderPending},
		{ID: "c", TaskID: 3, ReminderTime: now.Add(-time.Hour), Status: model.ReminderTriggered},
		{ID: "d", TaskID: 4, ReminderTime: now, Status: model.ReminderPending},
	}
	got := Due(rems, now)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "d" {
		t.Fatalf("unexpected due reminders: %+v", got)
	}
}

func TestFormatNotificationMessage(t *testing.T) {
	d := time.Date(2025, 12, 10, 14, 0, 0, 0, time.UTC)
	msg := FormatNotificationMessage(model.Task{ID: 1, Title: "Team meeting", DueDate: &d})
	if !strings.Contains(msg, "Team meeting") || !strings.Contains(msg, "2025-12-10 14:00") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestForTask(t *testing.T) {
	d := time.Date(2025, 12, 10, 14, 0, 0, 0, time.UTC)
	off := 1.0
	task := model.Task{ID: 7, Title: "Dentist", DueDate: &d, ReminderOffset: &off}

	rem, ok := ForTask(task)
	if !ok {
		t.Fatal("expected reminder for task with due date and offset")
	}
	if rem.TaskID != 7 || rem.Status != model.ReminderPending {
		t.Fatalf("unexpected reminder: %+v", rem)
	}
	if !rem.ReminderTime.Equal(time.Date(2025, 12, 10, 13, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reminder time: %s", rem.ReminderTime)
	}

	task.ReminderOffset = nil
	if _, ok := ForTask(task); ok {
		t.Fatal("due date without offset must not produce a reminder")
	}
}

func TestNewNotifier(t *testing.T) {
	if _, ok := NewNotifier(false).(NoopNotifier); !ok {
		t.Fatal("expected noop notifier when desktop is off")
	}
	if _, ok := NewNotifier(true).(DesktopNotifier); !ok {
		t.Fatal("expected desktop notifier when enabled")
	}
	if err := (NoopNotifier{}).Send("t", "b"); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}

func TestEscapeAppleScript(t *testing.T) {
	got := escapeAppleScript(`say "hi" \ bye`)
	if got != `say \"hi\" \\ bye` {
		t.Fatalf("unexpected escape: %q", got)
	}
}
