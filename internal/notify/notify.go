// Package notify derives reminder times from due dates and decides when a
// pending reminder should fire. It holds no state and never reads the clock.
package notify

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
)

const TimeLayout = "2006-01-02 15:04"

// CalculateReminderTime returns due minus offsetHours. Fractional hours are
// honoured; the result may lie in the past, which means "fire on next check".
func CalculateReminderTime(due time.Time, offsetHours float64) time.Time {
	return due.Add(-time.Duration(offsetHours * float64(time.Hour)))
}

// ShouldTrigger is true for a pending reminder whose time is at or before now.
func ShouldTrigger(r model.Reminder, now time.Time) bool {
	return r.Status == model.ReminderPending && !r.ReminderTime.After(now)
}

// Due returns the reminders that should fire at now, in input order.
func Due(reminders []model.Reminder, now time.Time) []model.Reminder {
	out := make([]model.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if ShouldTrigger(r, now) {
			out = append(out, r)
		}
	}
	return out
}

func FormatNotificationMessage(task model.Task) string {
	if task.DueDate == nil {
		return fmt.Sprintf("Reminder: %s", task.Title)
	}
	return fmt.Sprintf("Reminder: %s is due at %s", task.Title, task.DueDate.Format(TimeLayout))
}

// ForTask builds the pending reminder for a task that has both a due date and
// a reminder offset. ok is false otherwise.
func ForTask(task model.Task) (model.Reminder, bool) {
	if task.DueDate == nil || task.ReminderOffset == nil {
		return model.Reminder{}, false
	}
	return model.Reminder{
		TaskID:              task.ID,
		ReminderTime:        CalculateReminderTime(*task.DueDate, *task.ReminderOffset),
		Status:              model.ReminderPending,
		NotificationMessage: FormatNotificationMessage(task),
	}, true
}
