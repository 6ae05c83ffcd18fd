package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidReminderStatus    = errors.New("model: invalid reminder status")
	ErrReminderAlreadyTriggered = errors.New("model: reminder already triggered")
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderTriggered ReminderStatus = "triggered"
)

func (s ReminderStatus) IsValid() bool {
	switch s {
	case ReminderPending, ReminderTriggered:
		return true
	default:
		return false
	}
}

// Reminder is the single notification derived from a task's due date and
// reminder offset. It moves from pending to triggered once and stays there.
type Reminder struct {
	ID                  string
	TaskID              int
	ReminderTime        time.Time
	Status              ReminderStatus
	NotificationMessage string
}

func (r Reminder) Validate() error {
	if r.TaskID <= 0 {
		return errors.New("model: reminder task_id is required")
	}
	if r.ReminderTime.IsZero() {
		return errors.New("model: reminder reminder_time is required")
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReminderStatus, r.Status)
	}
	return nil
}

func (r Reminder) IsPending() bool {
	return r.Status == ReminderPending
}

func (r Reminder) MarkTriggered() (Reminder, error) {
	if r.Status == ReminderTriggered {
		return r, ErrReminderAlreadyTriggered
	}
	r.Status = ReminderTriggered
	return r, nil
}
