package model

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

var (
	ErrTitleRequired           = errors.New("model: task title is required")
	ErrInvalidStatus           = errors.New("model: invalid task status")
	ErrInvalidPriority         = errors.New("model: invalid task priority")
	ErrReminderRequiresDueDate = errors.New("model: reminder requires due date")
	ErrInvalidReminderOffset   = errors.New("model: invalid reminder offset")
	ErrCreatedDateRequired     = errors.New("model: task created_date is required")
)

// MaxReminderOffsetHours bounds offsets to what a time.Duration can hold.
const MaxReminderOffsetHours = float64(math.MaxInt64) / float64(time.Hour)

type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusIncomplete, StatusComplete:
		return true
	default:
		return false
	}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities by severity, HIGH first. Unknown values rank last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

// ParsePriorities keeps the recognised tokens in input order and drops the rest.
func ParsePriorities(tokens []string) []Priority {
	out := make([]Priority, 0, len(tokens))
	for _, tok := range tokens {
		p, err := ParsePriority(tok)
		if err != nil {
			continue
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

type TaskType string

const (
	TaskTypeScheduled TaskType = "scheduled"
	TaskTypeActivity  TaskType = "activity"
)

type Task struct {
	ID             int
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	Tags           []string
	DueDate        *time.Time
	Recurrence     Recurrence
	ReminderOffset *float64
	CreatedDate    time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.Recurrence)
	}
	if t.ReminderOffset != nil {
		if t.DueDate == nil {
			return ErrReminderRequiresDueDate
		}
		off := *t.ReminderOffset
		if !ValidReminderOffset(off) {
			return fmt.Errorf("%w: %v", ErrInvalidReminderOffset, off)
		}
	}
	if t.CreatedDate.IsZero() {
		return ErrCreatedDateRequired
	}
	return nil
}

// ValidReminderOffset reports whether off is a usable number of hours.
func ValidReminderOffset(off float64) bool {
	return off >= 0 && off < MaxReminderOffsetHours && !math.IsNaN(off)
}

// IsOverdue reports whether an incomplete task's due date is strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status != StatusIncomplete {
		return false
	}
	return t.DueDate.Before(now)
}

func (t Task) Type() TaskType {
	if t.DueDate != nil {
		return TaskTypeScheduled
	}
	return TaskTypeActivity
}

func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

func (t Task) IsComplete() bool {
	return t.Status == StatusComplete
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = slices.Clone(t.Tags)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.ReminderOffset != nil {
		off := *t.ReminderOffset
		out.ReminderOffset = &off
	}
	return out
}
