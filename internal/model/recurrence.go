package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRecurrence = errors.New("model: invalid recurrence pattern")

// Recurrence is the cadence at which a completed task produces its next
// instance. The zero value means the task does not recur.
type Recurrence string

const (
	RecurrenceNone     Recurrence = ""
	RecurrenceDaily    Recurrence = "DAILY"
	RecurrenceWeekly   Recurrence = "WEEKLY"
	RecurrenceBiweekly Recurrence = "BIWEEKLY"
	RecurrenceMonthly  Recurrence = "MONTHLY"
	RecurrenceYearly   Recurrence = "YEARLY"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	default:
		return false
	}
}

func (r Recurrence) IsSet() bool {
	return r != RecurrenceNone
}

func ParseRecurrence(raw string) (Recurrence, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" || trimmed == "NONE" {
		return RecurrenceNone, nil
	}
	r := Recurrence(trimmed)
	if !r.IsValid() {
		return RecurrenceNone, fmt.Errorf("%w: %q", ErrInvalidRecurrence, raw)
	}
	return r, nil
}

// Next returns the occurrence after from. The wall clock of from is kept.
// Month and year steps clamp to the last day of the target month, so a task
// due on Jan 31 recurs on Feb 28 (or 29) rather than spilling into March.
func (r Recurrence) Next(from time.Time) (time.Time, error) {
	switch r {
	case RecurrenceDaily:
		return from.AddDate(0, 0, 1), nil
	case RecurrenceWeekly:
		return from.AddDate(0, 0, 7), nil
	case RecurrenceBiweekly:
		return from.AddDate(0, 0, 14), nil
	case RecurrenceMonthly:
		return addMonthsClamped(from, 1), nil
	case RecurrenceYearly:
		return addMonthsClamped(from, 12), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurrence, r)
	}
}

func (r Recurrence) Preview(from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return []time.Time{}, nil
	}
	out := make([]time.Time, 0, count)
	cursor := from
	for i := 0; i < count; i++ {
		next, err := r.Next(cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}

func addMonthsClamped(from time.Time, months int) time.Time {
	y, m, d := from.Date()
	loc := from.Location()
	firstOfTarget := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, months, 0)
	ty, tm, _ := firstOfTarget.Date()
	if last := lastDayOfMonth(ty, tm, loc); d > last {
		d = last
	}
	return time.Date(ty, tm, d, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), loc)
}

func lastDayOfMonth(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}
