// Package filter narrows task lists by status, priority, tag, due-date
// windows and keyword. Every function returns a fresh slice holding the
// matching tasks in their input order; the input is never modified.
package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
)

// Week is the length of the rolling due-this-week window.
const Week = 7 * 24 * time.Hour

type Predicate func(model.Task) bool

// Keep returns the tasks for which pred holds, preserving order.
func Keep(tasks []model.Task, pred Predicate) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// All is the conjunction of preds. With no predicates it matches everything.
func All(preds ...Predicate) Predicate {
	return func(t model.Task) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

func StatusIs(status model.Status) Predicate {
	return func(t model.Task) bool { return t.Status == status }
}

// PriorityIn matches tasks whose priority is listed. An empty list matches nothing.
func PriorityIn(priorities []model.Priority) Predicate {
	set := slices.Clone(priorities)
	return func(t model.Task) bool { return slices.Contains(set, t.Priority) }
}

func HasTag(tag string) Predicate {
	return func(t model.Task) bool { return t.HasTag(tag) }
}

func DueBetween(start, end time.Time) Predicate {
	return func(t model.Task) bool {
		if t.DueDate == nil {
			return false
		}
		return !t.DueDate.Before(start) && !t.DueDate.After(end)
	}
}

func IsOverdue(now time.Time) Predicate {
	return func(t model.Task) bool { return t.IsOverdue(now) }
}

// DueOn matches due dates in the calendar day containing now, evaluated in
// now's location: midnight inclusive up to the next midnight exclusive.
func DueOn(now time.Time) Predicate {
	start := StartOfDay(now)
	end := start.AddDate(0, 0, 1)
	return func(t model.Task) bool {
		if t.DueDate == nil {
			return false
		}
		return !t.DueDate.Before(start) && t.DueDate.Before(end)
	}
}

// DueWithinWeek matches due dates in [now, now+7d], both ends inclusive.
func DueWithinWeek(now time.Time) Predicate {
	return DueBetween(now, now.Add(Week))
}

func Contains(keyword string) Predicate {
	needle := strings.ToLower(keyword)
	return func(t model.Task) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle)
	}
}

func ByStatus(tasks []model.Task, status model.Status) []model.Task {
	return Keep(tasks, StatusIs(status))
}

func ByPriority(tasks []model.Task, priorities []model.Priority) []model.Task {
	return Keep(tasks, PriorityIn(priorities))
}

func ByTag(tasks []model.Task, tag string) []model.Task {
	return Keep(tasks, HasTag(tag))
}

func ByDateRange(tasks []model.Task, start, end time.Time) []model.Task {
	return Keep(tasks, DueBetween(start, end))
}

func Overdue(tasks []model.Task, now time.Time) []model.Task {
	return Keep(tasks, IsOverdue(now))
}

func DueToday(tasks []model.Task, now time.Time) []model.Task {
	return Keep(tasks, DueOn(now))
}

func DueThisWeek(tasks []model.Task, now time.Time) []model.Task {
	return Keep(tasks, DueWithinWeek(now))
}

// Search matches keyword case-insensitively against title or description.
func Search(tasks []model.Task, keyword string) []model.Task {
	return Keep(tasks, Contains(keyword))
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
