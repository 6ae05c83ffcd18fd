package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
)

// Criteria holds the optional constraints applied by Combine. Zero values
// impose nothing, except that a non-nil empty Priorities matches no task.
type Criteria struct {
	Status          *model.Status
	Priorities      []model.Priority
	Tag             string
	Keyword         string
	DueFrom         *time.Time
	DueTo           *time.Time
	OverdueOnly     bool
	DueTodayOnly    bool
	DueThisWeekOnly bool
}

func (c Criteria) IsEmpty() bool {
	return len(c.predicates(time.Time{})) == 0
}

func (c Criteria) predicates(now time.Time) []Predicate {
	preds := make([]Predicate, 0, 8)
	if c.Status != nil {
		preds = append(preds, StatusIs(*c.Status))
	}
	if c.Priorities != nil {
		preds = append(preds, PriorityIn(c.Priorities))
	}
	if c.Tag != "" {
		preds = append(preds, HasTag(c.Tag))
	}
	if c.Keyword != "" {
		preds = append(preds, Contains(c.Keyword))
	}
	if c.DueFrom != nil || c.DueTo != nil {
		preds = append(preds, dueRange(c.DueFrom, c.DueTo))
	}
	if c.OverdueOnly {
		preds = append(preds, IsOverdue(now))
	}
	if c.DueTodayOnly {
		preds = append(preds, DueOn(now))
	}
	if c.DueThisWeekOnly {
		preds = append(preds, DueWithinWeek(now))
	}
	return preds
}

// Matches is the conjunction of every active criterion.
func (c Criteria) Matches(now time.Time) Predicate {
	return All(c.predicates(now)...)
}

// Combine keeps the tasks satisfying every active criterion. All criteria
// are tested per task in one pass, so the result does not depend on the
// order in which they are listed.
func Combine(tasks []model.Task, c Criteria, now time.Time) []model.Task {
	return Keep(tasks, c.Matches(now))
}

func dueRange(from, to *time.Time) Predicate {
	return func(t model.Task) bool {
		if t.DueDate == nil {
			return false
		}
		if from != nil && t.DueDate.Before(*from) {
			return false
		}
		if to != nil && t.DueDate.After(*to) {
			return false
		}
		return true
	}
}

// Summary describes the active criteria for display.
func Summary(c Criteria) string {
	parts := make([]string, 0, 8)
	if c.Status != nil {
		parts = append(parts, fmt.Sprintf("status=%s", *c.Status))
	}
	if c.Priorities != nil {
		names := make([]string, 0, len(c.Priorities))
		for _, p := range c.Priorities {
			names = append(names, string(p))
		}
		if len(names) == 0 {
			names = append(names, "none")
		}
		parts = append(parts, "priority="+strings.Join(names, ","))
	}
	if c.Tag != "" {
		parts = append(parts, fmt.Sprintf("tag=%s", c.Tag))
	}
	if c.Keyword != "" {
		parts = append(parts, fmt.Sprintf("keyword=%q", c.Keyword))
	}
	if c.DueFrom != nil || c.DueTo != nil {
		parts = append(parts, "due="+formatBound(c.DueFrom)+".."+formatBound(c.DueTo))
	}
	if c.OverdueOnly {
		parts = append(parts, "overdue")
	}
	if c.DueTodayOnly {
		parts = append(parts, "due today")
	}
	if c.DueThisWeekOnly {
		parts = append(parts, "due this week")
	}
	if len(parts) == 0 {
		return "Filters: none (showing all tasks)"
	}
	return "Filters: " + strings.Join(parts, ", ")
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
