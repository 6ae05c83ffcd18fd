// Package order sorts task lists. Sorts are stable and work on a copy, so
// equal tasks keep their input order and the caller's slice is untouched.
package order

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sandeepkv93/todo/internal/model"
)

var ErrUnknownKey = errors.New("order: unknown sort key")

type Key string

const (
	KeyDueDate     Key = "due_date"
	KeyPriority    Key = "priority"
	KeyTitle       Key = "title"
	KeyCreatedDate Key = "created_date"
)

// Keys lists the sort keys in menu order.
var Keys = []Key{KeyDueDate, KeyPriority, KeyTitle, KeyCreatedDate}

func ParseKey(raw string) (Key, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "due_date", "due":
		return KeyDueDate, nil
	case "priority":
		return KeyPriority, nil
	case "title":
		return KeyTitle, nil
	case "created_date", "created":
		return KeyCreatedDate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, raw)
	}
}

// Next cycles through Keys.
func (k Key) Next() Key {
	i := slices.Index(Keys, k)
	return Keys[(i+1)%len(Keys)]
}

func stable(tasks []model.Task, less func(a, b model.Task) int) []model.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []model.Task{}
	}
	slices.SortStableFunc(out, less)
	return out
}

// ByDueDate orders by due date ascending; tasks without a due date go last.
func ByDueDate(tasks []model.Task) []model.Task {
	return stable(tasks, func(a, b model.Task) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		default:
			return a.DueDate.Compare(*b.DueDate)
		}
	})
}

// ByPriority orders HIGH, MEDIUM, LOW.
func ByPriority(tasks []model.Task) []model.Task {
	return stable(tasks, func(a, b model.Task) int {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	})
}

func ByTitle(tasks []model.Task) []model.Task {
	return stable(tasks, func(a, b model.Task) int {
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
}

func ByCreatedDate(tasks []model.Task) []model.Task {
	return stable(tasks, func(a, b model.Task) int {
		return a.CreatedDate.Compare(b.CreatedDate)
	})
}

// Sort dispatches on key. An unknown key returns a copy in input order.
func Sort(tasks []model.Task, key Key) []model.Task {
	switch key {
	case KeyDueDate:
		return ByDueDate(tasks)
	case KeyPriority:
		return ByPriority(tasks)
	case KeyTitle:
		return ByTitle(tasks)
	case KeyCreatedDate:
		return ByCreatedDate(tasks)
	default:
		return stable(tasks, func(model.Task, model.Task) int { return 0 })
	}
}

func Description(key Key) string {
	switch key {
	case KeyDueDate:
		return "Due Date (earliest first, no date last)"
	case KeyPriority:
		return "Priority (HIGH → MEDIUM → LOW)"
	case KeyTitle:
		return "Title (A-Z, case-insensitive)"
	case KeyCreatedDate:
		return "Created Date (oldest first)"
	default:
		return "Unsorted"
	}
}
