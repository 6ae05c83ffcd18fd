package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
)

var ErrInvalidDueDate = errors.New("commands: invalid due date")

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// ParseDueDate accepts "YYYY-MM-DD" (midnight) or "YYYY-MM-DD HH:MM" in the
// local time zone.
func ParseDueDate(raw string) (time.Time, error) {
	value := strings.Join(strings.Fields(raw), " ")
	for _, layout := range []string{DateTimeLayout, DateLayout} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (use YYYY-MM-DD or YYYY-MM-DD HH:MM)", ErrInvalidDueDate, raw)
}

// ParseReminderOffset reads a non-negative number of hours.
func ParseReminderOffset(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !model.ValidReminderOffset(v) {
		return 0, false
	}
	return v, true
}

// ParseTags splits a comma separated list, trimming blanks and dropping
// repeats while keeping first-seen order.
func ParseTags(raw string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimPrefix(strings.TrimSpace(part), "#")
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
