package filter

import (
	"testing"
	"time"

	"github.com/sandeepkv93/todo/internal/model"
)

var created = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func task(id int, title string) model.Task {
	return model.Task{
		ID:          id,
		Title:       title,
		Status:      model.StatusIncomplete,
		Priority:    model.PriorityMedium,
		CreatedDate: created,
	}
}

func due(t model.Task, at time.Time) model.Task {
	t.DueDate = &at
	return t
}

func ids(tasks []model.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []model.Task, want ...int) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	tasks := []model.Task{task(1, "Team MEETING"), task(2, "meeting notes"), task(3, "Project work")}
	assertIDs(t, Search(tasks, "meeting"), 1, 2)
}

func TestSearchTitleOrDescription(t *testing.T) {
	a := task(1, "Task 1")
	a.Description = "Contains keyword meeting"
	b := task(2, "Meeting task")
	b.Description = "Description"
	c := task(3, "Other task")
	c.Description = "No match"
	assertIDs(t, Search([]model.Task{a, b, c}, "meeting"), 1, 2)
}

func TestSearchEmptyKeywordMatchesAll(t *testing.T) {
	tasks := []model.Task{task(1, "a"), task(2, "b")}
	assertIDs(t, Search(tasks, ""), 1, 2)
}

func TestByStatus(t *testing.T) {
	a := task(1, "Task 1")
	a.Status = model.StatusComplete
	tasks := []model.Task{a, task(2, "Task 2"), task(3, "Task 3")}
	assertIDs(t, ByStatus(tasks, model.StatusIncomplete), 2, 3)
	assertIDs(t, ByStatus(tasks, model.StatusComplete), 1)
}

func TestByPriority(t *testing.T) {
	mk := func(id int, p model.Priority) model.Task {
		x := task(id, "t")
		x.Priority = p
		return x
	}
	tasks := []model.Task{mk(1, model.PriorityHigh), mk(2, model.PriorityMedium), mk(3, model.PriorityLow), mk(4, model.PriorityHigh)}
	assertIDs(t, ByPriority(tasks, []model.Priority{model.PriorityHigh}), 1, 4)
	assertIDs(t, ByPriority(tasks, []model.Priority{model.PriorityHigh, model.PriorityMedium}), 1, 2, 4)
	assertIDs(t, ByPriority(tasks, []model.Priority{}))
	assertIDs(t, ByPriority(tasks, model.ParsePriorities([]string{"bogus"})))
}

func TestByTagIsCaseSensitive(t *testing.T) {
	a := task(1, "Task 1")
	a.Tags = []string{"Work", "Urgent"}
	b := task(2, "Task 2")
	b.Tags = []string{"Home"}
	c := task(3, "Task 3")
	c.Tags = []string{"Work", "Project"}
	tasks := []model.Task{a, b, c}
	assertIDs(t, ByTag(tasks, "Work"), 1, 3)
	assertIDs(t, ByTag(tasks, "Home"), 2)
	assertIDs(t, ByTag(tasks, "work"))
}

func TestByDateRange(t *testing.T) {
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		due(task(1, "Dec"), time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)),
		due(task(2, "Jan"), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)),
		due(task(3, "Nov"), time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)),
		task(4, "No date"),
		due(task(5, "Start"), start),
		due(task(6, "End"), end),
	}
	assertIDs(t, ByDateRange(tasks, start, end), 1, 5, 6)
}

func TestOverdue(t *testing.T) {
	now := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)
	doneOverdue := due(task(4, "Complete overdue"), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	doneOverdue.Status = model.StatusComplete
	tasks := []model.Task{
		due(task(1, "Overdue"), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		due(task(2, "Future"), time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)),
		task(3, "No date"),
		doneOverdue,
	}
	assertIDs(t, Overdue(tasks, now), 1)
}

func TestDueToday(t *testing.T) {
	loc := time.FixedZone("test", 3*60*60)
	now := time.Date(2025, 12, 10, 9, 15, 0, 0, loc)
	today := StartOfDay(now)
	tasks := []model.Task{
		due(task(1, "Due today"), today.Add(14*time.Hour)),
		due(task(2, "Due tomorrow"), today.AddDate(0, 0, 1)),
		due(task(3, "Due yesterday"), today.AddDate(0, 0, -1)),
		task(4, "No date"),
		due(task(5, "Midnight"), today),
		due(task(6, "Last ns"), today.AddDate(0, 0, 1).Add(-time.Nanosecond)),
	}
	assertIDs(t, DueToday(tasks, now), 1, 5, 6)
}

func TestDueTodayUsesNowLocation(t *testing.T) {
	// 23:30 UTC is already the next day at UTC+3.
	loc := time.FixedZone("east", 3*60*60)
	now := time.Date(2025, 12, 11, 8, 0, 0, 0, loc)
	late := due(task(1, "late"), time.Date(2025, 12, 10, 23, 30, 0, 0, time.UTC))
	assertIDs(t, DueToday([]model.Task{late}, now), 1)
}

func TestDueThisWeekRollingWindow(t *testing.T) {
	now := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		due(task(1, "In 3 days"), now.AddDate(0, 0, 3)),
		due(task(2, "In 10 days"), now.AddDate(0, 0, 10)),
		task(3, "No date"),
		due(task(4, "Now"), now),
		due(task(5, "Window end"), now.Add(Week)),
		due(task(6, "Just past end"), now.Add(Week+time.Second)),
		due(task(7, "Earlier today"), now.Add(-time.Hour)),
	}
	assertIDs(t, DueThisWeek(tasks, now), 1, 4, 5)
}

func TestFiltersOnEmptyInput(t *testing.T) {
	now := time.Now()
	results := [][]model.Task{
		ByStatus(nil, model.StatusComplete),
		ByPriority(nil, []model.Priority{model.PriorityHigh}),
		ByTag(nil, "x"),
		ByDateRange(nil, now, now),
		Overdue(nil, now),
		DueToday(nil, now),
		DueThisWeek(nil, now),
		Search(nil, "x"),
		Combine(nil, Criteria{OverdueOnly: true}, now),
	}
	for i, r := range results {
		if r == nil || len(r) != 0 {
			t.Fatalf("result %d: expected empty non-nil slice, got %#v", i, r)
		}
	}
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	tasks := []model.Task{task(1, "a"), task(2, "b")}
	out := Search(tasks, "")
	out[0].Title = "changed"
	if tasks[0].Title != "a" {
		t.Fatal("filter result aliases input slice")
	}
}
