package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todo/internal/commands"
	"github.com/sandeepkv93/todo/internal/filter"
	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/order"
	"github.com/sandeepkv93/todo/internal/views"
)

type listFlags struct {
	status   string
	priority string
	tag      string
	search   string
	from     string
	to       string
	overdue  bool
	today    bool
	week     bool
	sortKey  string
}

func newListCmd(a *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, optionally filtered and sorted",
		Long: `List tasks. Filters combine with AND; the sort is stable, so tasks
that compare equal keep their creation order.

Examples:
  todo list --status incomplete --priority high,medium
  todo list --overdue --sort priority
  todo list --tag work --week
  todo list --from 2025-12-01 --to 2025-12-31 --sort due`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := lf.criteria(cmd)
			if err != nil {
				return err
			}
			key, err := lf.key()
			if err != nil {
				return err
			}
			return a.printTasks(cmd, criteria, key)
		},
	}
	f := cmd.Flags()
	f.StringVar(&lf.status, "status", "", "complete or incomplete")
	f.StringVarP(&lf.priority, "priority", "p", "", "comma separated priorities, e.g. high,medium")
	f.StringVarP(&lf.tag, "tag", "t", "", "only tasks with this tag")
	f.StringVarP(&lf.search, "search", "s", "", "keyword in title or description")
	f.StringVar(&lf.from, "from", "", "due on or after this date")
	f.StringVar(&lf.to, "to", "", "due on or before this date")
	f.BoolVar(&lf.overdue, "overdue", false, "only incomplete tasks past their due date")
	f.BoolVar(&lf.today, "today", false, "only tasks due today")
	f.BoolVar(&lf.week, "week", false, "only tasks due in the next 7 days")
	f.StringVar(&lf.sortKey, "sort", "", "due, priority, title or created")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var sortKey string
	cmd := &cobra.Command{
		Use:   "search <keyword...>",
		Short: "Find tasks whose title or description contains a keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := listFlags{sortKey: sortKey}.key()
			if err != nil {
				return err
			}
			return a.printTasks(cmd, filter.Criteria{Keyword: strings.Join(args, " ")}, key)
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", "", "due, priority, title or created")
	return cmd
}

func (lf listFlags) criteria(cmd *cobra.Command) (filter.Criteria, error) {
	c := filter.Criteria{
		Tag:             strings.TrimPrefix(strings.TrimSpace(lf.tag), "#"),
		Keyword:         strings.TrimSpace(lf.search),
		OverdueOnly:     lf.overdue,
		DueTodayOnly:    lf.today,
		DueThisWeekOnly: lf.week,
	}
	if lf.status != "" {
		s, err := model.ParseStatus(lf.status)
		if err != nil {
			return filter.Criteria{}, err
		}
		c.Status = &s
	}
	if cmd.Flags().Changed("priority") {
		c.Priorities = model.ParsePriorities(strings.Split(lf.priority, ","))
	}
	if lf.from != "" {
		from, err := commands.ParseDueDate(lf.from)
		if err != nil {
			return filter.Criteria{}, err
		}
		c.DueFrom = &from
	}
	if lf.to != "" {
		to, err := commands.ParseDueDate(lf.to)
		if err != nil {
			return filter.Criteria{}, err
		}
		if !strings.Contains(strings.TrimSpace(lf.to), " ") {
			to = filter.StartOfDay(to).AddDate(0, 0, 1).Add(-1)
		}
		c.DueTo = &to
	}
	return c, nil
}

// key returns "" when no sort was requested, which keeps creation order.
func (lf listFlags) key() (order.Key, error) {
	if strings.TrimSpace(lf.sortKey) == "" {
		return "", nil
	}
	return order.ParseKey(lf.sortKey)
}

func (a *app) printTasks(cmd *cobra.Command, c filter.Criteria, key order.Key) error {
	tasks, err := a.svc.List(cmd.Context())
	if err != nil {
		return err
	}
	now := a.svc.Now()
	shown := order.Sort(filter.Combine(tasks, c, now), key)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, filter.Summary(c))
	if key != "" {
		fmt.Fprintf(out, "Sorted by: %s\n", order.Description(key))
	}
	fmt.Fprintln(out, views.RenderList(shown, now, -1))
	fmt.Fprintf(out, "%d of %d task(s)\n", len(shown), len(tasks))
	return nil
}
