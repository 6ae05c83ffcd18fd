package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todo/internal/update"
	"github.com/sandeepkv93/todo/internal/views"
)

func newRemindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Fire reminders that are due and print them",
		Long: `Check pending reminders against the current time. Each reminder that
is due is printed (and sent as a desktop notification when
reminders.desktop is on) exactly once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fired, err := a.svc.CheckReminders(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(fired) == 0 {
				fmt.Fprintln(out, "No reminders due.")
				return nil
			}
			for _, rem := range fired {
				fmt.Fprintf(out, "🔔 %s\n", rem.NotificationMessage)
				if err := a.notifier.Send("todo reminder", rem.NotificationMessage); err != nil {
					a.logger.Warn("desktop notification failed", "task", rem.TaskID, "err", err)
				}
			}
			return nil
		},
	}
}

var guides = map[string]string{
	"recurrence": `# Recurring tasks

A recurring task creates its next instance automatically when you mark
it complete.

1. Add or update a task with ` + "`--recur`" + ` set to DAILY, WEEKLY, BIWEEKLY,
   MONTHLY or YEARLY.
2. Mark it complete with ` + "`todo done <id>`" + `.
3. A new incomplete copy appears, due one period after the old due date.

Monthly and yearly tasks due on a day the next month lacks (Jan 31, Feb 29)
move to the last day of that month.`,
	"reminders": `# Reminders

Reminders are set when creating or updating a task.

1. Give the task a due date with ` + "`--due`" + `.
2. Set ` + "`--remind`" + ` to the number of hours before the due date, e.g. 1 or 2.5.
3. Run ` + "`todo remind`" + ` (or keep ` + "`todo tui`" + ` open) to fire reminders that
   have come due. Each reminder fires once.

A reminder without a due date is rejected.`,
	"filters": `# Filters and sorting

` + "`todo list`" + ` combines every filter flag with AND:

- ` + "`--status`" + ` complete or incomplete
- ` + "`--priority high,medium`" + `
- ` + "`--tag work`" + `
- ` + "`--search keyword`" + ` (title or description, any case)
- ` + "`--from` / `--to`" + ` due date range, inclusive
- ` + "`--overdue`, `--today`, `--week`" + `

` + "`--sort`" + ` accepts due, priority, title or created. Sorting is stable, so
equal tasks keep their creation order.`,
}

func newGuideCmd(a *app) *cobra.Command {
	topics := make([]string, 0, len(guides))
	for name := range guides {
		topics = append(topics, name)
	}
	slices.Sort(topics)

	return &cobra.Command{
		Use:       "guide [topic]",
		Short:     "Show help on " + strings.Join(topics, ", "),
		ValidArgs: topics,
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := topics
			if len(args) == 1 {
				topic := strings.ToLower(args[0])
				if _, ok := guides[topic]; !ok {
					return fmt.Errorf("unknown guide %q (try %s)", args[0], strings.Join(topics, ", "))
				}
				selected = []string{topic}
			}
			parts := make([]string, 0, len(selected))
			for _, name := range selected {
				parts = append(parts, guides[name])
			}
			md := strings.Join(parts, "\n\n")
			if a.cfg.UI.Color {
				md = views.RenderMarkdown(md)
			}
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		},
	}
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := update.NewModel(a.svc, update.Config{
				CheckInterval: a.cfg.Reminders.CheckInterval,
				Notifier:      a.notifier,
			})
			program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
}
