package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todo/internal/commands"
	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/notify"
	"github.com/sandeepkv93/todo/internal/views"
)

const previewCount = 3

func newAddCmd(a *app) *cobra.Command {
	var fields taskFields
	var interactive bool
	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Add a task",
		Long: `Add a task. The title is taken from the arguments; everything else
comes from flags, or from prompts with --interactive.

Examples:
  todo add Pay rent -p high -t home,finance --due 2025-12-01 -r monthly
  todo add Team meeting --due "2025-12-10 14:00" --remind 1
  todo add -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				answers, err := a.prompter.TaskForm()
				if err != nil {
					return err
				}
				fields = answers
			} else {
				fields.Title = strings.Join(args, " ")
			}
			in, err := fields.toAddInput()
			if err != nil {
				return err
			}
			task, err := a.svc.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added task #%d\n", task.ID)
			fmt.Fprintln(out, views.FormatTask(task, a.svc.Now()))
			if task.DueDate != nil && task.ReminderOffset != nil {
				fmt.Fprintf(out, "Reminder set for %s\n", notify.CalculateReminderTime(*task.DueDate, *task.ReminderOffset).Format(notify.TimeLayout))
			}
			printPreview(cmd, task)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fields.Description, "description", "d", "", "task description")
	f.StringVarP(&fields.Priority, "priority", "p", "", "HIGH, MEDIUM or LOW (default MEDIUM)")
	f.StringVarP(&fields.Tags, "tags", "t", "", "comma separated tags")
	f.StringVar(&fields.Due, "due", "", "due date: YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"")
	f.StringVarP(&fields.Recurrence, "recur", "r", "", "DAILY, WEEKLY, BIWEEKLY, MONTHLY or YEARLY")
	f.StringVar(&fields.Remind, "remind", "", "hours before the due date to remind")
	f.BoolVarP(&interactive, "interactive", "i", false, "prompt for every field")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var fields taskFields
	var clearDue, clearRemind bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Long: `Change fields of a task. Only the flags given are applied.

Examples:
  todo update 3 -p low
  todo update 3 --due "2025-12-11 09:00" --remind 2
  todo update 3 --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := buildUpdate(cmd, fields, clearDue, clearRemind)
			if err != nil {
				return err
			}
			if in.IsEmpty() {
				return errors.New("nothing to update: pass at least one field flag")
			}
			task, err := a.svc.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d\n", task.ID)
			fmt.Fprintln(cmd.OutOrStdout(), views.FormatTask(task, a.svc.Now()))
			printPreview(cmd, task)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&fields.Title, "title", "", "new title")
	f.StringVarP(&fields.Description, "description", "d", "", "new description")
	f.StringVarP(&fields.Priority, "priority", "p", "", "HIGH, MEDIUM or LOW")
	f.StringVarP(&fields.Tags, "tags", "t", "", "replace tags (comma separated, empty to clear)")
	f.StringVar(&fields.Due, "due", "", "new due date")
	f.StringVarP(&fields.Recurrence, "recur", "r", "", "new recurrence (NONE to stop repeating)")
	f.StringVar(&fields.Remind, "remind", "", "hours before the due date to remind")
	f.BoolVar(&clearDue, "clear-due", false, "remove the due date and its reminder")
	f.BoolVar(&clearRemind, "clear-remind", false, "remove the reminder")
	return cmd
}

func buildUpdate(cmd *cobra.Command, fields taskFields, clearDue, clearRemind bool) (commands.UpdateInput, error) {
	changed := cmd.Flags().Changed
	in := commands.UpdateInput{ClearDueDate: clearDue, ClearReminder: clearRemind}
	if changed("title") {
		in.Title = &fields.Title
	}
	if changed("description") {
		in.Description = &fields.Description
	}
	if changed("priority") {
		p, err := model.ParsePriority(fields.Priority)
		if err != nil {
			return commands.UpdateInput{}, err
		}
		in.Priority = &p
	}
	if changed("tags") {
		tags := commands.ParseTags(fields.Tags)
		in.Tags = &tags
	}
	if changed("due") {
		due, err := commands.ParseDueDate(fields.Due)
		if err != nil {
			return commands.UpdateInput{}, err
		}
		in.DueDate = &due
	}
	if changed("recur") {
		rec, err := model.ParseRecurrence(fields.Recurrence)
		if err != nil {
			return commands.UpdateInput{}, err
		}
		in.Recurrence = &rec
	}
	if changed("remind") {
		off, err := parseOffset(fields.Remind)
		if err != nil {
			return commands.UpdateInput{}, err
		}
		in.ReminderOffset = &off
	}
	return in, nil
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and its reminders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.prompter.Confirm(fmt.Sprintf("Delete task #%d %q?", task.ID, task.Title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := a.svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"complete"},
		Short:   "Mark a task complete",
		Long: `Mark a task complete. Completing a recurring task creates its next
occurrence, due one period after the current due date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, next, err := a.svc.Complete(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Completed task #%d\n", task.ID)
			if next != nil {
				fmt.Fprintf(out, "Next occurrence created as #%d\n", next.ID)
				fmt.Fprintln(out, views.FormatTask(*next, a.svc.Now()))
			}
			return nil
		},
	}
}

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "undo <id>",
		Aliases: []string{"reopen"},
		Short:   "Mark a task incomplete",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.svc.Reopen(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reopened task #%d\n", task.ID)
			return nil
		},
	}
}

func printPreview(cmd *cobra.Command, task model.Task) {
	if !task.Recurrence.IsSet() || task.DueDate == nil {
		return
	}
	dates, err := task.Recurrence.Preview(*task.DueDate, previewCount)
	if err != nil || len(dates) == 0 {
		return
	}
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Format(notify.TimeLayout))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Repeats %s: next %s\n", strings.ToLower(string(task.Recurrence)), strings.Join(parts, ", "))
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
