package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/sandeepkv93/todo/internal/commands"
	"github.com/sandeepkv93/todo/internal/model"
)

// Prompter asks the user for input the flags did not supply.
type Prompter interface {
	Confirm(message string) (bool, error)
	TaskForm() (taskFields, error)
}

// taskFields is the raw text form of a task, shared by flags and prompts.
type taskFields struct {
	Title       string `survey:"title"`
	Description string `survey:"description"`
	Priority    string `survey:"priority"`
	Tags        string `survey:"tags"`
	Due         string `survey:"due"`
	Recurrence  string `survey:"recurrence"`
	Remind      string `survey:"remind"`
}

func (f taskFields) toAddInput() (commands.AddInput, error) {
	in := commands.AddInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
	}
	if strings.TrimSpace(f.Priority) != "" {
		p, err := model.ParsePriority(f.Priority)
		if err != nil {
			return commands.AddInput{}, err
		}
		in.Priority = p
	}
	if strings.TrimSpace(f.Tags) != "" {
		in.Tags = commands.ParseTags(f.Tags)
	}
	if strings.TrimSpace(f.Due) != "" {
		due, err := commands.ParseDueDate(f.Due)
		if err != nil {
			return commands.AddInput{}, err
		}
		in.DueDate = &due
	}
	rec, err := model.ParseRecurrence(f.Recurrence)
	if err != nil {
		return commands.AddInput{}, err
	}
	in.Recurrence = rec
	if strings.TrimSpace(f.Remind) != "" {
		off, err := parseOffset(f.Remind)
		if err != nil {
			return commands.AddInput{}, err
		}
		in.ReminderOffset = &off
	}
	return in, nil
}

func parseOffset(raw string) (float64, error) {
	off, ok := commands.ParseReminderOffset(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %q (hours before due, e.g. 1 or 2.5)", model.ErrInvalidReminderOffset, raw)
	}
	return off, nil
}

type surveyPrompter struct{}

func (surveyPrompter) Confirm(message string) (bool, error) {
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (surveyPrompter) TaskForm() (taskFields, error) {
	qs := []*survey.Question{
		{Name: "title", Prompt: &survey.Input{Message: "Title:"}, Validate: survey.Required},
		{Name: "description", Prompt: &survey.Input{Message: "Description:"}},
		{Name: "priority", Prompt: &survey.Select{
			Message: "Priority:",
			Options: []string{string(model.PriorityHigh), string(model.PriorityMedium), string(model.PriorityLow)},
			Default: string(model.PriorityMedium),
		}},
		{Name: "tags", Prompt: &survey.Input{Message: "Tags (comma separated):"}},
		{Name: "due", Prompt: &survey.Input{Message: "Due date (YYYY-MM-DD or YYYY-MM-DD HH:MM, blank for none):"}, Validate: optional(func(s string) error {
			_, err := commands.ParseDueDate(s)
			return err
		})},
		{Name: "recurrence", Prompt: &survey.Select{
			Message: "Recurrence:",
			Options: []string{"NONE", "DAILY", "WEEKLY", "BIWEEKLY", "MONTHLY", "YEARLY"},
			Default: "NONE",
		}},
		{Name: "remind", Prompt: &survey.Input{Message: "Remind how many hours before due (blank for none):"}, Validate: optional(func(s string) error {
			_, err := parseOffset(s)
			return err
		})},
	}
	var out taskFields
	if err := survey.Ask(qs, &out); err != nil {
		return taskFields{}, err
	}
	return out, nil
}

func optional(check func(string) error) survey.Validator {
	return func(ans any) error {
		s, ok := ans.(string)
		if !ok {
			return errors.New("expected text")
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return check(s)
	}
}
