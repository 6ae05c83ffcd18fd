package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/todo/internal/filter"
	"github.com/sandeepkv93/todo/internal/model"
	"github.com/sandeepkv93/todo/internal/order"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeUndo   Type = "undo"
	TypeDelete Type = "delete"
	TypeSort   Type = "sort"
	TypeSearch Type = "search"
	TypeFilter Type = "filter"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs is a quick-add: plain words form the title, "#tag" adds a tag,
// "!high" sets priority and "due:YYYY-MM-DD" sets the due date.
type AddArgs struct {
	Title    string
	Priority model.Priority
	Tags     []string
	DueDate  *time.Time
}

type TargetArgs struct {
	ID int
}

type SortArgs struct {
	Key order.Key
}

type SearchArgs struct {
	Keyword string
}

// FilterArgs replaces the active criteria. Clear resets to showing all tasks.
type FilterArgs struct {
	Criteria filter.Criteria
	Clear    bool
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Sort   *SortArgs
	Search *SearchArgs
	Filter *FilterArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ":") {
		raw = strings.TrimSpace(raw[1:])
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeUndo, TypeDelete:
		return parseTarget(input, Type(head), args)
	case TypeSort:
		return parseSort(input, args)
	case TypeSearch:
		return parseSearch(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(arg, "#") && len(arg) > 1:
			out.Tags = append(out.Tags, ParseTags(arg)...)
		case strings.HasPrefix(arg, "!") && len(arg) > 1:
			p, ok := priorityShorthand(arg[1:])
			if !ok {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown priority %q", arg)}
			}
			out.Priority = p
		case strings.HasPrefix(lower, "due:"):
			due, err := ParseDueDate(arg[len("due:"):])
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
			}
			out.DueDate = &due
		default:
			words = append(words, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(words, " "))
	if out.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task id", typ)}
	}
	id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || id <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid task id %q", args[0])}
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{ID: id}}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort requires a key (due, priority, title, created)"}
	}
	key, err := order.ParseKey(strings.Join(args, "_"))
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Key: key}}, nil
}

func parseSearch(raw string, args []string) (Command, error) {
	keyword := strings.TrimSpace(strings.Join(args, " "))
	if keyword == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "search requires a keyword"}
	}
	return Command{Type: TypeSearch, Raw: raw, Search: &SearchArgs{Keyword: keyword}}, nil
}

// parseFilter reads tokens such as "overdue", "today", "week",
// "status:complete", "priority:high,low" and "tag:work". "clear" or "none"
// drops every filter.
func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires at least one token"}
	}
	out := FilterArgs{}
	for _, arg := range args {
		key, value, _ := strings.Cut(arg, ":")
		switch strings.ToLower(key) {
		case "clear", "none", "all":
			return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Clear: true}}, nil
		case "overdue":
			out.Criteria.OverdueOnly = true
		case "today":
			out.Criteria.DueTodayOnly = true
		case "week":
			out.Criteria.DueThisWeekOnly = true
		case "status":
			status, err := model.ParseStatus(statusAlias(value))
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
			}
			out.Criteria.Status = &status
		case "priority":
			out.Criteria.Priorities = model.ParsePriorities(strings.Split(value, ","))
		case "tag":
			if value == "" {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "tag filter requires a value"}
			}
			out.Criteria.Tag = strings.TrimPrefix(value, "#")
		default:
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown filter %q", arg)}
		}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &out}, nil
}

func statusAlias(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "done", "completed":
		return string(model.StatusComplete)
	case "open", "pending", "todo":
		return string(model.StatusIncomplete)
	default:
		return v
	}
}

func priorityShorthand(v string) (model.Priority, bool) {
	switch strings.ToLower(v) {
	case "h":
		return model.PriorityHigh, true
	case "m":
		return model.PriorityMedium, true
	case "l":
		return model.PriorityLow, true
	}
	p, err := model.ParsePriority(v)
	return p, err == nil
}
