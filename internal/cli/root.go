// Package cli wires the task service, configuration and storage into the
// todo command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todo/internal/commands"
	"github.com/sandeepkv93/todo/internal/config"
	"github.com/sandeepkv93/todo/internal/notify"
	"github.com/sandeepkv93/todo/internal/storage"
	"github.com/sandeepkv93/todo/internal/views"
)

type globalFlags struct {
	configFile string
	storePath  string
	driver     string
	noColor    bool
	verbose    bool
}

// app holds what every subcommand needs once configuration is resolved.
type app struct {
	flags    globalFlags
	cfg      config.Config
	repo     storage.Repository
	svc      *commands.Service
	notifier notify.Notifier
	prompter Prompter
	clock    func() time.Time
	logger   *slog.Logger
}

type Option func(*app)

// WithPrompter replaces the interactive survey prompts.
func WithPrompter(p Prompter) Option {
	return func(a *app) { a.prompter = p }
}

// WithClock overrides time.Now for the task service.
func WithClock(now func() time.Time) Option {
	return func(a *app) { a.clock = now }
}

// WithNotifier overrides the notifier chosen from configuration.
func WithNotifier(n notify.Notifier) Option {
	return func(a *app) { a.notifier = n }
}

func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{prompter: surveyPrompter{}, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "todo",
		Short: "Personal task tracker with priorities, tags, due dates and reminders",
		Long: `todo keeps a personal task list with priorities, tags, due dates,
recurring tasks and reminders.

Tasks are stored in SQLite by default, or in a YAML file with
--driver yaml. Settings come from ~/.todo.yaml, a .env file and
TODO_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "config file (default ~/.todo.yaml)")
	pf.StringVar(&a.flags.storePath, "store", "", "path to the task database or YAML file")
	pf.StringVar(&a.flags.driver, "driver", "", "storage driver: sqlite or yaml")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newDoneCmd(a),
		newUndoCmd(a),
		newRemindCmd(a),
		newGuideCmd(a),
		newTUICmd(a),
	)
	for _, sub := range root.Commands() {
		if sub.RunE != nil {
			sub.RunE = a.closing(sub.RunE)
		}
	}
	return root
}

// Execute runs the todo command tree against the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.flags.configFile)
	if err != nil {
		return err
	}
	if a.flags.driver != "" {
		cfg.Storage.Driver = a.flags.driver
		if a.flags.storePath == "" {
			cfg.Storage.Path = config.DefaultStoragePath(cfg.Storage.Driver)
		}
	}
	if a.flags.storePath != "" {
		cfg.Storage.Path = a.flags.storePath
	}
	if a.flags.noColor {
		cfg.UI.Color = false
	}
	if a.flags.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.Log.SlogLevel()
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	views.SetColor(cfg.UI.Color)

	if cmd.Name() == "guide" {
		return nil
	}
	repo, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open %s store %s: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}
	a.repo = repo
	a.svc = commands.NewService(repo, a.logger, commands.WithClock(a.clock))
	if a.notifier == nil {
		a.notifier = notify.NewNotifier(cfg.Reminders.Desktop)
	}
	a.logger.Debug("store opened", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)
	return nil
}

// closing wraps run so the store is released whether or not run fails.
// Cobra skips post-run hooks after an error, so this cannot be one.
func (a *app) closing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if closeErr := a.teardown(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return run(cmd, args)
	}
}

func (a *app) teardown() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
