// Package cli implements the todo command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"todo-tracker/internal/config"
	"todo-tracker/internal/credential"
	"todo-tracker/internal/database"
	"todo-tracker/internal/models"
	"todo-tracker/internal/queue"
	"todo-tracker/internal/repository"
	"todo-tracker/pkg/logger"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Secrets is the credential store used by sync and the credential command.
type Secrets interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// CommandQueue accepts commands for the remote inbox.
type CommandQueue interface {
	Publish(ctx context.Context, cmd *models.TodoCommand) error
	Close() error
}

// App holds what the subcommands share. Run builds one from the environment;
// tests build their own.
type App struct {
	cfg         *config.Config
	configPath  string
	store       *repository.Store
	out         io.Writer
	in          io.Reader
	prompter    Prompter
	interactive bool

	openSecrets   func() (Secrets, error)
	openQueue     func(cfg config.SyncConfig) CommandQueue
	startDetached func(name string, args ...string) (int, error)
}

// Run parses global flags, loads configuration, opens the database and
// executes the selected subcommand.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(stderr)
	}
	configPath := fs.String("config", config.DefaultConfigPath(), "Path to the config file")
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, Version)
		return nil
	}
	rest := fs.Args()
	if *help || len(rest) == 0 {
		printUsage(stdout)
		return nil
	}
	switch rest[0] {
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	case "version":
		fmt.Fprintln(stdout, Version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	ctx = logger.WithContext(ctx, logger.Init(cfg.Log.Level, cfg.Log.Format, stderr))

	app := &App{
		cfg:         cfg,
		configPath:  *configPath,
		out:         stdout,
		in:          os.Stdin,
		prompter:    formPrompter{},
		interactive: stdinIsTerminal(),
	}

	if rest[0] != "credential" {
		db, err := database.Open(ctx, cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		app.store = repository.New(db)
	}
	return app.Execute(ctx, rest)
}

// Execute dispatches args[0] to its subcommand.
func (a *App) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage(a.out)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return a.add(ctx, rest)
	case "mark":
		return a.mark(ctx, rest)
	case "delete", "rm":
		return a.remove(ctx, rest)
	case "list", "ls":
		return a.list(ctx, rest)
	case "tags":
		return a.tags(ctx, rest)
	case "stats":
		return a.stats(ctx, rest)
	case "sync":
		return a.sync(ctx, rest)
	case "server", "serve":
		return a.server(ctx, rest)
	case "credential":
		return a.manageCredential(ctx, rest)
	case "version":
		fmt.Fprintln(a.out, Version)
		return nil
	case "help":
		printUsage(a.out)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) secrets() (Secrets, error) {
	if a.openSecrets != nil {
		return a.openSecrets()
	}
	return credential.Open()
}

func (a *App) commandQueue(cfg config.SyncConfig) CommandQueue {
	if a.openQueue != nil {
		return a.openQueue(cfg)
	}
	return queue.NewProducer(cfg)
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("todo "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs allows flags before and after positional arguments, so that
// `todo add "Buy milk" -p 3` and `todo add -p 3 "Buy milk"` are equivalent.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, fmt.Errorf("%s: unknown flag -h", fs.Name())
			}
			return nil, fmt.Errorf("%s: %w", fs.Name(), err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// isSet reports whether any of names was given explicitly.
func isSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, n := range names {
			if f.Name == n {
				found = true
			}
		}
	})
	return found
}

func printUsage(w io.Writer) {
	usage := `todo - a personal todo tracker

Usage:
  todo [--config path] <command> [flags]

Commands:
  add <title>      Add a todo  [-d description] [-p 1..10] [-t tag] [--remote]
  mark <query>     Mark a matching todo  [-s yes|no]
  delete <query>   Delete a matching todo
  list             List todos  [--tag name] [--filter all|completed|active|high|medium|low]
  tags             List tags
  stats            Show counts by status and priority
  sync             Run one sync round  [--detach]
  server           Serve the HTTP API  [--port n] [--consume]
  credential       Manage sync secrets  set|delete <key>
  version          Print the version
  help             Show this help

Global flags:
  --config path    Config file (default ~/.config/todo/config.yaml)
`
	fmt.Fprint(w, strings.TrimLeft(usage, "\n"))
}
