// Command todoctl inspects and administers a todo-service database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/nhle/todo-service/internal/app"
	"github.com/nhle/todo-service/internal/credential"
	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/report"
	"github.com/nhle/todo-service/internal/store"
	"github.com/nhle/todo-service/internal/todo"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Error("todoctl failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("todoctl", flag.ContinueOnError)
	flags.Usage = func() { printUsage(flags) }
	configPath := flags.String("config", "", "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading config")
	if err := flags.Parse(args); err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) == 0 {
		printUsage(flags)
		return errors.New("missing command")
	}
	cmd, rest := rest[0], rest[1:]

	if err := loadEnv(*envFile); err != nil {
		return err
	}
	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	if cmd == "rotate-key" {
		return rotateKey(cfg, out)
	}

	logger, err := app.NewLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd {
	case "stats":
		return statsCommand(ctx, a, rest, out)
	case "overdue":
		return overdueCommand(ctx, a, rest, out)
	case "due-soon":
		return dueSoonCommand(ctx, a, rest, out)
	case "activate":
		return setActiveCommand(ctx, a, rest, out, true)
	case "deactivate":
		return setActiveCommand(ctx, a, rest, out, false)
	default:
		printUsage(flags)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func printUsage(flags *flag.FlagSet) {
	fmt.Fprintln(flags.Output(), `Usage: todoctl [flags] <command> [args]

Commands:
  stats <username>                 todo statistics
  overdue <username>               incomplete todos past their due date
  due-soon [-hours N] <username>   incomplete todos due within N hours (default 24)
  activate <username>              enable an account
  deactivate <username>            disable an account
  rotate-key                       replace the keyring signing key

Flags:`)
	flags.PrintDefaults()
}

// owner resolves the single username argument of a report command.
func owner(ctx context.Context, a *app.App, args []string) (*model.User, error) {
	if len(args) != 1 {
		return nil, errors.New("expected exactly one username")
	}
	u, err := a.Directory.FindByUsername(ctx, args[0])
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no user named %q", args[0])
	}
	return u, err
}

func statsCommand(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	u, err := owner(ctx, a, args)
	if err != nil {
		return err
	}
	stats, err := a.Todos.Stats(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, report.Stats(u.Username, stats))
	return nil
}

func overdueCommand(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	u, err := owner(ctx, a, args)
	if err != nil {
		return err
	}
	todos, err := a.Todos.Overdue(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, report.Todos("Overdue", todos, time.Now()))
	return nil
}

func dueSoonCommand(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("todoctl due-soon", flag.ContinueOnError)
	hours := flags.Int("hours", todo.DefaultDueSoonHours, "window size in hours (1-168)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	u, err := owner(ctx, a, flags.Args())
	if err != nil {
		return err
	}
	todos, err := a.Todos.DueSoon(ctx, u.ID, *hours)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, report.Todos(fmt.Sprintf("Due within %dh", *hours), todos, time.Now()))
	return nil
}

func setActiveCommand(ctx context.Context, a *app.App, args []string, out io.Writer, active bool) error {
	if len(args) != 1 {
		return errors.New("expected exactly one username")
	}
	u, err := a.Directory.SetActive(ctx, args[0], active)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no user named %q", args[0])
	}
	if err != nil {
		return err
	}

	state := "inactive"
	if u.IsActive {
		state = "active"
	}
	fmt.Fprintf(out, "%s is now %s\n", u.Username, state)
	return nil
}

func rotateKey(cfg *model.AppConfig, out io.Writer) error {
	if !cfg.Auth.UseKeyring {
		return errors.New("auth.use_keyring is disabled; rotate SECRET_KEY instead")
	}
	ring, err := credential.OpenKeyring(cfg.Auth.KeyringDir)
	if err != nil {
		return err
	}
	if err := credential.RotateSigningKey(ring); err != nil {
		return err
	}
	if _, err := credential.SigningKey(ring); err != nil {
		return err
	}
	fmt.Fprintln(out, "signing key rotated; restart todo-api to apply")
	return nil
}
