// Package cli implements the grocer command line: one-shot list commands, the
// interactive shopping screen and a line-oriented shell.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/grocer/internal/config"
	"github.com/idilsaglam/grocer/internal/kv/backends"
	"github.com/idilsaglam/grocer/internal/liststore"
	"github.com/idilsaglam/grocer/internal/metrics"
	"github.com/idilsaglam/grocer/internal/ui"
)

var errSaveFailed = errors.New("some changes could not be saved")

type globalFlags struct {
	workDir    string
	configPath string
	backend    string
	dataDir    string
	key        string
	theme      string
	logLevel   string
	verbose    bool
	color      bool
	noColor    bool
	help       bool
}

func newGlobalFlagSet(g *globalFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("grocer", flag.ContinueOnError)
	fs.SetInterspersed(false) // everything after the command name belongs to it
	fs.SetOutput(io.Discard)
	fs.StringVarP(&g.workDir, "cwd", "C", "", "run as if grocer was started in `dir`")
	fs.StringVarP(&g.configPath, "config", "c", "", "use config `file` instead of ./"+config.FileName)
	fs.StringVar(&g.backend, "backend", "", "storage backend: file, sqlite, postgres, s3 or memory")
	fs.StringVar(&g.dataDir, "data-dir", "", "`dir` for the file and sqlite backends")
	fs.StringVar(&g.key, "key", "", "storage key the list is saved under")
	fs.StringVar(&g.theme, "theme", "", "output theme: classic, neon or mono")
	fs.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "shorthand for --log-level=debug")
	fs.BoolVar(&g.color, "color", false, "force colored output")
	fs.BoolVar(&g.noColor, "no-color", false, "disable colored output")
	fs.BoolVarP(&g.help, "help", "h", false, "show help")
	return fs
}

// App is everything a command needs for one invocation.
type App struct {
	in          io.Reader
	out, errOut io.Writer
	env         map[string]string

	cfg     config.Config
	sources config.Sources
	log     *log.Logger
	metrics *metrics.Metrics
	saves   *saveTracker

	store   *liststore.Store
	closeKV func() error
}

// Run parses global flags, loads configuration and dispatches the subcommand.
// args excludes the program name. Returns the exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, in io.Reader, out, errOut io.Writer, args []string, env map[string]string) int {
	var g globalFlags
	fs := newGlobalFlagSet(&g)
	if err := fs.Parse(args); err != nil {
		ui.Fail(errOut, err.Error())
		fmt.Fprintln(errOut)
		PrintHelp(errOut)
		return 2
	}
	rest := fs.Args()
	if g.help {
		PrintHelp(out)
		return 0
	}
	if len(rest) == 0 {
		PrintHelp(errOut)
		return 2
	}

	workDir := g.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			ui.Fail(errOut, "cannot get working directory: "+err.Error())
			return 1
		}
		workDir = wd
	}

	ov := config.Overrides{
		Backend:  g.backend,
		DataDir:  g.dataDir,
		Key:      g.key,
		Theme:    g.theme,
		LogLevel: g.logLevel,
	}
	if g.verbose {
		ov.LogLevel = "debug"
	}
	cfg, sources, err := config.Load(workDir, g.configPath, ov, env)
	if err != nil {
		ui.Fail(errOut, err.Error())
		return 1
	}

	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(g.color, g.noColor)

	a := newApp(in, out, errOut, env, cfg, sources)
	return a.dispatch(ctx, rest)
}

func newApp(in io.Reader, out, errOut io.Writer, env map[string]string, cfg config.Config, sources config.Sources) *App {
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = log.WarnLevel
	}
	logger := log.NewWithOptions(errOut, log.Options{
		Level:  lvl,
		Prefix: "grocer",
	})
	return &App{
		in:      in,
		out:     out,
		errOut:  errOut,
		env:     env,
		cfg:     cfg,
		sources: sources,
		log:     logger,
		metrics: metrics.New(),
		saves:   &saveTracker{},
	}
}

// dispatch runs one command and then flushes pending writes, exports metrics
// and releases the backend.
func (a *App) dispatch(ctx context.Context, args []string) int {
	name, rest := args[0], args[1:]
	if name == "help" {
		if len(rest) > 0 {
			if c := a.lookup(rest[0]); c != nil {
				c.PrintHelp(a.out)
				return 0
			}
		}
		PrintHelp(a.out)
		return 0
	}

	c := a.lookup(name)
	if c == nil {
		ui.Fail(a.errOut, "unknown subcommand: "+name)
		fmt.Fprintln(a.errOut)
		PrintHelp(a.errOut)
		return 2
	}

	code := c.Run(ctx, a.out, a.errOut, rest)
	if err := a.finish(); err != nil {
		ui.Fail(a.errOut, err.Error())
		if code == 0 {
			code = 1
		}
	}
	return code
}

func (a *App) lookup(name string) *Command {
	for _, c := range a.commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// openStore connects the configured backend and builds the list store once per
// invocation. With load set it also reads the saved list; a failed read is
// reported and the defaults are kept.
func (a *App) openStore(ctx context.Context, load bool) (*liststore.Store, error) {
	if a.store == nil {
		st, closeFn, err := backends.Open(ctx, a.cfg, a.env)
		if err != nil {
			return nil, err
		}
		a.closeKV = closeFn

		opts := []liststore.Option{
			liststore.WithKey(a.cfg.Key),
			liststore.WithLogger(a.log),
			liststore.WithObserver(observers{a.metrics, a.saves}),
		}
		if len(a.cfg.Categories) > 0 {
			opts = append(opts, liststore.WithCategories(a.cfg.Categories))
		}
		a.store = liststore.New(st, opts...)
		a.log.Debug("store opened", "backend", a.cfg.Backend, "key", a.cfg.Key)
	}
	if load {
		if err := a.store.Load(ctx); err != nil {
			fmt.Fprintln(a.errOut, ui.C(ui.Current().Pending, "warning: could not read saved list, showing defaults"))
		}
	}
	return a.store, nil
}

func (a *App) finish() error {
	var errs []error
	if a.store != nil {
		a.store.Flush()
		if n, total := a.saves.counts(); n > 0 {
			errs = append(errs, fmt.Errorf("%w (%d of %d writes failed)", errSaveFailed, n, total))
		}
	}
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.closeKV != nil {
		if err := a.closeKV(); err != nil {
			errs = append(errs, fmt.Errorf("close %s backend: %w", a.cfg.Backend, err))
		}
		a.closeKV = nil
	}
	return errors.Join(errs...)
}

// PrintHelp prints the global usage.
func PrintHelp(w io.Writer) {
	a := &App{}
	var b strings.Builder
	b.WriteString(`grocer - a grocery list for the terminal

Usage:
  grocer [global flags] <subcommand> [args]

Subcommands:
`)
	for _, c := range a.commands() {
		b.WriteString(c.HelpLine())
		b.WriteByte('\n')
	}
	b.WriteString("\nGlobal flags:\n")
	var g globalFlags
	fs := newGlobalFlagSet(&g)
	fs.SetOutput(&b)
	fs.PrintDefaults()
	b.WriteString(`
Examples:
  grocer ls
  grocer add produce green beans
  grocer done dairy milk
  grocer refresh
  grocer shop
`)
	fmt.Fprint(w, b.String())
}
