package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/idilsaglam/grocer/internal/config"
	"github.com/idilsaglam/grocer/internal/ui"
)

// shell commands, in help order
var shellCommands = []string{"ls", "add", "done", "rm", "refresh", "pantry", "help", "exit"}

func (a *App) cmdShell() *Command {
	return &Command{
		Usage: "shell",
		Short: "Start an interactive prompt",
		Long: "Start an interactive prompt that runs ls, add, done, rm, refresh and pantry\n" +
			"against one open list. Tab completes commands, categories and item names.",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return usageErrorf("shell takes no arguments")
			}
			if _, err := a.openStore(ctx, true); err != nil {
				return err
			}
			return a.runShell(ctx)
		},
	}
}

func (a *App) historyFile() string {
	dir := config.Dir(a.env)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "history")
}

func (a *App) runShell(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)
	ln.SetTabCompletionStyle(liner.TabPrints)
	ln.SetCompleter(a.complete)

	if f, err := os.Open(a.historyFile()); err == nil {
		_, _ = ln.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(a.out, "grocer shell. Type 'help' for commands, 'exit' to leave.")
	for {
		line, err := ln.Prompt("grocer> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if !a.execLine(ctx, line) {
			break
		}
	}

	a.saveHistory(ln)
	return nil
}

func (a *App) saveHistory(ln *liner.State) {
	path := a.historyFile()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		a.log.Debug("history dir", "err", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		a.log.Debug("save history", "err", err)
		return
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		a.log.Debug("save history", "err", err)
	}
}

// execLine runs one shell line. It returns false when the shell should exit.
func (a *App) execLine(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "exit", "quit", "q":
		return false
	case "help", "?":
		for _, c := range a.commands() {
			if isShellCommand(c.Name()) {
				fmt.Fprintln(a.out, c.HelpLine())
			}
		}
		fmt.Fprintf(a.out, "  %-32s %s\n", "exit", "Leave the shell")
		return true
	}
	if !isShellCommand(name) {
		ui.Fail(a.errOut, fmt.Sprintf("unknown command: %s (type 'help' for commands)", name))
		return true
	}
	if c := a.lookup(name); c != nil {
		c.Run(ctx, a.out, a.errOut, args)
	}
	return true
}

func isShellCommand(name string) bool {
	for _, c := range shellCommands {
		if c == name && c != "help" && c != "exit" {
			return true
		}
	}
	return false
}

// complete offers commands for the first word, category names for the second
// and item names of that category for the rest.
func (a *App) complete(line string) []string {
	fields := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")
	if len(fields) == 0 || (len(fields) == 1 && !trailing) {
		prefix := ""
		if len(fields) == 1 {
			prefix = strings.ToLower(fields[0])
		}
		var out []string
		for _, c := range shellCommands {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
		return out
	}

	cmd := strings.ToLower(fields[0])
	if a.store == nil || (cmd != "add" && cmd != "done" && cmd != "rm" && cmd != "ls") {
		return nil
	}
	l := a.store.List()

	if len(fields) == 1 || (len(fields) == 2 && !trailing) {
		prefix := ""
		if len(fields) == 2 {
			prefix = fields[1]
		}
		var out []string
		for _, name := range l.Names() {
			if strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
				out = append(out, fields[0]+" "+name)
			}
		}
		return out
	}

	if cmd != "done" && cmd != "rm" {
		return nil
	}
	i := l.Index(resolveCategory(l, fields[1]))
	if i < 0 {
		return nil
	}
	typed := strings.Join(fields[2:], " ")
	if trailing && typed != "" {
		typed += " "
	}
	seen := map[string]bool{}
	var out []string
	for _, it := range l[i].Items {
		if seen[it.Name] || !strings.HasPrefix(it.Name, typed) {
			continue
		}
		seen[it.Name] = true
		out = append(out, fields[0]+" "+fields[1]+" "+it.Name)
	}
	sort.Strings(out)
	return out
}
