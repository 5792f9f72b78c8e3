package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/grocer/internal/config"
	"github.com/idilsaglam/grocer/internal/liststore"
	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/tui"
	"github.com/idilsaglam/grocer/internal/ui"
)

// commands builds a fresh command set; flag sets keep state between parses.
func (a *App) commands() []*Command {
	return []*Command{
		a.cmdList(),
		a.cmdAdd(),
		a.cmdDone(),
		a.cmdRemove(),
		a.cmdRefresh(),
		a.cmdPantry(),
		a.cmdShop(),
		a.cmdShell(),
		a.cmdConfig(),
		a.cmdAuth(),
	}
}

func (a *App) cmdList() *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	group := fs.BoolP("group", "g", false, "group output by to-get / in-cart instead of by category")
	return &Command{
		Flags: fs,
		Usage: "ls [--group] [category]",
		Short: "Show the shopping list",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 1 {
				return usageErrorf("ls takes at most one category")
			}
			s, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			l := s.List()
			if len(args) == 1 {
				i := l.Index(resolveCategory(l, args[0]))
				if i < 0 {
					return categoryError(l, args[0])
				}
				l = l[i : i+1]
			}
			ui.Panel(a.out, listLines(l, *group))
			return nil
		},
	}
}

func (a *App) cmdAdd() *Command {
	return &Command{
		Usage: "add <category> <name...>",
		Short: "Add an item to a category",
		Long:  "Add an item to the end of a category. Names may be several words; duplicates are allowed.",
		Exec: func(ctx context.Context, args []string) error {
			cat, name, err := categoryAndName("add", args)
			if err != nil {
				return err
			}
			s, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			l := s.List()
			cat = resolveCategory(l, cat)
			if err := s.AddItem(cat, name); err != nil {
				return storeError(l, err)
			}
			ui.OK(a.out, fmt.Sprintf("added %s to %s", name, cat))
			return nil
		},
	}
}

func (a *App) cmdDone() *Command {
	return &Command{
		Usage: "done <category> <name...>",
		Short: "Toggle an item in or out of the cart",
		Long:  "Toggle the first item with this name in the category between on the list and in the cart.",
		Exec: func(ctx context.Context, args []string) error {
			cat, name, err := categoryAndName("done", args)
			if err != nil {
				return err
			}
			s, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			l := s.List()
			cat = resolveCategory(l, cat)
			if err := s.CompleteItem(cat, name); err != nil {
				return storeError(l, err)
			}

			l = s.List()
			c := l[l.Index(cat)]
			if c.Items[c.FirstItem(name)].Complete {
				ui.OK(a.out, name+" is in the cart")
			} else {
				ui.OK(a.out, name+" is back on the list")
			}
			if liststore.Summarize(l).AllComplete() {
				fmt.Fprintln(a.out, ui.C(ui.Current().Success, "Congratulations, you got everything! Run `grocer refresh` to finish the trip."))
			}
			return nil
		},
	}
}

func (a *App) cmdRemove() *Command {
	return &Command{
		Usage: "rm <category> <name...>",
		Short: "Remove every item with this name from a category",
		Exec: func(ctx context.Context, args []string) error {
			cat, name, err := categoryAndName("rm", args)
			if err != nil {
				return err
			}
			s, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			l := s.List()
			cat = resolveCategory(l, cat)
			n := 0
			if i := l.Index(cat); i >= 0 {
				for _, it := range l[i].Items {
					if it.Name == name {
						n++
					}
				}
			}
			if err := s.RemoveItem(cat, name); err != nil {
				return storeError(l, err)
			}
			if n == 0 {
				fmt.Fprintln(a.out, ui.Dim(fmt.Sprintf("no %s in %s", name, cat)))
				return nil
			}
			ui.OK(a.out, fmt.Sprintf("removed %s from %s", plural(n, name), cat))
			return nil
		},
	}
}

func (a *App) cmdRefresh() *Command {
	return &Command{
		Usage: "refresh",
		Short: "Finish the trip: move items in the cart to the pantry",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return usageErrorf("refresh takes no arguments")
			}
			s, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			sum := liststore.Summarize(s.List())
			if err := s.RefreshList(); err != nil {
				return err
			}
			if sum.Complete == 0 {
				fmt.Fprintln(a.out, ui.Dim("nothing in the cart yet"))
				return nil
			}
			ui.OK(a.out, fmt.Sprintf("moved %s to the pantry", plural(sum.Complete, "item")))
			return nil
		},
	}
}

func (a *App) cmdPantry() *Command {
	fs := flag.NewFlagSet("pantry", flag.ContinueOnError)
	raw := fs.Bool("raw", false, "print every entry in purchase order, one per line")
	return &Command{
		Flags: fs,
		Usage: "pantry [--raw]",
		Short: "Show everything bought so far",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return usageErrorf("pantry takes no arguments")
			}
			s, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			pantry := s.Pantry()
			if *raw {
				for _, name := range pantry {
					fmt.Fprintln(a.out, name)
				}
				return nil
			}
			ui.Panel(a.out, pantryLines(pantry))
			return nil
		},
	}
}

func (a *App) cmdShop() *Command {
	return &Command{
		Usage: "shop",
		Short: "Open the interactive shopping screen",
		Long: "Open the interactive shopping screen.\n\n" +
			"Keys: tab/shift+tab category, space toggle, a add, d remove,\n" +
			"r finish trip, p pantry, / filter, q quit.",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return usageErrorf("shop takes no arguments")
			}
			// the screen loads the list itself and shows a loading state until then
			s, err := a.openStore(ctx, false)
			if err != nil {
				return err
			}
			return tui.Run(ctx, s)
		},
	}
}

func (a *App) cmdConfig() *Command {
	return &Command{
		Usage: "config",
		Short: "Print the effective configuration",
		Exec: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return usageErrorf("config takes no arguments")
			}
			out, err := config.Format(a.cfg)
			if err != nil {
				return err
			}
			if a.sources.Global != "" {
				fmt.Fprintln(a.out, ui.Dim("# global: "+a.sources.Global))
			}
			if a.sources.Project != "" {
				fmt.Fprintln(a.out, ui.Dim("# project: "+a.sources.Project))
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
}

func (a *App) cmdAuth() *Command {
	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	keyID := fs.String("access-key-id", "", "access key id (prompted when omitted)")
	secret := fs.String("secret-access-key", "", "secret access key (prompted when omitted)")
	return &Command{
		Flags: fs,
		Usage: "auth <login|logout|status>",
		Short: "Manage stored credentials for the s3 backend",
		Long: "Manage static credentials for the s3 backend.\n\n" +
			"Keys are kept in the grocer config dir, readable only by you. The " +
			config.EnvAccessKeyID + " and " + config.EnvSecretAccessKey +
			" environment variables take precedence. Without either, the default AWS credential chain is used.",
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usageErrorf("auth <login|logout|status>")
			}
			switch args[0] {
			case "login":
				return a.authLogin(*keyID, *secret)
			case "logout":
				if err := config.DeleteCredentials(a.env); err != nil {
					return err
				}
				ui.OK(a.out, "logged out")
				return nil
			case "status":
				c, err := config.GetCredentials(a.env)
				if err != nil {
					return err
				}
				if c == nil {
					fmt.Fprintln(a.out, ui.Dim("no stored credentials, using the default AWS chain"))
					return nil
				}
				ui.OK(a.out, fmt.Sprintf("access key %s (from %s)", maskKey(c.AccessKeyID), c.Source))
				return nil
			}
			return usageErrorf("unknown auth action %q", args[0])
		},
	}
}

func (a *App) authLogin(keyID, secret string) error {
	sc := bufio.NewScanner(a.in)
	prompt := func(label string) (string, error) {
		fmt.Fprint(a.errOut, label+": ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errors.New("no input")
		}
		return strings.TrimSpace(sc.Text()), nil
	}
	var err error
	if keyID == "" {
		if keyID, err = prompt("Access key id"); err != nil {
			return err
		}
	}
	if secret == "" {
		if secret, err = prompt("Secret access key"); err != nil {
			return err
		}
	}
	if err := config.SetCredentials(a.env, keyID, secret); err != nil {
		return err
	}
	ui.OK(a.out, "credentials saved")
	return nil
}

// categoryAndName splits "<category> <name...>".
func categoryAndName(cmd string, args []string) (string, string, error) {
	if len(args) < 2 {
		return "", "", usageErrorf("grocer %s <category> <name...>", cmd)
	}
	name := unquote(strings.TrimSpace(strings.Join(args[1:], " ")))
	if name == "" {
		return "", "", usageErrorf("%s: empty name", cmd)
	}
	return args[0], name, nil
}

// unquote strips one pair of matching surrounding quotes, as typed in the shell.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// resolveCategory maps arg to a category name ignoring case, so "produce"
// finds "Produce". Unknown names are returned unchanged.
func resolveCategory(l model.List, arg string) string {
	for _, c := range l {
		if strings.EqualFold(c.Name, arg) {
			return c.Name
		}
	}
	return arg
}

func categoryError(l model.List, arg string) error {
	return usageErrorf("%v: %q (have %s)", liststore.ErrCategoryNotFound, arg, strings.Join(l.Names(), ", "))
}

// storeError turns lookup failures into usage errors with a hint.
func storeError(l model.List, err error) error {
	switch {
	case errors.Is(err, liststore.ErrCategoryNotFound):
		return usageErrorf("%v (have %s)", err, strings.Join(l.Names(), ", "))
	case errors.Is(err, liststore.ErrItemNotFound):
		return usageErrorf("%v; run `grocer ls` to see the list", err)
	}
	return err
}

func maskKey(id string) string {
	if len(id) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(id)-4) + id[len(id)-4:]
}
