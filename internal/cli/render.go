package cli

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/grocer/internal/liststore"
	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/ui"
)

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// listLines renders the list for ui.Panel: a header with counts and progress,
// then either one block per category or the to-get / in-cart split.
func listLines(l model.List, group bool) []string {
	t := ui.Current()
	sum := liststore.Summarize(l)

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Groceries"),
		ui.C(t.Success, t.SymDone), sum.Complete,
		ui.C(t.Pending, t.SymUnchecked), sum.Remaining,
		ui.C(t.Accent, "Total"), sum.Total,
	)
	lines := []string{
		header,
		ui.C(t.Muted, ui.ProgressBar(sum.Complete, sum.Total, 28)),
		"",
	}

	if group {
		lines = append(lines, groupLines(l)...)
	} else {
		lines = append(lines, categoryLines(l, sum)...)
	}

	lines = append(lines, "")
	switch {
	case sum.AllComplete():
		lines = append(lines, ui.C(t.Success, "All done! Run `grocer refresh` to move everything to the pantry."))
	case sum.Total == 0:
		lines = append(lines, ui.C(t.Muted, "Tip: add with `grocer add produce apples`"))
	default:
		lines = append(lines, ui.C(t.Muted, plural(sum.Remaining, "item")+" left"))
	}
	return lines
}

func categoryLines(l model.List, sum liststore.Summary) []string {
	t := ui.Current()
	var lines []string
	for i, c := range l {
		cs := sum.Categories[i]
		head := ui.C(t.CategoryColor(c.Name), c.Name)
		switch {
		case cs.Done():
			head += " ✅"
		case cs.Empty():
			head += " " + ui.Dim("(empty)")
		default:
			head += ui.Dim(fmt.Sprintf(" (%d)", cs.Remaining))
		}
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, head)
		lines = append(lines, itemLines(c.Items)...)
	}
	return lines
}

func itemLines(items []model.Item) []string {
	t := ui.Current()
	out := make([]string, 0, len(items))
	for _, it := range items {
		name := runewidth.Truncate(it.Name, 60, "...")
		if it.Complete {
			out = append(out, "  "+ui.C(t.Success, t.BoxChecked)+" "+ui.Struck(name))
			continue
		}
		out = append(out, "  "+ui.C(t.Muted, t.BoxUnchecked)+" "+name)
	}
	return out
}

func groupLines(l model.List) []string {
	t := ui.Current()
	var toGet, inCart []string
	for _, c := range l {
		for _, it := range c.Items {
			line := it.Name + " " + ui.Dim("("+c.Name+")")
			if it.Complete {
				inCart = append(inCart, "  "+ui.C(t.Success, t.BoxChecked)+" "+line)
			} else {
				toGet = append(toGet, "  "+ui.C(t.Muted, t.BoxUnchecked)+" "+line)
			}
		}
	}
	none := []string{"  " + ui.C(t.Muted, "(none)")}
	if len(toGet) == 0 {
		toGet = none
	}
	if len(inCart) == 0 {
		inCart = none
	}
	lines := []string{ui.C(t.Accent, "To get")}
	lines = append(lines, toGet...)
	lines = append(lines, "", ui.C(t.Accent, "In cart"))
	return append(lines, inCart...)
}

// pantryLines collapses repeated purchases into counts, in first-bought order.
func pantryLines(pantry []string) []string {
	t := ui.Current()
	lines := []string{
		fmt.Sprintf("%s  %s", ui.C(t.Title, "Pantry"), ui.Dim(plural(len(pantry), "purchase"))),
		"",
	}
	if len(pantry) == 0 {
		return append(lines, ui.C(t.Muted, "nothing bought yet"))
	}
	counts := make(map[string]int, len(pantry))
	var order []string
	for _, name := range pantry {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	for _, name := range order {
		line := ui.C(t.Success, t.SymDone) + " " + name
		if n := counts[name]; n > 1 {
			line += ui.Dim(fmt.Sprintf(" ×%d", n))
		}
		lines = append(lines, line)
	}
	return lines
}
