package liststore

import "github.com/idilsaglam/grocer/internal/model"

// CategorySummary counts one category's items.
type CategorySummary struct {
	Name      string
	Total     int
	Remaining int
}

// Empty reports whether the category has no items.
func (c CategorySummary) Empty() bool { return c.Total == 0 }

// Done reports whether the category has items and all of them are complete.
func (c CategorySummary) Done() bool { return c.Total > 0 && c.Remaining == 0 }

// Summary is what the shopping view shows in its header.
type Summary struct {
	Total      int
	Complete   int
	Remaining  int
	Categories []CategorySummary
}

// AllComplete reports whether there is something on the list and nothing left to get.
func (s Summary) AllComplete() bool { return s.Total > 0 && s.Remaining == 0 }

// Summarize counts items per category and overall.
func Summarize(l model.List) Summary {
	sum := Summary{Categories: make([]CategorySummary, 0, len(l))}
	for _, c := range l {
		cs := CategorySummary{Name: c.Name, Total: len(c.Items)}
		for _, it := range c.Items {
			if !it.Complete {
				cs.Remaining++
			}
		}
		sum.Total += cs.Total
		sum.Remaining += cs.Remaining
		sum.Categories = append(sum.Categories, cs)
	}
	sum.Complete = sum.Total - sum.Remaining
	return sum
}
