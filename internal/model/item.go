package model

// Item is a single grocery entry. Names are not unique within a category.
type Item struct {
	Name     string `json:"name"`
	Complete bool   `json:"complete"`
}

// Category is a fixed grocery department. Items keep insertion order.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// List is the ordered set of categories.
type List []Category

// Index returns the position of the category named name, or -1.
func (l List) Index(name string) int {
	for i := range l {
		if l[i].Name == name {
			return i
		}
	}
	return -1
}

// Names returns the category names in display order.
func (l List) Names() []string {
	out := make([]string, 0, len(l))
	for _, c := range l {
		out = append(out, c.Name)
	}
	return out
}

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, c := range l {
		out[i] = Category{Name: c.Name, Items: append([]Item{}, c.Items...)}
	}
	return out
}

// FirstItem returns the index of the first item named name, or -1.
func (c Category) FirstItem(name string) int {
	for i := range c.Items {
		if c.Items[i].Name == name {
			return i
		}
	}
	return -1
}
