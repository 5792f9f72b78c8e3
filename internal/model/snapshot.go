package model

// Snapshot is the durable form of the store: the active list plus the pantry history.
type Snapshot struct {
	List   List     `json:"list"`
	Pantry []string `json:"pantry"`
}

// Clone returns a deep copy; the result shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		List:   s.List.Clone(),
		Pantry: append([]string{}, s.Pantry...),
	}
}

// DefaultCategories are the departments a fresh list starts with.
var DefaultCategories = []string{"Produce", "Dairy", "Protein", "Pantry", "Frozen"}

// DefaultSnapshot returns the seed data a new store starts from.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		List: List{
			{Name: "Produce", Items: []Item{
				{Name: "apples"},
				{Name: "grapes", Complete: true},
				{Name: "onion"},
				{Name: "pear"},
			}},
			{Name: "Dairy", Items: []Item{{Name: "milk", Complete: true}}},
			{Name: "Protein", Items: []Item{{Name: "Chicken"}}},
			{Name: "Pantry", Items: []Item{}},
			{Name: "Frozen", Items: []Item{}},
		},
		Pantry: []string{},
	}
}

// EmptySnapshot returns a snapshot with the given categories and no items.
func EmptySnapshot(categories []string) Snapshot {
	l := make(List, 0, len(categories))
	for _, name := range categories {
		l = append(l, Category{Name: name, Items: []Item{}})
	}
	return Snapshot{List: l, Pantry: []string{}}
}
