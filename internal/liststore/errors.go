package liststore

import "errors"

var (
	// ErrCategoryNotFound is returned when a mutation names a category the list does not have.
	// The list is left untouched and nothing is persisted.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrItemNotFound is returned by CompleteItem when no item in the category has the name.
	ErrItemNotFound = errors.New("item not found")

	errNoList = errors.New("snapshot has no list")
)
