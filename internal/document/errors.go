package document

import "fmt"

type NotListError struct {
	Field string
}

func (e NotListError) Error() string {
	return fmt.Sprintf("not a list field: %s", e.Field)
}

type NotListOpError struct {
	Field string
}

func (e NotListOpError) Error() string {
	return fmt.Sprintf("list field %s must be edited through entry operations", e.Field)
}

type EntryNotFoundError struct {
	Field string
	ID    string
}

func (e EntryNotFoundError) Error() string {
	return fmt.Sprintf("no entry %s in %s", e.ID, e.Field)
}
