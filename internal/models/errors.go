package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation error")
	ErrConversationCompleted = errors.New("conversation already completed")
)

// UnknownCategoryError is returned when a stored conversation references a
// category the catalog does not define.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Category)
}
