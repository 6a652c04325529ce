package customerr

import "fmt"

// ConflictError reports an attempt to remove a taxonomy item that is still
// referenced by at least one expense. The settings update is abandoned whole.
type ConflictError struct {
	Kind string
	Item string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is linked to existing transactions", e.Kind, e.Item)
}

// ValidationError reports rejected caller input before it reaches storage.
type ValidationError struct {
	Field string
	Err   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Err)
}
