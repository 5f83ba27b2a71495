package service

import "fmt"

// ValidationError reports a caller-correctable input problem. No state is
// mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError reports an action attempted from a state that does
// not permit it.
type InvalidTransitionError struct {
	Document string
	From     string
	Action   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot be %s from status %q", e.Document, e.Action, e.From)
}

// ForbiddenError reports an actor role that is not allowed to perform an
// action. Transitions check this themselves rather than trusting callers.
type ForbiddenError struct {
	Role   string
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %q is not allowed to %s", e.Role, e.Action)
}

// StockInsufficientError reports a subtract that would drive an item's stock
// negative. The whole operation it belongs to is aborted.
type StockInsufficientError struct {
	ItemID    string
	Requested float64
}

func (e *StockInsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %.2f", e.ItemID, e.Requested)
}

// ConflictError reports an operation already performed, such as revalidating
// an FRB that already produced a DO or PR.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
