package usecase

import "fmt"

type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type ErrForbidden struct {
	Message string
}

func (e ErrForbidden) Error() string {
	return e.Message
}

type ErrConflict struct {
	Message string
}

func (e ErrConflict) Error() string {
	return e.Message
}

// ErrInvalidOperation marks an operation that does not apply to the
// current state of the entity, e.g. assigning a user-owned robot.
type ErrInvalidOperation struct {
	Message string
}

func (e ErrInvalidOperation) Error() string {
	return e.Message
}
