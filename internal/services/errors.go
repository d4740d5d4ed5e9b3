package services

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidReference means the supplied owner id is not a well-formed ObjectID.
	ErrInvalidReference = errors.New("invalid owner reference")
	ErrRecordNotFound   = errors.New("record not found")
	ErrUserNotFound     = errors.New("user not found")
)

// StoreError marks a failure of the persistence layer (or the lock guarding
// it), as opposed to a domain outcome such as ErrProfileNotFound.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreFailure reports whether err, or any error joined into it, is a StoreError.
func IsStoreFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
