package tracker

import "fmt"

// ValidationError reports rejected user input, such as an empty tuition name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tracker: invalid %s: %s", e.Field, e.Reason)
}

// Code identifies the error class in handler summary logs.
func (e *ValidationError) Code() string { return "validation" }

// NotFoundError reports an operation against a tuition name the user never registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tracker: tuition %q not found", e.Name)
}

// Code identifies the error class in handler summary logs.
func (e *NotFoundError) Code() string { return "not_found" }

// DuplicateError reports an attempt to register a tuition name that already exists.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("tracker: tuition %q already exists", e.Name)
}

// Code identifies the error class in handler summary logs.
func (e *DuplicateError) Code() string { return "duplicate" }

// StorageError wraps backend failures (I/O, database connectivity).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("tracker: storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code identifies the error class in handler summary logs.
func (e *StorageError) Code() string { return "storage_unavailable" }

// MalformedDataError reports persisted data that cannot be decoded.
type MalformedDataError struct {
	Source string
	Err    error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("tracker: malformed data in %s: %v", e.Source, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }

// Code identifies the error class in handler summary logs.
func (e *MalformedDataError) Code() string { return "malformed_data" }
