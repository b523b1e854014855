package main

import "fmt"

// ServiceError carries the service and operation an error surfaced from.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error formats as: [Service.Operation] error message
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s.%s] %v", e.Service, e.Operation, e.Err)
}

// Unwrap returns the original error for errors.Is/errors.As chains.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WrapError creates an error with service context. Returns nil if err is nil.
func WrapError(service, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Operation: operation, Err: err}
}

// ValidationError marks request-fatal validation failures (missing spec keys,
// unknown columns) so the server can report them as client errors.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
