package models

import (
	"errors"
	"fmt"
)

// ErrSendInFlight is returned when a message is submitted while another send is outstanding.
var ErrSendInFlight = errors.New("a message is already being sent")

// TransportError represents a network-level failure: the request could not be made,
// the server answered with a non-success status, or the body was not valid JSON.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents an application-level failure reported by the backend with ok=false.
type APIError struct {
	Op      string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Op + ": request rejected"
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// ValidationError represents an error when local validation fails
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError represents an error when storage operations fail
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
