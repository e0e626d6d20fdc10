package cc1101

import "fmt"

// Error represents a protocol error
type Error struct {
	// Type is the error type
	Type ErrorType

	// Message is a human-readable error message
	Message string

	// Err is the underlying cause, if any
	Err error
}

// ErrorType categorizes protocol errors
type ErrorType int

const (
	// ErrMalformed indicates an undecodable line or a missing/invalid
	// header field
	ErrMalformed ErrorType = iota

	// ErrChecksum indicates the integrity tag did not match the payload
	ErrChecksum

	// ErrLink indicates a read/write failure on the underlying channel
	ErrLink

	// ErrSink indicates the destination write failed
	ErrSink

	// ErrCancelled indicates the operation was cancelled
	ErrCancelled

	// ErrProtocol indicates a protocol usage violation
	ErrProtocol
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cc1101 %s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("cc1101 %s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (t ErrorType) String() string {
	switch t {
	case ErrMalformed:
		return "malformed packet"
	case ErrChecksum:
		return "checksum mismatch"
	case ErrLink:
		return "link error"
	case ErrSink:
		return "sink error"
	case ErrCancelled:
		return "cancelled"
	case ErrProtocol:
		return "protocol error"
	default:
		return "unknown error"
	}
}

// NewError creates a new protocol error
func NewError(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// WrapError creates a new protocol error around an underlying cause
func WrapError(errType ErrorType, message string, err error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsMalformed checks if an error is a malformed-packet error
func IsMalformed(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrMalformed
	}
	return false
}

// IsChecksum checks if an error is a checksum-mismatch error
func IsChecksum(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrChecksum
	}
	return false
}

// IsLink checks if an error is a link error
func IsLink(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrLink
	}
	return false
}

// IsCancelled checks if an error indicates cancellation
func IsCancelled(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrCancelled
	}
	return false
}
