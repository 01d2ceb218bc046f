package moderation

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by the local classifier when Classify is
// invoked before a successful model load. It marks a caller contract
// violation and is never silently degraded.
var ErrNotInitialized = errors.New("classifier model not initialized")

type decodeError struct {
	cause error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("image decode failed: %v", e.cause)
}

func (e *decodeError) Unwrap() error {
	return e.cause
}

func NewDecodeError(cause error) error {
	return &decodeError{cause: cause}
}

func IsDecodeError(err error) bool {
	var de *decodeError
	return errors.As(err, &de)
}

type inferenceError struct {
	cause error
}

func (e *inferenceError) Error() string {
	return fmt.Sprintf("model inference failed: %v", e.cause)
}

func (e *inferenceError) Unwrap() error {
	return e.cause
}

func NewInferenceError(cause error) error {
	return &inferenceError{cause: cause}
}

func IsInferenceError(err error) bool {
	var ie *inferenceError
	return errors.As(err, &ie)
}

// transportError covers timeouts, network failures and non-2xx responses
// from the remote moderation services.
type transportError struct {
	cause error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("moderation transport failed: %v", e.cause)
}

func (e *transportError) Unwrap() error {
	return e.cause
}

func NewTransportError(cause error) error {
	return &transportError{cause: cause}
}

func IsTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}
