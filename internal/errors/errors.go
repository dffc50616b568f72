package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown    = "UNKNOWN"
	CodeValidation = "VALIDATION"
	CodeNotFound   = "NOT_FOUND"
	CodeStorage    = "STORAGE"
	CodePublish    = "PUBLISH"
	CodeFetch      = "FETCH"
	CodeConfig     = "CONFIG"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the application error code carried by err,
// or CodeUnknown if it doesn't carry one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// Specific error types and constructors

// ValidationError indicates bad or missing caller input.
type ValidationError struct {
	base Error
}

func (e *ValidationError) Error() string {
	return e.base.Error()
}

func (e *ValidationError) Code() string {
	return e.base.Code()
}

func (e *ValidationError) Unwrap() error {
	return e.base.Unwrap()
}

func NewValidationError(message string, cause error) error {
	return &ValidationError{
		base: Error{
			code:    CodeValidation,
			message: message,
			err:     cause,
		},
	}
}

// NotFoundError indicates a referenced local record does not exist.
type NotFoundError struct {
	base Error
}

func (e *NotFoundError) Error() string {
	return e.base.Error()
}

func (e *NotFoundError) Code() string {
	return e.base.Code()
}

func (e *NotFoundError) Unwrap() error {
	return e.base.Unwrap()
}

func NewNotFoundError(message string, cause error) error {
	return &NotFoundError{
		base: Error{
			code:    CodeNotFound,
			message: message,
			err:     cause,
		},
	}
}

// StorageError indicates a local persistence failure. Durability is the one
// hard guarantee this system offers, so these surface as request failures.
type StorageError struct {
	base Error
}

func (e *StorageError) Error() string {
	return e.base.Error()
}

func (e *StorageError) Code() string {
	return e.base.Code()
}

func (e *StorageError) Unwrap() error {
	return e.base.Unwrap()
}

func NewStorageError(message string, cause error) error {
	return &StorageError{
		base: Error{
			code:    CodeStorage,
			message: message,
			err:     cause,
		},
	}
}

// PublishError indicates a mirror write failure. Always recoverable: callers
// treat the mirror as unavailable and carry on.
type PublishError struct {
	base Error
}

func (e *PublishError) Error() string {
	return e.base.Error()
}

func (e *PublishError) Code() string {
	return e.base.Code()
}

func (e *PublishError) Unwrap() error {
	return e.base.Unwrap()
}

func NewPublishError(message string, cause error) error {
	return &PublishError{
		base: Error{
			code:    CodePublish,
			message: message,
			err:     cause,
		},
	}
}

// FetchError indicates a mirror read failure. The affected mirror contributes
// zero messages for that round; never fatal to the overall read.
type FetchError struct {
	base Error
}

func (e *FetchError) Error() string {
	return e.base.Error()
}

func (e *FetchError) Code() string {
	return e.base.Code()
}

func (e *FetchError) Unwrap() error {
	return e.base.Unwrap()
}

func NewFetchError(message string, cause error) error {
	return &FetchError{
		base: Error{
			code:    CodeFetch,
			message: message,
			err:     cause,
		},
	}
}

// ConfigError indicates invalid or missing configuration.
type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string {
	return e.base.Error()
}

func (e *ConfigError) Code() string {
	return e.base.Code()
}

func (e *ConfigError) Unwrap() error {
	return e.base.Unwrap()
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{
		base: Error{
			code:    CodeConfig,
			message: message,
			err:     cause,
		},
	}
}
