package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeCache        = "CACHE_ERROR"
)

type AppError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// InvalidInputError reports a malformed URL or identifier supplied by the caller.
type InvalidInputError struct {
	*AppError
	Field string
	Value string
}

func NewInvalidInputError(message, field, value string) *InvalidInputError {
	return &InvalidInputError{
		AppError: &AppError{
			Message: message,
			Code:    CodeInvalidInput,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// NotFoundError reports a resource that is absent, private or deleted.
type NotFoundError struct {
	*AppError
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message: fmt.Sprintf("%s not found: %s", resource, id),
			Code:    CodeNotFound,
			Context: map[string]any{
				"resource": resource,
				"id":       id,
			},
		},
		Resource: resource,
		ID:       id,
	}
}

// UpstreamError reports a failed API call or a response that violates the
// expected contract. Callers may retry the whole operation.
type UpstreamError struct {
	*AppError
	Operation  string
	StatusCode int
	Reason     string
}

func NewUpstreamError(message, operation string, cause error) *UpstreamError {
	return &UpstreamError{
		AppError: &AppError{
			Message: message,
			Code:    CodeUpstream,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

// WithStatus records the HTTP status and API reason of the failed call.
func (e *UpstreamError) WithStatus(statusCode int, reason string) *UpstreamError {
	e.StatusCode = statusCode
	e.Reason = reason
	e.Context["status_code"] = statusCode
	if reason != "" {
		e.Context["reason"] = reason
	}
	return e
}

func (e *UpstreamError) Retryable() bool {
	return true
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message: message,
			Code:    CodeCache,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return stderrors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target *UpstreamError
	return stderrors.As(err, &target)
}

// CodeOf returns the error code of the first AppError in the chain, or "".
func CodeOf(err error) string {
	var invalid *InvalidInputError
	var notFound *NotFoundError
	var upstream *UpstreamError
	var cacheErr *CacheError
	switch {
	case stderrors.As(err, &invalid):
		return invalid.Code
	case stderrors.As(err, &notFound):
		return notFound.Code
	case stderrors.As(err, &upstream):
		return upstream.Code
	case stderrors.As(err, &cacheErr):
		return cacheErr.Code
	}
	return ""
}

// As and Is re-export the standard library helpers so callers need a single
// errors import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
