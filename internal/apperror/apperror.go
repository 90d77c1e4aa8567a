// Package apperror defines the error kinds the service layer returns and the
// HTTP layer translates into status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrCapacity       = errors.New("capacity reached")
	ErrToken          = errors.New("token error")
	ErrMutation       = errors.New("mutation error")
	ErrForbidden      = errors.New("forbidden")
)

// Reason refines a kind when callers need to branch on it
// (an expired token is refreshable, an invalid one is not).
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNotRegistered Reason = "not_registered"
	ReasonBadPassword   Reason = "bad_password"
	ReasonExpired       Reason = "expired"
	ReasonInvalid       Reason = "invalid"
	ReasonAbsent        Reason = "absent"
	ReasonUserGone      Reason = "user_gone"
	ReasonNoEffect      Reason = "no_effect"
)

type AppError struct {
	Err     error  // kind sentinel
	Reason  Reason // optional refinement
	Message string // human-readable, safe to return to clients
	Field   string // offending field for validation errors
}

func (e *AppError) Error() string {
	if e.Reason != ReasonNone {
		return fmt.Sprintf("%s (%s): %s", e.Err, e.Reason, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// ReasonOf returns the Reason carried by err, if any.
func ReasonOf(err error) Reason {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ReasonNone
}

// MessageOf returns the client-safe message of err, or "" for unclassified errors.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}

func Authentication(reason Reason) *AppError {
	msg := "invalid credentials"
	if reason == ReasonNotRegistered {
		msg = "user is not registered"
	}
	return &AppError{Err: ErrAuthentication, Reason: reason, Message: msg}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func NotFound(resource string) *AppError {
	return &AppError{Err: ErrNotFound, Message: resource + " not found"}
}

func Capacity(limit int) *AppError {
	return &AppError{Err: ErrCapacity, Message: fmt.Sprintf("maximum number of profiles reached (%d)", limit)}
}

func Token(reason Reason) *AppError {
	var msg string
	switch reason {
	case ReasonExpired:
		msg = "token expired"
	case ReasonAbsent:
		msg = "token missing"
	case ReasonUserGone:
		msg = "user no longer exists"
	default:
		msg = "invalid token"
	}
	return &AppError{Err: ErrToken, Reason: reason, Message: msg}
}

func NoEffect() *AppError {
	return &AppError{Err: ErrMutation, Reason: ReasonNoEffect, Message: "failed to update list"}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}
