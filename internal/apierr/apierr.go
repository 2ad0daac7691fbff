package apierr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindServer     Kind = "server"
)

// Error is the classified failure every client component returns.
// Status is zero when no response was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind) + " error"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "unable to reach the server", Err: err}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Status: 401, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Status: 400, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Wrap keeps the kind and status of err and prefixes its message with context.
// Errors that are not *Error are returned unchanged.
func Wrap(err error, context string) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return &Error{
		Kind:    apiErr.Kind,
		Status:  apiErr.Status,
		Message: context + ": " + apiErr.Error(),
		Err:     err,
	}
}

// Reclassify returns a copy of err under a new kind and message, keeping the status.
func Reclassify(err error, kind Kind, message string) error {
	var apiErr *Error
	status := 0
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsNetwork(err error) bool    { return KindOf(err) == KindNetwork }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsServer(err error) bool     { return KindOf(err) == KindServer }
