package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so the transport layer can map it to a
// response without inspecting messages.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindAttachment Kind = "attachment"
	KindInternal   Kind = "internal"
)

// Error is the classified failure every service operation returns instead of
// letting collaborator faults escape unwrapped.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the failure kind of err, or KindInternal for errors that
// did not originate from a service classification.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
