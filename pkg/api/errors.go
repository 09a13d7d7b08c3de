package api

import (
	"errors"
	"fmt"
)

// Error is a classified failure surfaced to the caller instead of being
// recorded as a stage outcome, e.g. a missing input path or a
// cluster-facing operation attempted with no context selected.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errorf builds a classified error.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, or KindNone for nil and
// unclassified errors.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindNone
}
