// Package apperr defines the failure taxonomy shared by the COD components.
// Every error carries a stable code and a user-facing Vietnamese message.
package apperr

import "github.com/go-faster/errors"

// Kind groups failures the way callers react to them.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindInvalidInput Kind = "INVALID_INPUT"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidState Kind = "INVALID_STATE"
	KindDuplicate    Kind = "DUPLICATE_ACTIVE_REQUEST"
	KindPersistence  Kind = "PERSISTENCE_ERROR"
)

// Error is a classified failure. Values declared with New are sentinels;
// Wrap returns a copy carrying the underlying cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

// New declares a sentinel error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.cause.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any error with the same code, so wrapped copies compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Wrap attaches a cause without changing the code or message.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

// KindOf returns the kind of err, or KindPersistence for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// MessageOf returns the user message of err, falling back to a generic one.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MsgInternal
}

// CodeOf returns the stable code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return string(KindPersistence)
}

// MsgInternal is shown when a failure has no classified message.
const MsgInternal = "Đã xảy ra lỗi hệ thống, vui lòng thử lại sau"
