package apperr

import "errors"

type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindForbidden       Kind = "forbidden"
	KindInvalidArgument Kind = "invalid_argument"
	KindPartialFailure  Kind = "partial_failure"
)

// Kind sentinels, usable with errors.Is against any *Error of that kind.
var (
	NotFound        = &Error{Kind: KindNotFound}
	Conflict        = &Error{Kind: KindConflict}
	Forbidden       = &Error{Kind: KindForbidden}
	InvalidArgument = &Error{Kind: KindInvalidArgument}
	PartialFailure  = &Error{Kind: KindPartialFailure}
)

// Error is the structured error every usecase returns to its callers:
// a kind, a human readable message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
	// Keys lists the records touched before a PartialFailure.
	Keys []string
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels (no message) by kind and other *Error values by identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" && t.Err == nil {
		return e.Kind == t.Kind
	}
	return e == t
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Partial reports a multi-record operation that failed after some records were written.
func Partial(err error, keys []string) *Error {
	return &Error{Kind: KindPartialFailure, Msg: "operation partially applied", Err: err, Keys: keys}
}

// KindOf returns the kind of the first *Error in err's chain, or "" for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsDomain reports whether err carries one of the request-level kinds, i.e. a
// precondition failed rather than storage.
func IsDomain(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindConflict, KindForbidden, KindInvalidArgument:
		return true
	}
	return false
}
