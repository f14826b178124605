package engine

import "fmt"

// Kind classifies every failure the engine can surface. The set is closed:
// callers switch on it to decide rendering and retry policy.
type Kind int

const (
	KindTimeout Kind = iota
	KindNetwork
	KindNotFound
	KindRateLimited
	KindCircuitOpen
	KindUnclassified
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network_error"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindCircuitOpen:
		return "circuit_open"
	default:
		return "unclassified"
	}
}

// Error is a classified engine failure. Expected conditions (offline target,
// timeout, admission denial) are values of this type, never panics.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Message }

func NewError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Result is the uniform success-or-classified-failure wrapper every engine
// operation returns. The zero value is an ok Result holding T's zero value.
type Result[T any] struct {
	val T
	err *Error
}

func Ok[T any](v T) Result[T] { return Result[T]{val: v} }

func Fail[T any](e *Error) Result[T] { return Result[T]{err: e} }

func FailKind[T any](kind Kind, msg string) Result[T] {
	return Result[T]{err: NewError(kind, msg)}
}

func (r Result[T]) IsOk() bool { return r.err == nil }

// Value returns the held value; only meaningful when IsOk.
func (r Result[T]) Value() T { return r.val }

// Err returns the classified error, nil on success.
func (r Result[T]) Err() *Error { return r.err }

// Map applies fn to the value of an ok Result and passes failures through.
func (r Result[T]) Map(fn func(T) T) Result[T] {
	if r.err != nil {
		return r
	}
	return Ok(fn(r.val))
}

// AndThen chains a fallible step; it runs only on success.
func (r Result[T]) AndThen(fn func(T) Result[T]) Result[T] {
	if r.err != nil {
		return r
	}
	return fn(r.val)
}

// UnwrapOr returns the value on success and fallback otherwise.
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.val
}
