package shortener

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at the store or service boundary.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalid
	KindStoreUnavailable
	KindWriteFailure
	KindNotFound
	KindShortenFailed
	KindResolveFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindInvalid:
		return "invalid"
	case KindStoreUnavailable:
		return "store unavailable"
	case KindWriteFailure:
		return "write failure"
	case KindNotFound:
		return "not found"
	case KindShortenFailed:
		return "shorten failed"
	case KindResolveFailed:
		return "resolve failed"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Error is a failure tagged with its Kind and the operation that produced it.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalid          = &Error{Kind: KindInvalid}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrWriteFailure     = &Error{Kind: KindWriteFailure}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrShortenFailed    = &Error{Kind: KindShortenFailed}
	ErrResolveFailed    = &Error{Kind: KindResolveFailed}
)

// ErrIDCollision reports that a generated ID already names a different URL.
var ErrIDCollision = errors.New("id already assigned to another url")

// E wraps err as an *Error of the given kind. E returns nil when err is nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil && e.Op == "":
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a bare sentinel of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}

	return t.Kind == e.Kind
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}
