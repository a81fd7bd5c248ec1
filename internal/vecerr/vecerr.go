// Package vecerr defines the stable error taxonomy shared by the vector
// index and document layers: a small, fixed set of kinds callers can branch
// on with errors.Is/errors.As, independent of the wrapped cause's message.
package vecerr

import "fmt"

// Kind is a stable error classification. New kinds are never added lightly;
// callers match on these, not on message text.
type Kind string

const (
	// PreconditionViolation covers calls made in the wrong state: a second
	// beginUpdate while one is active, endUpdate with none active, an
	// insert with a missing vector or a duplicate id, createIndex over an
	// existing index without delete_if_exists.
	PreconditionViolation Kind = "precondition-violation"

	// NotFound covers references to things that don't exist: a query
	// against an index that was never created, a sidecar metadata file
	// referenced by an item but missing from disk.
	NotFound Kind = "not-found"

	// DataCorruption covers malformed on-disk state: an index.json or
	// catalog.json that fails to parse or has an invalid shape.
	DataCorruption Kind = "data-corruption"

	// ProviderError covers a non-success response from the embeddings
	// collaborator.
	ProviderError Kind = "provider-error"

	// IOError covers file read/write failures other than "not found" and
	// "corrupt".
	IOError Kind = "io-error"
)

// Error is the concrete error type carrying a Kind, a human-readable
// message, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, vecerr.Kind) style comparisons when the target
// is itself an *Error carrying only a Kind (see Sentinel).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error with the given kind and message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error with the given kind, message, and wrapped cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinel returns a bare *Error carrying only a Kind, suitable as the
// target of errors.Is(err, vecerr.Sentinel(vecerr.NotFound)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
