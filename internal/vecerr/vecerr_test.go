package vecerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// EH01: New carries kind and message, no cause.
func TestNew(t *testing.T) {
	// Given/When: a precondition-violation error is constructed
	err := New(PreconditionViolation, "update already in progress")

	// Then: its Kind and message round-trip, and there is no cause
	assert.Equal(t, PreconditionViolation, err.Kind)
	assert.Nil(t, err.Unwrap())
	assert.Contains(t, err.Error(), "update already in progress")
}

// EH02: Wrap preserves the underlying cause for errors.Is/As unwrapping.
func TestWrap(t *testing.T) {
	// Given: an underlying I/O failure
	cause := errors.New("disk full")

	// When: it is wrapped as an io-error
	err := Wrap(IOError, cause, "writing index.json")

	// Then: Unwrap returns the original cause
	require.Equal(t, cause, err.Unwrap())
	assert.Equal(t, IOError, err.Kind)
}

// EH03: errors.Is matches on Kind via a bare Sentinel, ignoring message/cause.
func TestIs_MatchesOnKind(t *testing.T) {
	// Given: a wrapped not-found error
	err := Wrap(NotFound, errors.New("missing"), "sidecar abc.json")

	// Then: it matches a Sentinel of the same kind but not a different one
	assert.True(t, errors.Is(err, Sentinel(NotFound)))
	assert.False(t, errors.Is(err, Sentinel(DataCorruption)))
}

// EH04: KindOf extracts the kind from a wrapped error chain.
func TestKindOf(t *testing.T) {
	// Given: a provider error wrapped inside an io-error
	inner := New(ProviderError, "embeddings returned rate_limited")
	outer := Wrap(IOError, inner, "ingest aborted")

	// When: KindOf is applied to the outer error
	kind, ok := KindOf(outer)

	// Then: it reports the outer (nearest) kind
	require.True(t, ok)
	assert.Equal(t, IOError, kind)

	// And: KindOf on a plain error reports not-ok
	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}
