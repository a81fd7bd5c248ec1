package lockfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LF01: a second TryLock on the same folder fails while the first holds it.
func TestTryLock_SecondHolderFails(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	ok, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer first.Unlock()

	second := New(dir)
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)
}

// LF02: unlocking frees the folder for another holder.
func TestUnlock_FreesForAnotherHolder(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	ok, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, first.Unlock())

	second := New(dir)
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	_ = second.Unlock()
}
