//go:build unit

package fixer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/fixer"
)

func TestSessionGuard(t *testing.T) {
	t.Parallel()

	t.Run("should reject a second acquisition of the same root", func(t *testing.T) {
		t.Parallel()

		// given
		guard := fixer.NewSessionGuard()
		require.NoError(t, guard.Acquire("/tmp/project", "first"))

		// when
		err := guard.Acquire("/tmp/project", "second")

		// then
		require.ErrorIs(t, err, entities.ErrSessionActive)
	})

	t.Run("should allow reacquisition after release", func(t *testing.T) {
		t.Parallel()

		// given
		guard := fixer.NewSessionGuard()
		require.NoError(t, guard.Acquire("/tmp/project", "first"))
		guard.Release("/tmp/project", "first")

		// when
		err := guard.Acquire("/tmp/project", "second")

		// then
		require.NoError(t, err)
	})

	t.Run("should ignore a release from a stale session", func(t *testing.T) {
		t.Parallel()

		// given
		guard := fixer.NewSessionGuard()
		require.NoError(t, guard.Acquire("/tmp/project", "holder"))

		// when
		guard.Release("/tmp/project", "stale")
		err := guard.Acquire("/tmp/project", "other")

		// then
		require.ErrorIs(t, err, entities.ErrSessionActive)
	})

	t.Run("should keep roots independent", func(t *testing.T) {
		t.Parallel()

		// given
		guard := fixer.NewSessionGuard()
		require.NoError(t, guard.Acquire("/tmp/a", "s1"))

		// when
		err := guard.Acquire("/tmp/b", "s2")

		// then
		assert.NoError(t, err)
	})
}
