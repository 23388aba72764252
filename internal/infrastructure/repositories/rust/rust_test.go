//go:build unit

package rust_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/infrastructure/repositories/rust"
)

func writeCargoToml(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(content), 0o644))
}

func TestCargoParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("should decode string and table dependency values", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeCargoToml(t, dir, `
[package]
name = "demo"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
anyhow = "1.0.80"

[dev-dependencies]
criterion = "0.5"
`)

		// when
		deps, err := rust.New().ParseManifest(dir)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 3)

		assert.Equal(t, "anyhow", deps[0].Name)
		assert.Equal(t, "1.0.80", deps[0].Constraint)
		assert.True(t, deps[0].Required)

		assert.Equal(t, "serde", deps[1].Name)
		assert.Equal(t, "1.0", deps[1].Constraint)

		assert.Equal(t, "criterion", deps[2].Name)
		assert.False(t, deps[2].Required)
	})

	t.Run("should fail on malformed TOML", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeCargoToml(t, dir, "[dependencies\nserde = ")

		// when
		_, err := rust.New().ParseManifest(dir)

		// then
		require.Error(t, err)
	})
}

func TestCargoCheckAvailable(t *testing.T) {
	t.Parallel()

	t.Run("should treat a built target dir as available", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))
		dep := entities.Dependency{Name: "serde", Manager: entities.ManagerCargo}

		// when
		availability := rust.New().CheckAvailable(context.Background(), dep, dir)

		// then
		assert.Equal(t, entities.AvailabilityAvailable, availability)
	})

	t.Run("should report missing before the first build", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entities.Dependency{Name: "serde", Manager: entities.ManagerCargo}

		// when
		availability := rust.New().CheckAvailable(context.Background(), dep, t.TempDir())

		// then
		assert.Equal(t, entities.AvailabilityMissing, availability)
	})
}

func TestCargoPlanInstall(t *testing.T) {
	t.Parallel()

	t.Run("should build the whole graph in one action", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		deps := []entities.Dependency{{Name: "serde", Manager: entities.ManagerCargo}}

		// when
		actions := rust.New().PlanInstall(deps, dir)

		// then
		require.Len(t, actions, 1)
		assert.Equal(t, "cargo build", actions[0].Command)
	})
}
