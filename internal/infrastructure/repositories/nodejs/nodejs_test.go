//go:build unit

package nodejs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/infrastructure/repositories/nodejs"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDetectFlavor(t *testing.T) {
	t.Parallel()

	t.Run("should detect pnpm from its lockfile", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		write(t, dir, "pnpm-lock.yaml", "lockfileVersion: 9\n")
		write(t, dir, "yarn.lock", "")

		// when
		flavor := nodejs.DetectFlavor(dir)

		// then
		assert.Equal(t, entities.ManagerPnpm, flavor)
	})

	t.Run("should detect yarn from its lockfile", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		write(t, dir, "yarn.lock", "")

		// when
		flavor := nodejs.DetectFlavor(dir)

		// then
		assert.Equal(t, entities.ManagerYarn, flavor)
	})

	t.Run("should default to npm", func(t *testing.T) {
		t.Parallel()

		// when
		flavor := nodejs.DetectFlavor(t.TempDir())

		// then
		assert.Equal(t, entities.ManagerNpm, flavor)
	})
}

func TestNodeParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("should mark runtime deps required and dev deps optional", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		write(t, dir, "package.json",
			`{"dependencies": {"express": "^4.18.0", "axios": "^1.6.0"}, "devDependencies": {"jest": "^29.0.0"}}`)

		// when
		deps, err := nodejs.New(entities.ManagerNpm).ParseManifest(dir)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 3)
		assert.Equal(t, "axios", deps[0].Name) // runtime deps sorted first
		assert.Equal(t, "express", deps[1].Name)
		assert.True(t, deps[0].Required)
		assert.True(t, deps[1].Required)
		assert.Equal(t, "jest", deps[2].Name)
		assert.False(t, deps[2].Required)
	})

	t.Run("should fail on malformed JSON", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		write(t, dir, "package.json", "{not json")

		// when
		_, err := nodejs.New(entities.ManagerNpm).ParseManifest(dir)

		// then
		require.Error(t, err)
	})
}

func TestNodeCheckAvailable(t *testing.T) {
	t.Parallel()

	t.Run("should report available when the package dir exists", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "express"), 0o755))
		dep := entities.Dependency{Name: "express", Manager: entities.ManagerNpm}

		// when
		availability := nodejs.New(entities.ManagerNpm).CheckAvailable(context.Background(), dep, dir)

		// then
		assert.Equal(t, entities.AvailabilityAvailable, availability)
	})

	t.Run("should handle scoped package names", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "@nestjs", "core"), 0o755))
		dep := entities.Dependency{Name: "@nestjs/core", Manager: entities.ManagerNpm}

		// when
		availability := nodejs.New(entities.ManagerNpm).CheckAvailable(context.Background(), dep, dir)

		// then
		assert.Equal(t, entities.AvailabilityAvailable, availability)
	})

	t.Run("should report missing without node_modules", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entities.Dependency{Name: "express", Manager: entities.ManagerNpm}

		// when
		availability := nodejs.New(entities.ManagerNpm).CheckAvailable(context.Background(), dep, t.TempDir())

		// then
		assert.Equal(t, entities.AvailabilityMissing, availability)
	})
}

func TestNodePlanInstall(t *testing.T) {
	t.Parallel()

	t.Run("should emit one bulk action with the flavor's command", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		deps := []entities.Dependency{
			{Name: "express", Manager: entities.ManagerYarn},
			{Name: "axios", Manager: entities.ManagerYarn},
		}

		// when
		actions := nodejs.New(entities.ManagerYarn).PlanInstall(deps, dir)

		// then
		require.Len(t, actions, 1)
		assert.Equal(t, "yarn install", actions[0].Command)
		assert.Len(t, actions[0].Dependencies, 2)
	})
}
