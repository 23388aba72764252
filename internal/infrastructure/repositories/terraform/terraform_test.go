//go:build unit

package terraform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/infrastructure/repositories/terraform"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestTerraformParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("should decode source and version from required_providers", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		write(t, dir, "versions.tf", `
terraform {
  required_providers {
    aws = {
      source  = "hashicorp/aws"
      version = "~> 5.0"
    }
    random = {
      source = "hashicorp/random"
    }
  }
}
`)

		// when
		deps, err := terraform.New().ParseManifest(dir)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 2)

		assert.Equal(t, "hashicorp/aws", deps[0].Name)
		assert.Equal(t, "~> 5.0", deps[0].Constraint)
		assert.True(t, deps[0].Required)

		assert.Equal(t, "hashicorp/random", deps[1].Name)
		assert.Empty(t, deps[1].Constraint)
	})

	t.Run("should skip files that fail to parse and keep the rest", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		write(t, dir, "broken.tf", "terraform {{{")
		write(t, dir, "versions.tf", `
terraform {
  required_providers {
    google = {
      source  = "hashicorp/google"
      version = ">= 4.0"
    }
  }
}
`)

		// when
		deps, err := terraform.New().ParseManifest(dir)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "hashicorp/google", deps[0].Name)
	})

	t.Run("should fail without any terraform files", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := terraform.New().ParseManifest(t.TempDir())

		// then
		require.Error(t, err)
	})
}

func TestTerraformCheckAvailable(t *testing.T) {
	t.Parallel()

	t.Run("should report available when the provider mirror exists", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".terraform", "providers"), 0o755))
		dep := entities.Dependency{Name: "hashicorp/aws", Manager: entities.ManagerTerraform}

		// when
		availability := terraform.New().CheckAvailable(context.Background(), dep, dir)

		// then
		assert.Equal(t, entities.AvailabilityAvailable, availability)
	})

	t.Run("should report missing before terraform init has run", func(t *testing.T) {
		t.Parallel()

		// given
		dep := entities.Dependency{Name: "hashicorp/aws", Manager: entities.ManagerTerraform}

		// when
		availability := terraform.New().CheckAvailable(context.Background(), dep, t.TempDir())

		// then
		assert.Equal(t, entities.AvailabilityMissing, availability)
	})
}

func TestTerraformPlanInstall(t *testing.T) {
	t.Parallel()

	t.Run("should initialize the working directory in one action", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		deps := []entities.Dependency{{Name: "hashicorp/aws", Manager: entities.ManagerTerraform}}

		// when
		actions := terraform.New().PlanInstall(deps, dir)

		// then
		require.Len(t, actions, 1)
		assert.Equal(t, "terraform init", actions[0].Command)
		assert.Equal(t, dir, actions[0].WorkDir)
	})
}
