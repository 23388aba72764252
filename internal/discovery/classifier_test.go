//go:build unit

package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/omnirun/internal/discovery"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

func TestSpecForExtension(t *testing.T) {
	t.Parallel()

	t.Run("should map known extensions to their language", func(t *testing.T) {
		t.Parallel()

		// given
		cases := map[string]entities.Language{
			".py":  entities.LangPython,
			".js":  entities.LangJavaScript,
			".ts":  entities.LangTypeScript,
			".go":  entities.LangGo,
			".rs":  entities.LangRust,
			".rb":  entities.LangRuby,
			".php": entities.LangPHP,
			".tf":  entities.LangTerraform,
			".sh":  entities.LangShell,
		}

		for ext, want := range cases {
			// when
			spec := discovery.SpecForExtension(ext)

			// then
			require.NotNil(t, spec, ext)
			assert.Equal(t, want, spec.Language, ext)
		}
	})

	t.Run("should return nil for unknown extensions", func(t *testing.T) {
		t.Parallel()

		// when
		spec := discovery.SpecForExtension(".xyz")

		// then
		assert.Nil(t, spec)
	})
}

func TestDetectFramework(t *testing.T) {
	t.Parallel()

	t.Run("should detect Django from manage.py", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "manage.py", "#!/usr/bin/env python\n")

		// when
		framework := discovery.DetectFramework(dir, entities.LangPython)

		// then
		require.NotNil(t, framework)
		assert.Equal(t, "Django", framework.Name)
		assert.Equal(t, "manage.py", framework.Entry)
	})

	t.Run("should detect Flask from requirements.txt", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "requirements.txt", "Flask==2.3.0\nrequests\n")

		// when
		framework := discovery.DetectFramework(dir, entities.LangPython)

		// then
		require.NotNil(t, framework)
		assert.Equal(t, "Flask", framework.Name)
	})

	t.Run("should prefer Next.js over React when both are present", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json",
			`{"dependencies": {"next": "14.0.0", "react": "18.2.0"}}`)

		// when
		framework := discovery.DetectFramework(dir, entities.LangJavaScript)

		// then
		require.NotNil(t, framework)
		assert.Equal(t, "Next.js", framework.Name)
		assert.Equal(t, "14.0.0", framework.Version)
	})

	t.Run("should share the JavaScript rows with TypeScript", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"dependencies": {"@nestjs/core": "10.0.0"}}`)

		// when
		framework := discovery.DetectFramework(dir, entities.LangTypeScript)

		// then
		require.NotNil(t, framework)
		assert.Equal(t, "NestJS", framework.Name)
	})

	t.Run("should detect Gin from go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "go.mod",
			"module example.com/api\n\ngo 1.22\n\nrequire github.com/gin-gonic/gin v1.9.1\n")

		// when
		framework := discovery.DetectFramework(dir, entities.LangGo)

		// then
		require.NotNil(t, framework)
		assert.Equal(t, "Gin", framework.Name)
	})

	t.Run("should return nil when no evidence exists", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()

		// when
		framework := discovery.DetectFramework(dir, entities.LangPython)

		// then
		assert.Nil(t, framework)
	})
}
