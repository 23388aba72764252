//go:build unit

package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/report"
	"github.com/rios0rios0/omnirun/test/domain/entitybuilders"
)

func sampleResult() *entities.ScanResult {
	flask := entitybuilders.NewDependencyBuilder().
		WithName("flask").
		WithConstraint(">=2.0").
		WithAvailability(entities.AvailabilityMissing).
		BuildDependency()
	requests := entitybuilders.NewDependencyBuilder().
		WithName("requests").
		WithAvailability(entities.AvailabilityAvailable).
		BuildDependency()

	app := entitybuilders.NewProgramBuilder().
		WithPath("/tmp/project/app.py").
		WithScore(95).
		WithDependencies(flask, requests).
		BuildProgram()
	app.Framework = &entities.Framework{Name: "Flask", Version: "2.3.0"}
	app.Complexity = entities.ComplexityModerate
	app.Environment = &entities.EnvironmentInfo{
		Kind: entities.EnvVenv,
		Path: "/tmp/project/venv",
	}

	helper := entitybuilders.NewProgramBuilder().
		WithPath("/tmp/project/utils/helper.py").
		WithRelative("utils/helper.py").
		WithName("helper.py").
		WithDepth(1).
		WithScore(40).
		BuildProgram()

	return &entities.ScanResult{
		Root:     "/tmp/project",
		Programs: []*entities.Program{app, helper},
		Warnings: []entities.ScanWarning{{Path: "secrets/locked.py", Message: "permission denied"}},
		Scanned:  12,
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("should produce output that validates against the embedded schema", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer
		require.NoError(t, report.WriteJSON(&buf, sampleResult()))

		// when
		validation, err := gojsonschema.Validate(
			gojsonschema.NewBytesLoader(report.Schema()),
			gojsonschema.NewBytesLoader(buf.Bytes()),
		)

		// then
		require.NoError(t, err)
		assert.True(t, validation.Valid(), "schema violations: %v", validation.Errors())
	})

	t.Run("should keep the scorer's program order", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer

		// when
		require.NoError(t, report.WriteJSON(&buf, sampleResult()))

		// then
		output := buf.String()
		assert.Less(t, indexOf(t, output, "app.py"), indexOf(t, output, "utils/helper.py"))
	})
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	t.Run("should rank programs and summarize dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer

		// when
		require.NoError(t, report.WriteText(&buf, sampleResult()))

		// then
		output := buf.String()
		assert.Contains(t, output, "Scanned 12 files under /tmp/project")
		assert.Contains(t, output, "app.py")
		assert.Contains(t, output, "Flask 2.3.0")
		assert.Contains(t, output, "1 available, 1 missing, 0 unknown")
		assert.Contains(t, output, "missing: flask >=2.0 (pip)")
		assert.Contains(t, output, "permission denied")
	})

	t.Run("should say so when nothing was found", func(t *testing.T) {
		t.Parallel()

		// given
		var buf bytes.Buffer
		result := &entities.ScanResult{Root: "/tmp/empty", Scanned: 0}

		// when
		require.NoError(t, report.WriteText(&buf, result))

		// then
		assert.Contains(t, buf.String(), "No executable programs found.")
	})
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := bytes.Index([]byte(haystack), []byte(needle))
	require.GreaterOrEqual(t, idx, 0, "expected %q in output", needle)
	return idx
}
