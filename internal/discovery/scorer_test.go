//go:build unit

package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/omnirun/internal/discovery"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScore(t *testing.T) {
	t.Parallel()

	t.Run("should rank app.py above a helper module", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		appPath := writeFile(t, dir, "app.py", "import flask\n\nif __name__ == \"__main__\":\n    run()\n")
		helperPath := writeFile(t, dir, "utils/helper.py", "def helper():\n    return 1\n")

		app := discovery.Candidate{
			Path: appPath, Relative: "app.py", Name: "app.py",
			Language: entities.LangPython, Depth: 0,
		}
		helper := discovery.Candidate{
			Path: helperPath, Relative: filepath.Join("utils", "helper.py"), Name: "helper.py",
			Language: entities.LangPython, Depth: 1,
		}

		// when
		appScored := discovery.Score(app, false)
		helperScored := discovery.Score(helper, false)

		// then
		assert.Greater(t, appScored.Score, helperScored.Score)
	})

	t.Run("should grant the shebang bonus and mark the flag", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		withShebang := writeFile(t, dir, "tool.py", "#!/usr/bin/env python3\nprint(1)\n")
		without := writeFile(t, dir, "other.py", "print(1)\n")

		// when
		scored := discovery.Score(discovery.Candidate{
			Path: withShebang, Relative: "tool.py", Name: "tool.py",
			Language: entities.LangPython,
		}, false)
		plain := discovery.Score(discovery.Candidate{
			Path: without, Relative: "other.py", Name: "other.py",
			Language: entities.LangPython,
		}, false)

		// then
		assert.True(t, scored.HasShebang)
		assert.False(t, plain.HasShebang)
		assert.Greater(t, scored.Score, plain.Score)
	})

	t.Run("should grant the executable-bit bonus", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		path := writeFile(t, dir, "script.sh", "echo hi\n")
		require.NoError(t, os.Chmod(path, 0o755))

		// when
		scored := discovery.Score(discovery.Candidate{
			Path: path, Relative: "script.sh", Name: "script.sh",
			Language: entities.LangShell,
		}, false)

		// then
		assert.True(t, scored.Executable)
	})

	t.Run("should penalize depth", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		shallow := writeFile(t, dir, "main.py", "print(1)\n")
		deep := writeFile(t, dir, "a/b/c/main.py", "print(1)\n")

		// when
		shallowScored := discovery.Score(discovery.Candidate{
			Path: shallow, Relative: "main.py", Name: "main.py",
			Language: entities.LangPython, Depth: 0,
		}, false)
		deepScored := discovery.Score(discovery.Candidate{
			Path: deep, Relative: filepath.Join("a", "b", "c", "main.py"), Name: "main.py",
			Language: entities.LangPython, Depth: 3,
		}, false)

		// then
		assert.Greater(t, shallowScored.Score, deepScored.Score)
	})

	t.Run("should never fail on an unreadable file", func(t *testing.T) {
		t.Parallel()

		// given
		candidate := discovery.Candidate{
			Path: "/nonexistent/nowhere.py", Relative: "nowhere.py", Name: "nowhere.py",
			Language: entities.LangPython,
		}

		// when
		scored := discovery.Score(candidate, false)

		// then
		assert.Positive(t, scored.Score) // naming bonuses still apply
	})
}

func TestSortDeterministic(t *testing.T) {
	t.Parallel()

	t.Run("should break score ties by depth then lexical path", func(t *testing.T) {
		t.Parallel()

		// given
		scored := []discovery.ScoredCandidate{
			{Candidate: discovery.Candidate{Relative: "z.py", Depth: 1}, Score: 10},
			{Candidate: discovery.Candidate{Relative: "b.py", Depth: 0}, Score: 10},
			{Candidate: discovery.Candidate{Relative: "a.py", Depth: 0}, Score: 10},
			{Candidate: discovery.Candidate{Relative: "top.py", Depth: 2}, Score: 50},
		}

		// when
		discovery.SortDeterministic(scored)

		// then
		assert.Equal(t, "top.py", scored[0].Relative)
		assert.Equal(t, "a.py", scored[1].Relative)
		assert.Equal(t, "b.py", scored[2].Relative)
		assert.Equal(t, "z.py", scored[3].Relative)
	})

	t.Run("should produce identical output on repeated sorts", func(t *testing.T) {
		t.Parallel()

		// given
		build := func() []discovery.ScoredCandidate {
			return []discovery.ScoredCandidate{
				{Candidate: discovery.Candidate{Relative: "m.py", Depth: 1}, Score: 25},
				{Candidate: discovery.Candidate{Relative: "a.py", Depth: 1}, Score: 25},
				{Candidate: discovery.Candidate{Relative: "k.py", Depth: 0}, Score: 25},
			}
		}
		first := build()
		second := build()

		// when
		discovery.SortDeterministic(first)
		discovery.SortDeterministic(second)

		// then
		assert.Equal(t, first, second)
	})
}
