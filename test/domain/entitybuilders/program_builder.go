//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/omnirun/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ProgramBuilder helps create test programs with a fluent interface.
type ProgramBuilder struct {
	*testkit.BaseBuilder
	path         string
	relative     string
	name         string
	language     entities.Language
	score        int
	depth        int
	dependencies []entities.Dependency
	analyzed     bool
}

// NewProgramBuilder creates a new program builder with sensible defaults.
func NewProgramBuilder() *ProgramBuilder {
	return &ProgramBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		path:        "/tmp/project/app.py",
		relative:    "app.py",
		name:        "app.py",
		language:    entities.LangPython,
		score:       50,
		depth:       0,
	}
}

// WithPath sets the absolute path.
func (b *ProgramBuilder) WithPath(path string) *ProgramBuilder {
	b.path = path
	return b
}

// WithRelative sets the root-relative path.
func (b *ProgramBuilder) WithRelative(relative string) *ProgramBuilder {
	b.relative = relative
	return b
}

// WithName sets the file name.
func (b *ProgramBuilder) WithName(name string) *ProgramBuilder {
	b.name = name
	return b
}

// WithLanguage sets the language tag.
func (b *ProgramBuilder) WithLanguage(lang entities.Language) *ProgramBuilder {
	b.language = lang
	return b
}

// WithScore sets the entrypoint score.
func (b *ProgramBuilder) WithScore(score int) *ProgramBuilder {
	b.score = score
	return b
}

// WithDepth sets the depth below the scan root.
func (b *ProgramBuilder) WithDepth(depth int) *ProgramBuilder {
	b.depth = depth
	return b
}

// WithDependencies sets the analyzed dependency list.
func (b *ProgramBuilder) WithDependencies(deps ...entities.Dependency) *ProgramBuilder {
	b.dependencies = deps
	b.analyzed = true
	return b
}

// Build creates the program (satisfies testkit.Builder interface).
func (b *ProgramBuilder) Build() interface{} {
	return b.BuildProgram()
}

// BuildProgram creates the program with a concrete return type.
func (b *ProgramBuilder) BuildProgram() *entities.Program {
	return &entities.Program{
		Path:         b.path,
		RelativePath: b.relative,
		Name:         b.name,
		Language:     b.language,
		Score:        b.score,
		Depth:        b.depth,
		Dependencies: b.dependencies,
		Analyzed:     b.analyzed,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ProgramBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.path = "/tmp/project/app.py"
	b.relative = "app.py"
	b.name = "app.py"
	b.language = entities.LangPython
	b.score = 50
	b.depth = 0
	b.dependencies = nil
	b.analyzed = false
	return b
}

// Clone creates a deep copy of the ProgramBuilder.
func (b *ProgramBuilder) Clone() testkit.Builder {
	clone := &ProgramBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		path:        b.path,
		relative:    b.relative,
		name:        b.name,
		language:    b.language,
		score:       b.score,
		depth:       b.depth,
		analyzed:    b.analyzed,
	}
	clone.dependencies = append(clone.dependencies, b.dependencies...)
	return clone
}
