// Package report renders a scan result as JSON (stable, schema-backed) or
// human-readable text.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

//go:embed schema.json
var schemaFS embed.FS

// Schema returns the JSON schema the report output conforms to.
func Schema() []byte {
	data, _ := schemaFS.ReadFile("schema.json")
	return data
}

type jsonReport struct {
	Root         string        `json:"root"`
	ScannedFiles int           `json:"scanned_files"`
	Programs     []jsonProgram `json:"programs"`
	Warnings     []jsonWarning `json:"warnings"`
}

type jsonProgram struct {
	Path         string           `json:"path"`
	Name         string           `json:"name"`
	Language     string           `json:"language"`
	Framework    *jsonFramework   `json:"framework,omitempty"`
	Score        int              `json:"score"`
	Depth        int              `json:"depth"`
	Complexity   string           `json:"complexity,omitempty"`
	Executable   bool             `json:"executable"`
	Environment  *jsonEnvironment `json:"environment,omitempty"`
	Dependencies []jsonDependency `json:"dependencies,omitempty"`
}

type jsonFramework struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Entry   string `json:"entry,omitempty"`
}

type jsonEnvironment struct {
	Kind        string       `json:"kind,omitempty"`
	Path        string       `json:"path,omitempty"`
	Version     string       `json:"version,omitempty"`
	Activation  string       `json:"activation,omitempty"`
	TaskRunners []jsonRunner `json:"task_runners,omitempty"`
}

type jsonRunner struct {
	Kind  string   `json:"kind"`
	File  string   `json:"file"`
	Tasks []string `json:"tasks,omitempty"`
}

type jsonDependency struct {
	Name         string `json:"name"`
	Constraint   string `json:"constraint,omitempty"`
	Manager      string `json:"manager"`
	Required     bool   `json:"required"`
	Availability string `json:"availability"`
	Version      string `json:"version,omitempty"`
	Detail       string `json:"detail,omitempty"`
	Toolchain    bool   `json:"toolchain,omitempty"`
}

// WriteJSON renders the scan result as indented JSON. Program order is the
// scorer's deterministic order, untouched.
func WriteJSON(w io.Writer, result *entities.ScanResult) error {
	out := jsonReport{
		Root:         result.Root,
		ScannedFiles: result.Scanned,
		Programs:     make([]jsonProgram, 0, len(result.Programs)),
		Warnings:     make([]jsonWarning, 0, len(result.Warnings)),
	}

	for _, prog := range result.Programs {
		out.Programs = append(out.Programs, toJSONProgram(prog))
	}
	for _, warning := range result.Warnings {
		out.Warnings = append(out.Warnings, jsonWarning{Path: warning.Path, Message: warning.Message})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type jsonWarning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func toJSONProgram(prog *entities.Program) jsonProgram {
	out := jsonProgram{
		Path:       prog.RelativePath,
		Name:       prog.Name,
		Language:   string(prog.Language),
		Score:      prog.Score,
		Depth:      prog.Depth,
		Complexity: string(prog.Complexity),
		Executable: prog.Executable,
	}

	if prog.Framework != nil {
		out.Framework = &jsonFramework{
			Name:    prog.Framework.Name,
			Version: prog.Framework.Version,
			Entry:   prog.Framework.Entry,
		}
	}

	if env := prog.Environment; env != nil {
		je := &jsonEnvironment{
			Kind:       string(env.Kind),
			Path:       env.Path,
			Version:    env.Version,
			Activation: env.Activation,
		}
		for _, runner := range env.Runners {
			je.TaskRunners = append(je.TaskRunners, jsonRunner{
				Kind:  string(runner.Kind),
				File:  runner.File,
				Tasks: runner.Tasks,
			})
		}
		out.Environment = je
	}

	for _, dep := range prog.Dependencies {
		out.Dependencies = append(out.Dependencies, jsonDependency{
			Name:         dep.Name,
			Constraint:   dep.Constraint,
			Manager:      string(dep.Manager),
			Required:     dep.Required,
			Availability: string(dep.Availability),
			Version:      dep.Version,
			Detail:       dep.Detail,
			Toolchain:    dep.Toolchain,
		})
	}

	return out
}

// WriteText renders the scan result for terminals: ranked programs with
// their language, framework, and dependency summary.
func WriteText(w io.Writer, result *entities.ScanResult) error {
	fmt.Fprintf(w, "Scanned %d files under %s\n", result.Scanned, result.Root)
	if len(result.Programs) == 0 {
		fmt.Fprintln(w, "No executable programs found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d program(s):\n\n", len(result.Programs))
	for i, prog := range result.Programs {
		fmt.Fprintf(w, "%3d. %s  [%s, score %d]\n", i+1, prog.RelativePath, describe(prog), prog.Score)

		if env := prog.Environment; env != nil && env.Kind != "" {
			fmt.Fprintf(w, "     environment: %s (%s)\n", env.Kind, env.Path)
		}

		if prog.Analyzed {
			fmt.Fprintf(w, "     dependencies: %s\n", dependencySummary(prog.Dependencies))
			for _, dep := range prog.MissingRequired() {
				fmt.Fprintf(w, "       missing: %s %s (%s)\n", dep.Name, dep.Constraint, dep.Manager)
			}
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\n%d warning(s):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  %s: %s\n", warning.Path, warning.Message)
		}
	}
	return nil
}

func describe(prog *entities.Program) string {
	parts := []string{string(prog.Language)}
	if prog.Framework != nil {
		name := prog.Framework.Name
		if prog.Framework.Version != "" {
			name += " " + prog.Framework.Version
		}
		parts = append(parts, name)
	}
	if prog.Complexity != "" {
		parts = append(parts, string(prog.Complexity))
	}
	return strings.Join(parts, ", ")
}

func dependencySummary(deps []entities.Dependency) string {
	var available, missing, unknown int
	for _, dep := range deps {
		switch dep.Availability {
		case entities.AvailabilityAvailable:
			available++
		case entities.AvailabilityMissing:
			missing++
		default:
			unknown++
		}
	}
	return fmt.Sprintf("%d available, %d missing, %d unknown", available, missing, unknown)
}
