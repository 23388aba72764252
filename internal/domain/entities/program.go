package entities

// Language is the closed set of language tags the classifier can assign.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangTerraform  Language = "terraform"
	LangShell      Language = "shell"
)

// Framework is a detected web/application framework with the manifest
// evidence that identified it.
type Framework struct {
	Name    string
	Version string // captured from the manifest when structured enough
	Entry   string // framework-designated entrypoint file, if any
	Command map[string]string
}

// Complexity is a coarse size bucket derived from line count.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityModerate    Complexity = "moderate"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very-complex"
)

// Program is one discovered executable candidate with everything learned
// about it: classification, score, environment, and dependency state.
type Program struct {
	Path         string // absolute
	RelativePath string // relative to the scan root, slash-separated
	Name         string
	Language     Language
	Framework    *Framework
	Score        int
	Depth        int

	Interpreters []string // candidate interpreter binaries, preference order
	HasShebang   bool
	Executable   bool
	Complexity   Complexity

	Environment  *EnvironmentInfo
	Dependencies []Dependency
	Analyzed     bool // dependency analysis ran (it may still yield nothing)
}

// PreferredKey identifies the program for preferred-command persistence.
func (p *Program) PreferredKey() string {
	return string(p.Language) + ":" + p.Name
}

// MissingRequired returns the required dependencies currently reported
// missing, in declaration order.
func (p *Program) MissingRequired() []Dependency {
	var missing []Dependency
	for _, dep := range p.Dependencies {
		if dep.Required && dep.Availability == AvailabilityMissing {
			missing = append(missing, dep)
		}
	}
	return missing
}

// ScanWarning is a non-fatal problem encountered while walking the tree.
// Warnings never abort a scan.
type ScanWarning struct {
	Path    string
	Message string
}

// ScanResult is the complete outcome of one discovery pass.
type ScanResult struct {
	Root     string
	Programs []*Program
	Warnings []ScanWarning
	Scanned  int // files visited, including those rejected by the classifier
}
