package discovery

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// Candidate is a file produced by the walker before scoring.
type Candidate struct {
	Path     string // absolute
	Relative string
	Name     string
	Language entities.Language
	Depth    int // directories below the scan root
}

// skipDirs are dependency/vendor/build directories that never contain a
// project's own entrypoint.
var skipDirs = map[string]struct{}{
	"node_modules":  {},
	"vendor":        {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	"virtualenv":    {},
	"target":        {},
	"build":         {},
	"dist":          {},
	"__pycache__":   {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	".terraform":    {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
	".idea":         {},
	".vscode":       {},
}

// Walker performs the bounded-depth traversal of a project tree.
type Walker struct {
	root     string
	maxDepth int
	exclude  map[string]struct{}
	ignorer  *ignore.GitIgnore
}

// NewWalker creates a walker rooted at root. extraExclude entries come from
// the configuration and are merged with the built-in skip table; a root
// .gitignore is honored when present.
func NewWalker(root string, maxDepth int, extraExclude []string) *Walker {
	exclude := make(map[string]struct{}, len(skipDirs)+len(extraExclude))
	for name := range skipDirs {
		exclude[name] = struct{}{}
	}
	for _, name := range extraExclude {
		exclude[name] = struct{}{}
	}

	var ignorer *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		ignorer = gi
	}

	return &Walker{root: root, maxDepth: maxDepth, exclude: exclude, ignorer: ignorer}
}

// Walk traverses the tree and returns every language-tagged candidate file.
// Unreadable directories are recorded as warnings and skipped; an empty
// candidate list is a valid terminal state, not a failure.
func (w *Walker) Walk() ([]Candidate, []entities.ScanWarning, int) {
	var (
		candidates []Candidate
		warnings   []entities.ScanWarning
		scanned    int
	)

	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, entities.ScanWarning{Path: path, Message: err.Error()})
			logger.Warnf("Skipping unreadable path %q: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if path == w.root {
				return nil
			}
			name := d.Name()
			if _, skip := w.exclude[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			// A directory at the bound can only hold files past it.
			if depthOf(rel) >= w.maxDepth {
				return filepath.SkipDir
			}
			if w.ignorer != nil && w.ignorer.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if w.ignorer != nil && w.ignorer.MatchesPath(rel) {
			return nil
		}

		scanned++

		spec := SpecForExtension(filepath.Ext(d.Name()))
		if spec == nil {
			return nil
		}

		candidates = append(candidates, Candidate{
			Path:     path,
			Relative: rel,
			Name:     d.Name(),
			Language: spec.Language,
			Depth:    depthOf(rel),
		})
		return nil
	})
	if err != nil {
		// WalkDir only returns an error our callback produced; we never do.
		warnings = append(warnings, entities.ScanWarning{Path: w.root, Message: err.Error()})
	}

	return candidates, warnings, scanned
}

// depthOf counts the directories between the scan root and a relative path.
func depthOf(rel string) int {
	if rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator))
}
