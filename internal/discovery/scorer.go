package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scoring policy: additive bonuses layered on a language-agnostic base.
// Higher means more likely the intended entrypoint.
const (
	frameworkMainBonus = 50
	mainPatternBonus   = 15
	mainNameBonus      = 10
	exactNameBonus     = 5
	manifestBonus      = 10
	dunderMainBonus    = 12
	shebangBonus       = 8
	appAssignBonus     = 8
	mainFuncBonus      = 6
	executableBonus    = 5
	maxDepthBonus      = 10
	depthPenaltyStep   = 2
	headLines          = 10
)

// mainNamePrefixes are filename conventions that mark an intended
// entrypoint (main.py, app.js, index.ts, server.go, ...).
var mainNamePrefixes = []string{
	"main.", "app.", "index.", "start.", "run.", "launcher.",
	"entry.", "__main__.", "server.", "cli.", "manage.", "wsgi.", "asgi.",
}

var mainNames = []string{
	"main", "app", "index", "start", "run", "manage", "server", "cli", "entry",
}

// frameworkMainFiles are relative file names that a framework designates as
// its entrypoint; they outrank every naming convention.
var frameworkMainFiles = map[string]struct{}{
	"manage.py":      {},
	"wsgi.py":        {},
	"asgi.py":        {},
	"next.config.js": {},
	"app.js":         {},
	"main.go":        {},
	"main.rs":        {},
	"src/index.js":   {},
	"src/main.js":    {},
	"src/main.ts":    {},
}

// ScoredCandidate pairs a candidate with its score and the content evidence
// gathered while scoring (shebang, executable bit).
type ScoredCandidate struct {
	Candidate
	Score      int
	HasShebang bool
	Executable bool
}

// Score assigns the suitability score for one candidate. manifestPresent is
// the framework-manifest bonus flag computed once per directory.
func Score(c Candidate, manifestPresent bool) ScoredCandidate {
	scored := ScoredCandidate{Candidate: c}
	nameLower := strings.ToLower(c.Name)
	stem := strings.TrimSuffix(nameLower, filepath.Ext(nameLower))

	if _, ok := frameworkMainFiles[nameLower]; ok {
		scored.Score += frameworkMainBonus
	} else if _, ok := frameworkMainFiles[filepath.ToSlash(strings.ToLower(c.Relative))]; ok {
		scored.Score += frameworkMainBonus
	}

	for _, prefix := range mainNamePrefixes {
		if strings.HasPrefix(nameLower, prefix) {
			scored.Score += mainPatternBonus
			break
		}
	}

	for _, main := range mainNames {
		if strings.Contains(stem, main) {
			scored.Score += mainNameBonus
			if stem == main {
				scored.Score += exactNameBonus
			}
			break
		}
	}

	if manifestPresent {
		scored.Score += manifestBonus
	}

	scored.HasShebang, scored.Score = scoreContent(c.Path, scored.Score)

	if info, err := os.Stat(c.Path); err == nil && info.Mode()&0o111 != 0 {
		scored.Executable = true
		scored.Score += executableBonus
	}

	if bonus := maxDepthBonus - depthPenaltyStep*c.Depth; bonus > 0 {
		scored.Score += bonus
	}

	return scored
}

// scoreContent inspects the first lines of the file for entrypoint markers.
// Read failures leave the score untouched; scoring never fails.
func scoreContent(path string, score int) (bool, int) {
	f, err := os.Open(path)
	if err != nil {
		return false, score
	}
	defer f.Close()

	var (
		lines      []string
		hasShebang bool
	)
	scanner := bufio.NewScanner(f)
	for i := 0; i < headLines && scanner.Scan(); i++ {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		hasShebang = true
		score += shebangBonus
	}

	head := strings.Join(lines, "\n")
	if strings.Contains(head, `if __name__ == "__main__":`) ||
		strings.Contains(head, "if __name__ == '__main__':") {
		score += dunderMainBonus
	}
	if strings.Contains(head, "app =") || strings.Contains(head, "app=") {
		score += appAssignBonus
	}
	if strings.Contains(head, "func main(") || strings.Contains(head, "def main") ||
		strings.Contains(head, "main(") {
		score += mainFuncBonus
	}

	return hasShebang, score
}

// ManifestPresent reports whether dir holds any manifest of the candidate's
// language table row.
func ManifestPresent(dir string, c Candidate) bool {
	spec := SpecForLanguage(c.Language)
	if spec == nil {
		return false
	}
	for _, manifest := range spec.Manifests {
		if _, err := os.Stat(filepath.Join(dir, manifest)); err == nil {
			return true
		}
	}
	return false
}

// SortDeterministic orders scored candidates by score descending, breaking
// ties by shorter path depth and then lexical path order, so repeated scans
// of an unchanged tree produce byte-identical orderings.
func SortDeterministic(scored []ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Depth != scored[j].Depth {
			return scored[i].Depth < scored[j].Depth
		}
		return scored[i].Relative < scored[j].Relative
	})
}
