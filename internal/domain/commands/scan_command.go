package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/internal/analyzer"
	"github.com/rios0rios0/omnirun/internal/discovery"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
	infraRepos "github.com/rios0rios0/omnirun/internal/infrastructure/repositories"
)

const scanWorkers = 8

// Scan is the interface for the scan command.
type Scan interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ScanOptions) (*entities.ScanResult, error)
}

// ScanOptions holds runtime options for a single scan.
type ScanOptions struct {
	Root    string
	Analyze bool // run dependency analysis on each discovered program
}

// ScanCommand orchestrates the discovery flow: walk the tree, classify and
// score candidates, attach environment context, and (optionally) analyze
// dependencies.
type ScanCommand struct {
	registry *infraRepos.ManagerRegistry
}

// NewScanCommand creates a new ScanCommand with the given manager registry.
func NewScanCommand(registry *infraRepos.ManagerRegistry) *ScanCommand {
	return &ScanCommand{registry: registry}
}

// Execute runs a full discovery pass. The returned program list is in
// deterministic rank order; repeated scans of an unchanged tree yield
// identical output.
func (it *ScanCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ScanOptions,
) (*entities.ScanResult, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, statErr := os.Stat(root)
	if statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidTarget, opts.Root)
	}

	walker := discovery.NewWalker(root, settings.MaxDepth, settings.ExcludeDirs)
	candidates, warnings, scanned := walker.Walk()
	logger.Debugf("Walked %d files, %d candidates", scanned, len(candidates))

	scored := scoreAll(candidates)
	discovery.SortDeterministic(scored)

	result := &entities.ScanResult{
		Root:     root,
		Warnings: warnings,
		Scanned:  scanned,
	}

	// Per-directory context is computed once and shared by every program in
	// the directory.
	envCache := make(map[string]*entities.EnvironmentInfo)
	frameworkCache := make(map[string]*entities.Framework)

	for _, sc := range scored {
		dir := filepath.Dir(sc.Path)

		env, ok := envCache[dir]
		if !ok {
			env = discovery.DetectEnvironment(ctx, dir)
			envCache[dir] = env
		}

		frameworkKey := dir + "\x00" + string(sc.Language)
		framework, ok := frameworkCache[frameworkKey]
		if !ok {
			framework = discovery.DetectFramework(dir, sc.Language)
			frameworkCache[frameworkKey] = framework
		}

		prog := &entities.Program{
			Path:         sc.Path,
			RelativePath: filepath.ToSlash(sc.Relative),
			Name:         sc.Name,
			Language:     sc.Language,
			Framework:    framework,
			Score:        sc.Score,
			Depth:        sc.Depth,
			HasShebang:   sc.HasShebang,
			Executable:   sc.Executable,
			Complexity:   estimateComplexity(sc.Path),
			Environment:  env,
		}
		if spec := discovery.SpecForLanguage(sc.Language); spec != nil {
			prog.Interpreters = spec.Interpreters
		}

		result.Programs = append(result.Programs, prog)
	}

	if opts.Analyze {
		deps := analyzer.New(it.registry, settings.Timeout)
		for _, prog := range result.Programs {
			prog.Dependencies = deps.Analyze(ctx, prog)
			prog.Analyzed = true
		}
	}

	return result, nil
}

// scoreAll fans the scoring work out over a bounded worker pool. Order is
// restored by index, so concurrency never affects the output.
func scoreAll(candidates []discovery.Candidate) []discovery.ScoredCandidate {
	scored := make([]discovery.ScoredCandidate, len(candidates))

	manifestCache := sync.Map{}
	manifestPresent := func(c discovery.Candidate) bool {
		dir := filepath.Dir(c.Path)
		key := dir + "\x00" + string(c.Language)
		if v, ok := manifestCache.Load(key); ok {
			return v.(bool)
		}
		present := discovery.ManifestPresent(dir, c)
		manifestCache.Store(key, present)
		return present
	}

	sem := make(chan struct{}, scanWorkers)
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c discovery.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			scored[i] = discovery.Score(c, manifestPresent(c))
		}(i, c)
	}
	wg.Wait()

	return scored
}

// estimateComplexity buckets a program by line count. Unreadable files get
// no bucket rather than an error.
func estimateComplexity(path string) entities.Complexity {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}

	switch {
	case lines < 50:
		return entities.ComplexitySimple
	case lines < 200:
		return entities.ComplexityModerate
	case lines < 1000:
		return entities.ComplexityComplex
	default:
		return entities.ComplexityVeryComplex
	}
}
