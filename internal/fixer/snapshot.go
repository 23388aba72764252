package fixer

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	domainRepos "github.com/rios0rios0/omnirun/internal/domain/repositories"
)

const stashMessage = "omnirun auto-fix backup"

// lockfilesByManager lists the files a manager invocation may rewrite in
// addition to its manifests. All of them are captured in the snapshot.
var lockfilesByManager = map[entities.Manager][]string{
	entities.ManagerPip:       {"requirements.txt", "Pipfile.lock", "poetry.lock"},
	entities.ManagerNpm:       {"package-lock.json"},
	entities.ManagerYarn:      {"yarn.lock"},
	entities.ManagerPnpm:      {"pnpm-lock.yaml"},
	entities.ManagerGoModules: {"go.sum"},
	entities.ManagerCargo:     {"Cargo.lock"},
	entities.ManagerMaven:     {},
	entities.ManagerGradle:    {"gradle.lockfile"},
	entities.ManagerBundler:   {"Gemfile.lock"},
	entities.ManagerComposer:  {"composer.lock"},
	entities.ManagerTerraform: {".terraform.lock.hcl"},
}

// TakeSnapshot captures the pre-fix state for a plan. The strategy is a
// tagged union selected once: a git-backed snapshot when root is a git
// worktree, plain manifest copies otherwise. Both variants copy the
// manifests and lockfiles the plan's actions may touch; the git variant
// additionally records a stash commit as a safety net.
func TakeSnapshot(root string, plan entities.FixPlan) (domainRepos.Snapshot, error) {
	files := snapshotTargets(plan)

	backup, err := copyFiles(files)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}

	repo, openErr := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if openErr != nil {
		return backup, nil
	}
	if _, wtErr := repo.Worktree(); wtErr != nil {
		// Bare repository: no worktree to stash.
		return backup, nil
	}

	// `git stash create` writes the stash commit without touching the
	// working tree or the stash reflog; the recorded hash stays applyable
	// for the session's lifetime.
	out, stashErr := exec.Command("git", "-C", root, "stash", "create", stashMessage).Output()
	stashRef := strings.TrimSpace(string(out))
	if stashErr != nil {
		logger.Warnf("git stash create failed, falling back to file backups only: %v", stashErr)
		return backup, nil
	}

	return &gitSnapshot{root: root, stashRef: stashRef, files: backup}, nil
}

// snapshotTargets returns the manifest/lockfile paths an action list may
// modify, keyed by absolute original path.
func snapshotTargets(plan entities.FixPlan) []string {
	seen := make(map[string]struct{})
	var targets []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		if _, err := os.Stat(path); err != nil {
			return
		}
		seen[path] = struct{}{}
		targets = append(targets, path)
	}

	for _, action := range plan.Actions {
		for _, name := range lockfilesByManager[action.Manager] {
			add(filepath.Join(action.WorkDir, name))
		}
		for _, manifest := range manifestNamesFor(action.Manager) {
			add(filepath.Join(action.WorkDir, manifest))
		}
	}
	return targets
}

// manifestNamesFor mirrors the manager manifest tables without needing the
// registry; the snapshot must not depend on manager instances.
func manifestNamesFor(manager entities.Manager) []string {
	switch manager {
	case entities.ManagerPip:
		return []string{"requirements.txt", "pyproject.toml"}
	case entities.ManagerNpm, entities.ManagerYarn, entities.ManagerPnpm:
		return []string{"package.json"}
	case entities.ManagerGoModules:
		return []string{"go.mod"}
	case entities.ManagerCargo:
		return []string{"Cargo.toml"}
	case entities.ManagerMaven:
		return []string{"pom.xml"}
	case entities.ManagerGradle:
		return []string{"build.gradle", "build.gradle.kts"}
	case entities.ManagerBundler:
		return []string{"Gemfile"}
	case entities.ManagerComposer:
		return []string{"composer.json"}
	default:
		return nil
	}
}

// fileSnapshot is the file-copy variant: originals copied to a temporary
// backup directory, keyed by absolute original path.
type fileSnapshot struct {
	backupDir string
	files     map[string]string // original path -> backup path
}

func copyFiles(paths []string) (*fileSnapshot, error) {
	backupDir, err := os.MkdirTemp("", fmt.Sprintf("omnirun-backup-%d-", time.Now().Unix()))
	if err != nil {
		return nil, err
	}

	snapshot := &fileSnapshot{backupDir: backupDir, files: make(map[string]string, len(paths))}
	for i, path := range paths {
		backupPath := filepath.Join(backupDir, fmt.Sprintf("%d-%s", i, filepath.Base(path)))
		if copyErr := copyFile(path, backupPath); copyErr != nil {
			_ = os.RemoveAll(backupDir)
			return nil, copyErr
		}
		snapshot.files[path] = backupPath
	}
	return snapshot, nil
}

// NoopSnapshot is the degenerate variant used when backups are disabled by
// configuration. Restore and Discard do nothing.
func NoopSnapshot() domainRepos.Snapshot { return noopSnapshot{} }

type noopSnapshot struct{}

func (noopSnapshot) Kind() string     { return "disabled" }
func (noopSnapshot) Location() string { return "" }
func (noopSnapshot) Restore() error   { return nil }
func (noopSnapshot) Discard() error   { return nil }

func (s *fileSnapshot) Kind() string { return "file-copy" }

func (s *fileSnapshot) Location() string { return s.backupDir }

func (s *fileSnapshot) Restore() error {
	var firstErr error
	for original, backup := range s.files {
		if err := copyFile(backup, original); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to restore %s: %w", original, err)
		}
	}
	return firstErr
}

func (s *fileSnapshot) Discard() error {
	return os.RemoveAll(s.backupDir)
}

// gitSnapshot is the git variant: manifest copies plus a stash commit. The
// file copies are the authoritative restore source (they also cover
// untracked lockfiles); the stash covers anything else an action touched.
type gitSnapshot struct {
	root     string
	stashRef string
	files    *fileSnapshot
}

func (s *gitSnapshot) Kind() string { return "git-stash" }

func (s *gitSnapshot) Location() string {
	return fmt.Sprintf("%s (stash %s)", s.files.backupDir, s.stashRef)
}

func (s *gitSnapshot) Restore() error {
	if err := s.files.Restore(); err != nil {
		return err
	}
	if s.stashRef == "" {
		return nil
	}
	// Apply, not pop: the commit is ours alone and not in the reflog.
	if out, err := exec.Command("git", "-C", s.root, "stash", "apply", s.stashRef).CombinedOutput(); err != nil {
		return fmt.Errorf("git stash apply %s: %w: %s", s.stashRef, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (s *gitSnapshot) Discard() error {
	// The stash commit is unreferenced and will be garbage collected.
	return s.files.Discard()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
