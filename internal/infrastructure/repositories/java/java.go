// Package java implements the PackageManager abstraction for Maven and
// Gradle, which share the JVM artifact model but differ in manifest format,
// local cache layout and install command.
package java

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

// gradleDepPattern matches `implementation 'group:artifact:version'` style
// declarations, with either quote character and any common configuration.
var gradleDepPattern = regexp.MustCompile(
	`(?m)^\s*(implementation|api|compileOnly|runtimeOnly|testImplementation)\s*[(]?\s*["']([^:"']+):([^:"']+):?([^"']*)["']`)

// MavenManager implements repositories.PackageManager for Maven.
type MavenManager struct{}

// NewMaven creates the Maven manager.
func NewMaven() repositories.PackageManager { return &MavenManager{} }

func (m *MavenManager) Name() entities.Manager { return entities.ManagerMaven }

func (m *MavenManager) ManifestNames() []string { return []string{"pom.xml"} }

func (m *MavenManager) BulkInstall() bool { return true }

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
}

// ParseManifest reads the <dependencies> section of pom.xml. Test-scoped
// and optional artifacts are reported as not required.
func (m *MavenManager) ParseManifest(dir string) ([]entities.Dependency, error) {
	data, err := os.ReadFile(filepath.Join(dir, "pom.xml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read pom.xml: %w", err)
	}

	var pom struct {
		Dependencies struct {
			Dependency []pomDependency `xml:"dependency"`
		} `xml:"dependencies"`
	}
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, fmt.Errorf("failed to parse pom.xml: %w", err)
	}

	deps := make([]entities.Dependency, 0, len(pom.Dependencies.Dependency))
	for _, d := range pom.Dependencies.Dependency {
		dep := entities.Dependency{
			Name:       d.GroupID + ":" + d.ArtifactID,
			Constraint: d.Version,
			Manager:    entities.ManagerMaven,
			Required:   d.Scope != "test" && d.Optional != "true",
		}
		// Property placeholders cannot be resolved without a full build.
		if strings.Contains(d.Version, "${") {
			dep.Availability = entities.AvailabilityUnknown
			dep.Detail = "version is a property placeholder"
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// CheckAvailable probes the local Maven repository for the exact artifact
// version directory.
func (m *MavenManager) CheckAvailable(_ context.Context, dep entities.Dependency, _ string) entities.Availability {
	if dep.Constraint == "" || strings.Contains(dep.Constraint, "${") {
		return entities.AvailabilityUnknown
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return entities.AvailabilityUnknown
	}
	group, artifact, ok := strings.Cut(dep.Name, ":")
	if !ok {
		return entities.AvailabilityUnknown
	}
	artifactDir := filepath.Join(home, ".m2", "repository",
		filepath.FromSlash(strings.ReplaceAll(group, ".", "/")), artifact, dep.Constraint)
	if _, statErr := os.Stat(artifactDir); statErr == nil {
		return entities.AvailabilityAvailable
	}
	return entities.AvailabilityMissing
}

// PlanInstall resolves the whole dependency tree in one invocation.
func (m *MavenManager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerMaven,
		Command:      "mvn dependency:resolve",
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}

// GradleManager implements repositories.PackageManager for Gradle.
type GradleManager struct{}

// NewGradle creates the Gradle manager.
func NewGradle() repositories.PackageManager { return &GradleManager{} }

func (m *GradleManager) Name() entities.Manager { return entities.ManagerGradle }

func (m *GradleManager) ManifestNames() []string {
	return []string{"build.gradle", "build.gradle.kts"}
}

func (m *GradleManager) BulkInstall() bool { return true }

// ParseManifest extracts coordinate declarations from the build script.
// Gradle build files are programs, not data; anything the pattern misses is
// simply absent rather than wrong, which fits the degrade-to-partial policy.
func (m *GradleManager) ParseManifest(dir string) ([]entities.Dependency, error) {
	var data []byte
	var err error
	for _, name := range m.ManifestNames() {
		data, err = os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read gradle build script: %w", err)
	}

	matches := gradleDepPattern.FindAllStringSubmatch(string(data), -1)
	deps := make([]entities.Dependency, 0, len(matches))
	for _, match := range matches {
		configuration, group, artifact, version := match[1], match[2], match[3], match[4]
		deps = append(deps, entities.Dependency{
			Name:       group + ":" + artifact,
			Constraint: version,
			Manager:    entities.ManagerGradle,
			Required:   configuration != "testImplementation",
		})
	}
	return deps, nil
}

// CheckAvailable probes the Gradle module cache.
func (m *GradleManager) CheckAvailable(_ context.Context, dep entities.Dependency, _ string) entities.Availability {
	if dep.Constraint == "" {
		return entities.AvailabilityUnknown
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return entities.AvailabilityUnknown
	}
	group, artifact, ok := strings.Cut(dep.Name, ":")
	if !ok {
		return entities.AvailabilityUnknown
	}
	cacheDir := filepath.Join(home, ".gradle", "caches", "modules-2", "files-2.1",
		group, artifact, dep.Constraint)
	if _, statErr := os.Stat(cacheDir); statErr == nil {
		return entities.AvailabilityAvailable
	}
	return entities.AvailabilityMissing
}

// PlanInstall prefers the project's wrapper script when one exists.
func (m *GradleManager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	command := "gradle dependencies"
	if _, err := os.Stat(filepath.Join(dir, "gradlew")); err == nil {
		command = "./gradlew dependencies"
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerGradle,
		Command:      command,
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
