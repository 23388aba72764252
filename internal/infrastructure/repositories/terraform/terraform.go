// Package terraform implements the PackageManager abstraction for Terraform
// provider requirements declared in required_providers blocks.
package terraform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

// Manager implements repositories.PackageManager for terraform init.
type Manager struct{}

// New creates the terraform manager.
func New() repositories.PackageManager { return &Manager{} }

func (m *Manager) Name() entities.Manager { return entities.ManagerTerraform }

func (m *Manager) ManifestNames() []string {
	return []string{"main.tf", "versions.tf"}
}

func (m *Manager) BulkInstall() bool { return true }

// ParseManifest scans every .tf file in dir for
// terraform { required_providers { ... } } blocks. Files that fail HCL
// parsing are skipped, degrading to partial results.
func (m *Manager) ParseManifest(dir string) ([]entities.Dependency, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.tf"))
	if err != nil || len(paths) == 0 {
		return nil, fmt.Errorf("no terraform files found in %s", dir)
	}
	sort.Strings(paths)

	var deps []entities.Dependency
	parser := hclparse.NewParser()
	for _, path := range paths {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}
		deps = append(deps, parseProviders(parser, content, path)...)
	}
	return deps, nil
}

func parseProviders(parser *hclparse.Parser, content []byte, path string) []entities.Dependency {
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() || file.Body == nil {
		return nil
	}

	bodyContent, _, diags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: "terraform"}},
	})
	if diags.HasErrors() {
		return nil
	}

	var deps []entities.Dependency
	for _, block := range bodyContent.Blocks {
		inner, _, innerDiags := block.Body.PartialContent(&hcl.BodySchema{
			Blocks: []hcl.BlockHeaderSchema{{Type: "required_providers"}},
		})
		if innerDiags.HasErrors() {
			continue
		}
		for _, providers := range inner.Blocks {
			attrs, _ := providers.Body.JustAttributes()
			names := make([]string, 0, len(attrs))
			for name := range attrs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				deps = append(deps, providerDependency(name, attrs[name]))
			}
		}
	}
	return deps
}

// providerDependency decodes one required_providers attribute, which is an
// object with optional source and version keys.
func providerDependency(name string, attr *hcl.Attribute) entities.Dependency {
	dep := entities.Dependency{
		Name:     name,
		Manager:  entities.ManagerTerraform,
		Required: true,
	}

	value, diags := attr.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() || !value.Type().IsObjectType() {
		dep.Availability = entities.AvailabilityUnknown
		dep.Detail = "unparseable provider requirement"
		return dep
	}

	values := value.AsValueMap()
	if source, ok := values["source"]; ok && source.Type() == cty.String {
		dep.Name = source.AsString()
	}
	if version, ok := values["version"]; ok && version.Type() == cty.String {
		dep.Constraint = version.AsString()
	}
	return dep
}

// CheckAvailable uses the provider mirror that terraform init creates under
// .terraform/providers.
func (m *Manager) CheckAvailable(_ context.Context, _ entities.Dependency, dir string) entities.Availability {
	if _, err := os.Stat(filepath.Join(dir, ".terraform", "providers")); err == nil {
		return entities.AvailabilityAvailable
	}
	return entities.AvailabilityMissing
}

// PlanInstall initializes the working directory, which downloads every
// required provider in one invocation.
func (m *Manager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerTerraform,
		Command:      "terraform init",
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
