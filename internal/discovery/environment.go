package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

const venvProbeTimeout = 5 * time.Second

// venvDirNames are the conventional virtual-environment directory names.
var venvDirNames = []string{"venv", ".venv", "env", ".env", "virtualenv"}

var makeTargetPattern = regexp.MustCompile(`^([a-zA-Z0-9_-]+):`)

// DetectEnvironment inspects dir for virtual environments and container
// definitions, and attaches any task-runner manifests it finds. Returns nil
// when no environment evidence exists and no runners were found.
func DetectEnvironment(ctx context.Context, dir string) *entities.EnvironmentInfo {
	runners := detectTaskRunners(dir)

	if env := detectVenv(ctx, dir); env != nil {
		env.Runners = runners
		return env
	}

	if _, err := os.Stat(filepath.Join(dir, "environment.yml")); err == nil {
		return &entities.EnvironmentInfo{
			Kind:       entities.EnvConda,
			Path:       filepath.Join(dir, "environment.yml"),
			Activation: "conda env create -f environment.yml",
			Runners:    runners,
		}
	}

	for _, name := range []string{"docker-compose.yml", "docker-compose.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return &entities.EnvironmentInfo{
				Kind:       entities.EnvDockerCompose,
				Path:       filepath.Join(dir, name),
				Activation: "docker-compose up",
				Runners:    runners,
			}
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); err == nil {
		return &entities.EnvironmentInfo{
			Kind:       entities.EnvDocker,
			Path:       filepath.Join(dir, "Dockerfile"),
			Activation: fmt.Sprintf("docker build -t app %s && docker run app", dir),
			Runners:    runners,
		}
	}

	if len(runners) == 0 {
		return nil
	}
	return &entities.EnvironmentInfo{Runners: runners}
}

// detectVenv probes the conventional virtual-environment directories and
// queries the interpreter inside for its version.
func detectVenv(ctx context.Context, dir string) *entities.EnvironmentInfo {
	for _, name := range venvDirNames {
		venvPath := filepath.Join(dir, name)
		pythonExe := filepath.Join(venvPath, "bin", "python")
		activation := fmt.Sprintf("source %s/bin/activate", venvPath)
		if runtime.GOOS == "windows" {
			pythonExe = filepath.Join(venvPath, "Scripts", "python.exe")
			activation = filepath.Join(venvPath, "Scripts", "activate")
		}
		if _, err := os.Stat(pythonExe); err != nil {
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, venvProbeTimeout)
		out, err := exec.CommandContext(probeCtx, pythonExe, "--version").CombinedOutput()
		cancel()

		version := ""
		if err == nil {
			version = strings.TrimSpace(string(out))
		}

		return &entities.EnvironmentInfo{
			Kind:       entities.EnvVenv,
			Path:       venvPath,
			Version:    version,
			Activation: activation,
		}
	}
	return nil
}

// detectTaskRunners collects task-runner manifests in dir: Makefile targets,
// justfile recipes, package.json scripts, and Taskfile.yml tasks.
func detectTaskRunners(dir string) []entities.TaskRunner {
	var runners []entities.TaskRunner

	if path := filepath.Join(dir, "Makefile"); exists(path) {
		runners = append(runners, entities.TaskRunner{
			Kind: entities.RunnerMake, File: path, Tasks: parseMakeTargets(path),
		})
	}

	for _, name := range []string{"justfile", "Justfile"} {
		if path := filepath.Join(dir, name); exists(path) {
			runners = append(runners, entities.TaskRunner{
				Kind: entities.RunnerJust, File: path, Tasks: parseMakeTargets(path),
			})
			break
		}
	}

	if path := filepath.Join(dir, "package.json"); exists(path) {
		if tasks := parsePackageScripts(path); len(tasks) > 0 {
			runners = append(runners, entities.TaskRunner{
				Kind: entities.RunnerNpm, File: path, Tasks: tasks,
			})
		}
	}

	if path := filepath.Join(dir, "Taskfile.yml"); exists(path) {
		if tasks := parseTaskfile(path); len(tasks) > 0 {
			runners = append(runners, entities.TaskRunner{
				Kind: entities.RunnerTask, File: path, Tasks: tasks,
			})
		}
	}

	return runners
}

// parseMakeTargets extracts target names from a Makefile or justfile.
// Both formats declare recipes as "name:" at the start of a line.
func parseMakeTargets(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var targets []string
	for _, line := range strings.Split(string(data), "\n") {
		if match := makeTargetPattern.FindStringSubmatch(line); match != nil {
			if !strings.HasPrefix(match[1], ".") {
				targets = append(targets, match[1])
			}
		}
	}
	return targets
}

func parsePackageScripts(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	return sortedKeys(pkg.Scripts)
}

func parseTaskfile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var taskfile struct {
		Tasks map[string]yaml.Node `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &taskfile); err != nil {
		return nil
	}
	names := make(map[string]string, len(taskfile.Tasks))
	for name := range taskfile.Tasks {
		names[name] = ""
	}
	return sortedKeys(names)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
