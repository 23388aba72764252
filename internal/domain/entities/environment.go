package entities

// EnvironmentKind identifies a detected development environment.
type EnvironmentKind string

const (
	EnvVenv          EnvironmentKind = "venv"
	EnvConda         EnvironmentKind = "conda"
	EnvDocker        EnvironmentKind = "docker"
	EnvDockerCompose EnvironmentKind = "docker-compose"
)

// TaskRunnerKind identifies a detected task-runner manifest.
type TaskRunnerKind string

const (
	RunnerMake TaskRunnerKind = "make"
	RunnerJust TaskRunnerKind = "just"
	RunnerNpm  TaskRunnerKind = "npm"
	RunnerTask TaskRunnerKind = "task"
)

// TaskRunner is a detected task-runner manifest with its task names.
type TaskRunner struct {
	Kind  TaskRunnerKind
	File  string
	Tasks []string
}

// EnvironmentInfo is the environment context attached to programs found in
// a directory. Owned by the environment detector; programs reference it.
type EnvironmentInfo struct {
	Kind       EnvironmentKind
	Path       string
	Version    string // interpreter version inside the environment, if known
	Activation string // hint for activating/building the environment
	Runners    []TaskRunner
}
