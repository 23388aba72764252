// Package executor runs a discovered program synchronously and captures the
// outcome. It is the single process boundary of the run flow; everything
// upstream only reads the filesystem.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// Result captures one finished execution.
type Result struct {
	Program  *entities.Program
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor builds and runs the launch command for a program. A preferred
// command, when recorded from an earlier run, takes precedence over the
// language default.
type Executor struct {
	timeout time.Duration
}

// New creates an executor; timeout bounds each program run.
func New(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Execute runs the program in its own directory and returns the captured
// result. The returned string in Result.Command is what should be persisted
// as the preferred command on success.
func (e *Executor) Execute(ctx context.Context, prog *entities.Program, args []string, preferred string) (*Result, error) {
	argv, err := e.resolveCommand(prog, preferred)
	if err != nil {
		return nil, err
	}
	argv = append(argv, args...)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logger.Infof("Executing: %s", strings.Join(argv, " "))

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = filepath.Dir(prog.Path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &Result{
		Program:  prog,
		Command:  strings.Join(argv, " "),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.ExitCode = -1
		return result, fmt.Errorf("program timed out after %s", e.timeout)
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if runErr != nil {
		return result, fmt.Errorf("failed to start %s: %w", argv[0], runErr)
	}
	return result, nil
}

// resolveCommand returns the argv to launch a program: the remembered
// preferred command when one exists, otherwise the language default.
func (e *Executor) resolveCommand(prog *entities.Program, preferred string) ([]string, error) {
	if preferred != "" {
		return strings.Fields(preferred), nil
	}

	switch prog.Language {
	case entities.LangPython:
		if _, err := exec.LookPath("python3"); err == nil {
			return []string{"python3", prog.Path}, nil
		}
		return []string{"python", prog.Path}, nil
	case entities.LangJavaScript:
		return []string{"node", prog.Path}, nil
	case entities.LangTypeScript:
		return []string{"ts-node", prog.Path}, nil
	case entities.LangGo:
		return []string{"go", "run", prog.Path}, nil
	case entities.LangRust:
		// cargo resolves the binary itself; the build happens implicitly.
		return []string{"cargo", "run"}, nil
	case entities.LangRuby:
		return []string{"ruby", prog.Path}, nil
	case entities.LangPHP:
		return []string{"php", prog.Path}, nil
	case entities.LangShell:
		return []string{"sh", prog.Path}, nil
	default:
		if prog.Executable {
			return []string{prog.Path}, nil
		}
		return nil, fmt.Errorf("no launch command known for %s programs", prog.Language)
	}
}
