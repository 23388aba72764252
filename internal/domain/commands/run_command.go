package commands

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/config"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/executor"
)

// Run is the interface for the run command.
type Run interface {
	Execute(ctx context.Context, settings *entities.Settings, opts RunOptions) error
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	Root   string
	Target string   // program name or relative path; empty selects the top-ranked program
	Args   []string // passed through to the program
}

// RunCommand executes the selected program: scan, resolve the launch
// command (remembered preferred command first), optionally auto-fix missing
// dependencies, then run synchronously.
type RunCommand struct {
	scan Scan
	fix  Fix
}

// NewRunCommand creates a new RunCommand.
func NewRunCommand(scan Scan, fix Fix) *RunCommand {
	return &RunCommand{scan: scan, fix: fix}
}

// Execute runs the run flow end to end. The executed program's own failure
// is reported but does not map to an omnirun usage error.
func (it *RunCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts RunOptions,
) error {
	result, err := it.scan.Execute(ctx, settings, ScanOptions{Root: opts.Root, Analyze: true})
	if err != nil {
		return err
	}

	prog := selectProgram(result, opts.Target)
	if prog == nil {
		if opts.Target != "" {
			return fmt.Errorf("%w: no program matches %q", entities.ErrInvalidTarget, opts.Target)
		}
		return fmt.Errorf("%w: no executable programs found", entities.ErrInvalidTarget)
	}
	logger.Infof("Selected program: %s (%s, score %d)", prog.RelativePath, prog.Language, prog.Score)

	if missing := prog.MissingRequired(); len(missing) > 0 {
		if !settings.AutoFix {
			return fmt.Errorf("%w: %d required dependencies missing (run `omnirun fix` or enable auto_fix)",
				entities.ErrDependenciesRemain, len(missing))
		}
		if fixErr := it.fix.Execute(ctx, settings, FixOptions{Root: opts.Root, AutoApprove: true}); fixErr != nil {
			return fixErr
		}
	}

	exe := executor.New(settings.Timeout)
	preferred := settings.PreferredCommands[prog.PreferredKey()]

	execResult, execErr := exe.Execute(ctx, prog, opts.Args, preferred)
	if execErr != nil {
		return execErr
	}

	printOutput(execResult)

	if execResult.ExitCode == 0 {
		remember(prog, execResult.Command)
		return nil
	}
	return fmt.Errorf("program exited with code %d", execResult.ExitCode)
}

// selectProgram resolves the target to a discovered program. With no target
// the highest-ranked program wins; otherwise the first program whose name or
// relative path matches.
func selectProgram(result *entities.ScanResult, target string) *entities.Program {
	if len(result.Programs) == 0 {
		return nil
	}
	if target == "" {
		return result.Programs[0]
	}
	for _, prog := range result.Programs {
		if prog.Name == target || prog.RelativePath == target {
			return prog
		}
	}
	return nil
}

// remember persists the command that just succeeded for next time.
func remember(prog *entities.Program, command string) {
	if err := config.SavePreferredCommand(prog.PreferredKey(), command); err != nil {
		logger.Warnf("Failed to save preferred command: %v", err)
	}
}

func printOutput(result *executor.Result) {
	if result.Stdout != "" {
		fmt.Fprint(os.Stdout, result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	logger.Infof("Program finished with code %d in %.2fs", result.ExitCode, result.Duration.Seconds())
}
