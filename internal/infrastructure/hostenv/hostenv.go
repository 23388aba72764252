// Package hostenv wraps the out-of-process queries the analyzer and the
// package managers issue against the host: binary lookups, version probes,
// and bounded manager queries.
package hostenv

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

var versionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// Installed reports whether a binary is resolvable on PATH.
func Installed(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Probe checks whether an interpreter/toolchain binary is available and
// extracts its version. Tools disagree on the version flag, so the common
// ones are tried in order with a bounded timeout each.
func Probe(ctx context.Context, binary string) (bool, string) {
	if !Installed(binary) {
		return false, ""
	}

	for _, flag := range []string{"--version", "-version", "-v"} {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		out, err := exec.CommandContext(probeCtx, binary, flag).CombinedOutput()
		cancel()
		if err != nil {
			continue
		}
		if match := versionPattern.FindString(string(out)); match != "" {
			return true, match
		}
		if line := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)[0]; line != "" {
			return true, line
		}
	}

	// The binary exists but would not report a version; still usable.
	return true, ""
}

// Query runs a manager subcommand in dir with the caller's deadline and
// returns combined output. Callers translate failures into the tri-state
// availability, never into process errors.
func Query(ctx context.Context, dir, binary string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
