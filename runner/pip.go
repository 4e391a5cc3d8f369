package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// InstallOptions carries the pip install flags the wrapper passes through.
type InstallOptions struct {
	Packages      []string
	Requirement   string
	IndexURL      string
	ExtraIndexURL string
	TrustedHost   string
	Upgrade       bool
	NoDeps        bool
}

// PipArgs assembles the pip argv for an install. pipCmd is the configured
// pip command (usually just ["pip"], but e.g. ["python", "-m", "pip"]).
func PipArgs(pipCmd []string, opts InstallOptions) []string {
	args := append([]string{}, pipCmd...)
	args = append(args, "install")

	if opts.Requirement != "" {
		args = append(args, "-r", opts.Requirement)
	} else {
		args = append(args, opts.Packages...)
	}
	if opts.Upgrade {
		args = append(args, "--upgrade")
	}
	if opts.IndexURL != "" {
		args = append(args, "--index-url", opts.IndexURL)
	}
	if opts.ExtraIndexURL != "" {
		args = append(args, "--extra-index-url", opts.ExtraIndexURL)
	}
	if opts.TrustedHost != "" {
		args = append(args, "--trusted-host", opts.TrustedHost)
	}
	if opts.NoDeps {
		args = append(args, "--no-deps")
	}
	return args
}

// Run executes argv with stdout and stderr merged into a single stream fed
// to the monitor, waits for the process to exit, and returns its real exit
// code. The install itself is never timed out; only the error return
// signals a failure to launch or read the process.
func Run(ctx context.Context, argv []string, m *Monitor) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("stdout pipe: %w", err)
	}
	// Share the pipe so both streams arrive as one ordered line feed.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	scanErr := m.Scan(stdout)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("waiting for %s: %w", argv[0], err)
	}
	if scanErr != nil {
		return 0, scanErr
	}
	return 0, nil
}
