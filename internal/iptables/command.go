package iptables

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
)

// RealCommandRunner executes actual binaries.
type RealCommandRunner struct{}

// Exec runs the command and captures stdout and stderr separately.
func (r *RealCommandRunner) Exec(name string, args ...string) (Result, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.Exited() {
			// The tool ran and exited non-zero: a meaningful outcome,
			// not a system fault.
			return Result{Success: false, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
		}
		return Result{}, fmt.Errorf("exec %s: %w", name, err)
	}

	return Result{Success: true, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// Output runs the command and returns its standard output.
func (r *RealCommandRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}
