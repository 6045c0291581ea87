package iptables

// Result holds the raw outcome of a single tool invocation. Produced
// fresh per invocation and never cached.
type Result struct {
	// Success is the exit-status flag. False covers every non-zero
	// exit; interpreting it (rule missing, chain exists, ...) is the
	// caller's job.
	Success bool

	Stdout []byte
	Stderr []byte
}

// CommandRunner abstracts execution of the xtables binaries.
type CommandRunner interface {
	// Exec runs the command, waits for it and captures both output
	// streams. The error is non-nil only when the process could not be
	// launched or did not run to completion; a non-zero exit is
	// reported through Result.Success.
	Exec(name string, args ...string) (Result, error)

	// Output runs the command and returns its standard output.
	Output(name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner is the runner used by handles unless overridden.
var DefaultCommandRunner CommandRunner = &RealCommandRunner{}
