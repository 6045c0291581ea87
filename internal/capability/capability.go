// Package capability probes an xtables binary for its version and derives
// which optional flags it supports. The probe runs once per handle; the
// resulting record never changes for the life of the process.
package capability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Runner is the minimal command surface the probe needs. The real and
// mock runners in the iptables package both satisfy it.
type Runner interface {
	Output(name string, args ...string) ([]byte, error)
}

// Version is an xtables version triple ordered lexicographically.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders the version as v<major>.<minor>.<patch>.
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// GreaterThan reports whether v is strictly greater than o.
func (v Version) GreaterThan(o Version) bool {
	if v.Major != o.Major {
		return v.Major > o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor > o.Minor
	}
	return v.Patch > o.Patch
}

// Capabilities records the optional features of an xtables binary.
// Immutable after Probe; safe to share read-only across goroutines.
type Capabilities struct {
	Version Version

	// HasCheck indicates the binary supports -C (atomic rule existence
	// check), introduced after 1.4.10.
	HasCheck bool

	// HasWait indicates the binary supports -w / --wait (built-in
	// blocking serialization), introduced after 1.4.19.
	HasWait bool
}

// Upstream feature-introduction versions. The comparisons are strictly
// greater-than: 1.4.10 itself has neither flag.
var (
	checkIntroduced = Version{Major: 1, Minor: 4, Patch: 10}
	waitIntroduced  = Version{Major: 1, Minor: 4, Patch: 19}
)

var versionRe = regexp.MustCompile(`v(\d+)\.(\d+)\.(\d+)`)

// Probe errors. Any of these is fatal to handle construction: without a
// version there is no safe way to pick a serialization strategy.
var (
	ErrNoVersionMatch   = errors.New("no version string in tool output")
	ErrMalformedVersion = errors.New("malformed version number")
)

// ParseVersion extracts a v<major>.<minor>.<patch> triple from tool output.
func ParseVersion(output string) (Version, error) {
	m := versionRe.FindStringSubmatch(output)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrNoVersionMatch, output)
	}

	var parts [3]int
	for i, s := range m[1:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
		}
		parts[i] = n
	}

	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// Derive computes the capability flags for a version.
func Derive(v Version) Capabilities {
	return Capabilities{
		Version:  v,
		HasCheck: v.GreaterThan(checkIntroduced),
		HasWait:  v.GreaterThan(waitIntroduced),
	}
}

// Probe runs `tool --version` through the runner and derives capabilities.
// There are no retries: a failed probe is fatal to initialization.
func Probe(runner Runner, tool string) (Capabilities, error) {
	out, err := runner.Output(tool, "--version")
	if err != nil {
		return Capabilities{}, fmt.Errorf("run %s --version: %w", tool, err)
	}

	v, err := ParseVersion(string(out))
	if err != nil {
		return Capabilities{}, err
	}

	return Derive(v), nil
}
