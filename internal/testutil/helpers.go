package testutil

import (
	"os"
	"os/exec"
	"testing"
)

// RequireSystem skips the test unless the IPTX_SYSTEM_TEST environment
// variable is set. Tests gated this way invoke the real iptables binary
// and mutate kernel state, so they only run in a disposable environment.
func RequireSystem(t *testing.T) {
	t.Helper()
	if os.Getenv("IPTX_SYSTEM_TEST") == "" {
		t.Skip("Skipping test: requires IPTX_SYSTEM_TEST environment")
	}
	if _, err := exec.LookPath("iptables"); err != nil {
		t.Skip("Skipping test: iptables binary not found")
	}
}
