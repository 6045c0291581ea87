//go:build linux
// +build linux

package iptables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/iptx/internal/testutil"
)

// Exercises the real iptables binary. Gated: mutates kernel state.
func TestSystemRoundTrip(t *testing.T) {
	testutil.RequireSystem(t)

	ipt, err := New()
	require.NoError(t, err)

	const chain = "IPTX-TEST"
	defer func() {
		ipt.FlushChain("filter", chain)
		ipt.DeleteChain("filter", chain)
	}()

	ok, err := ipt.NewChain("filter", chain)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ipt.AppendUnique("filter", chain, "-p", "tcp", "--dport", "2222", "-j", "ACCEPT")
	require.NoError(t, err)
	require.True(t, ok)

	exists, err := ipt.Exists("filter", chain, "-p", "tcp", "--dport", "2222", "-j", "ACCEPT")
	require.NoError(t, err)
	assert.True(t, exists)

	chains, err := ipt.ListChains("filter")
	require.NoError(t, err)
	assert.Contains(t, chains, chain)

	ok, err = ipt.Delete("filter", chain, "-p", "tcp", "--dport", "2222", "-j", "ACCEPT")
	require.NoError(t, err)
	assert.True(t, ok)
}
