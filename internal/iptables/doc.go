// Package iptables wraps the iptables and ip6tables binaries behind a
// handle that serializes concurrent invocations across processes.
//
// # Overview
//
// Multiple independent processes mutating the same kernel rule table
// through the xtables binaries can interleave reads and writes and
// corrupt it. This package guarantees mutual exclusion among all
// cooperating processes, picking one of two strategies at handle
// construction:
//
//   - Native-wait: binaries newer than 1.4.19 accept --wait and block on
//     their own internal lock. The flag is appended to every invocation
//     and no external coordination happens.
//   - Advisory-lock: older binaries get serialized through an exclusive
//     flock on a well-known lock file, acquired immediately before each
//     invocation and released immediately after it terminates.
//
// # Key Types
//
//   - [IPTables]: immutable handle on one binary with its probed
//     capabilities. Construct with [New], [New6] or [NewWithCommand].
//   - [CommandRunner]: abstraction over subprocess execution, mockable
//     in tests.
//   - [Result]: raw outcome of one invocation. A non-zero tool exit is
//     not an error at this layer; callers interpret Success themselves.
//
// # Example
//
//	ipt, err := iptables.New()
//	if err != nil {
//		return err
//	}
//	ok, err := ipt.AppendUnique("filter", "INPUT", "-p", "tcp", "--dport", "22", "-j", "ACCEPT")
package iptables
