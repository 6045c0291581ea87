package iptables

import (
	"context"
	"fmt"

	"grimm.is/iptx/internal/brand"
	"grimm.is/iptx/internal/capability"
	"grimm.is/iptx/internal/clock"
	"grimm.is/iptx/internal/execlock"
	"grimm.is/iptx/internal/logging"
	"grimm.is/iptx/internal/metrics"
)

// The two fixed command variants.
const (
	CmdIPv4 = "iptables"
	CmdIPv6 = "ip6tables"
)

// waitFlag is appended as the last argument in native-wait mode. The
// binaries are positional-argument-sensitive, so it must never be
// inserted before the operation arguments.
const waitFlag = "--wait"

// IPTables is an immutable handle on one xtables binary. Capabilities
// are probed once at construction and never change, so a handle may be
// shared read-only across goroutines.
type IPTables struct {
	cmd      string
	caps     capability.Capabilities
	runner   CommandRunner
	lock     *execlock.Lock
	lockCfg  execlock.AcquireConfig
	lockPath string
	clk      clock.Clock
	logger   *logging.Logger
}

// Option configures a handle at construction time.
type Option func(*IPTables)

// WithRunner overrides the command runner, mainly for tests.
func WithRunner(r CommandRunner) Option {
	return func(ipt *IPTables) { ipt.runner = r }
}

// WithLockPath overrides the advisory lock file path.
func WithLockPath(path string) Option {
	return func(ipt *IPTables) { ipt.lockPath = path }
}

// WithLockConfig overrides the lock acquisition retry policy.
func WithLockConfig(cfg execlock.AcquireConfig) Option {
	return func(ipt *IPTables) { ipt.lockCfg = cfg }
}

// WithLogger overrides the handle's logger.
func WithLogger(l *logging.Logger) Option {
	return func(ipt *IPTables) { ipt.logger = l }
}

// New probes the IPv4 binary and returns a handle on it.
func New(opts ...Option) (*IPTables, error) {
	return NewWithCommand(CmdIPv4, opts...)
}

// New6 probes the IPv6 binary and returns a handle on it.
func New6(opts ...Option) (*IPTables, error) {
	return NewWithCommand(CmdIPv6, opts...)
}

// NewWithCommand probes an explicit binary (a path or a name resolved
// through $PATH) and returns a handle on it. A failed probe is fatal:
// without the version there is no safe serialization strategy.
func NewWithCommand(cmd string, opts ...Option) (*IPTables, error) {
	ipt := &IPTables{
		cmd:      cmd,
		runner:   DefaultCommandRunner,
		lockCfg:  execlock.DefaultAcquireConfig(),
		lockPath: brand.DefaultLockPath,
		clk:      &clock.RealClock{},
		logger:   logging.WithComponent("iptables"),
	}
	for _, opt := range opts {
		opt(ipt)
	}

	caps, err := capability.Probe(ipt.runner, cmd)
	if err != nil {
		metrics.Get().ProbeFailuresTotal.WithLabelValues(cmd).Inc()
		return nil, fmt.Errorf("probe %s: %w", cmd, err)
	}
	ipt.caps = caps

	if !caps.HasWait {
		ipt.lock = execlock.New(ipt.lockPath)
	}

	ipt.logger.Debug("handle created",
		"cmd", cmd,
		"version", caps.Version.String(),
		"has_check", caps.HasCheck,
		"has_wait", caps.HasWait)

	return ipt, nil
}

// Command returns the resolved command name.
func (ipt *IPTables) Command() string {
	return ipt.cmd
}

// Capabilities returns the probed capability record.
func (ipt *IPTables) Capabilities() capability.Capabilities {
	return ipt.caps
}

// LockPath returns the advisory lock file path used in flock mode.
func (ipt *IPTables) LockPath() string {
	return ipt.lockPath
}

// run launches one serialized invocation of the tool and blocks until
// it terminates. The strategy is fixed per handle: binaries with --wait
// serialize themselves; everything else funnels through the advisory
// lock, which is released on every exit path.
func (ipt *IPTables) run(args ...string) (Result, error) {
	m := metrics.Get()

	if ipt.caps.HasWait {
		argv := make([]string, 0, len(args)+1)
		argv = append(argv, args...)
		argv = append(argv, waitFlag)

		res, err := ipt.runner.Exec(ipt.cmd, argv...)
		m.InvocationsTotal.WithLabelValues(ipt.cmd, "wait", outcome(res, err)).Inc()
		if err != nil {
			return Result{}, fmt.Errorf("spawn %s: %w", ipt.cmd, err)
		}
		return res, nil
	}

	start := ipt.clk.Now()
	if err := ipt.lock.Acquire(context.Background(), ipt.lockCfg); err != nil {
		m.LockFailuresTotal.Inc()
		return Result{}, fmt.Errorf("acquire xtables lock: %w", err)
	}
	m.LockWaitSeconds.Observe(ipt.clk.Since(start).Seconds())

	defer func() {
		if err := ipt.lock.Release(); err != nil {
			ipt.logger.Warn("failed to release xtables lock", "error", err)
		}
	}()

	res, err := ipt.runner.Exec(ipt.cmd, args...)
	m.InvocationsTotal.WithLabelValues(ipt.cmd, "flock", outcome(res, err)).Inc()
	if err != nil {
		return Result{}, fmt.Errorf("spawn %s: %w", ipt.cmd, err)
	}
	return res, nil
}

func outcome(res Result, err error) string {
	switch {
	case err != nil:
		return "spawn_error"
	case res.Success:
		return "ok"
	default:
		return "failed"
	}
}
