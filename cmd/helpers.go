// Package cmd implements the iptx CLI subcommands. Each Run* function
// owns one subcommand, parses its own flags and exits on failure.
package cmd

import (
	"fmt"
	"os"

	"grimm.is/iptx/internal/config"
	"grimm.is/iptx/internal/iptables"
	"grimm.is/iptx/internal/logging"
)

// loadConfig reads the config file and applies its log settings.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logging.SetDefault(logging.New(logging.Config{
		Level: logging.ParseLevel(cfg.Log.Level),
		JSON:  cfg.Log.JSON,
	}))
	return cfg, nil
}

// newHandle builds a probed tool handle from the config.
func newHandle(cfg *config.Config, ipv6 bool) (*iptables.IPTables, error) {
	tool := cfg.Tool.IPv4Path
	if ipv6 {
		tool = cfg.Tool.IPv6Path
	}

	return iptables.NewWithCommand(tool,
		iptables.WithLockPath(cfg.Lock.Path),
		iptables.WithLockConfig(cfg.AcquireConfig()),
	)
}

// setup is the common preamble: load config, build a handle.
func setup(configPath string, ipv6 bool) *iptables.IPTables {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ipt, err := newHandle(cfg, ipv6)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return ipt
}
