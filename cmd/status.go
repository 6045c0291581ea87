package cmd

import (
	"flag"
	"fmt"

	"grimm.is/iptx/internal/brand"
)

// RunStatus probes the configured binary and reports its capabilities
// and the serialization strategy iptx will use for it.
func RunStatus(args []string) {
	flags := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := flags.String("config", brand.DefaultConfigPath, "Configuration file")
	ipv6 := flags.Bool("6", false, "Use the IPv6 binary")
	flags.Parse(args)

	ipt := setup(*configPath, *ipv6)
	caps := ipt.Capabilities()

	mode := "advisory-lock"
	if caps.HasWait {
		mode = "native-wait"
	}

	fmt.Printf("Tool:      %s\n", ipt.Command())
	fmt.Printf("Version:   %s\n", caps.Version)
	fmt.Printf("Check (-C): %v\n", caps.HasCheck)
	fmt.Printf("Wait (-w):  %v\n", caps.HasWait)
	fmt.Printf("Mode:      %s\n", mode)
	if !caps.HasWait {
		fmt.Printf("Lock file: %s\n", ipt.LockPath())
	}
}
