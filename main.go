package main

import (
	"fmt"
	"os"

	"grimm.is/iptx/cmd"
	"grimm.is/iptx/internal/brand"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "status":
		cmd.RunStatus(os.Args[2:])

	case "list":
		cmd.RunList(os.Args[2:])

	case "chains":
		cmd.RunChains(os.Args[2:])

	case "append", "insert", "replace", "delete", "delete-all", "check":
		cmd.RunRule(os.Args[1], os.Args[2:])

	case "chain":
		cmd.RunChain(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - %s

Usage: %[3]s COMMAND [flags] [args]

Commands:
  status                    Probe the binary and show its capabilities
  list [CHAIN]              List rules of a table or chain
  chains                    List chain names of a table
  append CHAIN RULESPEC...  Append a rule
  insert CHAIN RULESPEC...  Insert a rule (-pos N)
  replace CHAIN RULESPEC... Replace the rule at -pos N
  delete CHAIN RULESPEC...  Delete a rule
  delete-all CHAIN RULESPEC...
                            Delete every repetition of a rule
  check CHAIN RULESPEC...   Test whether a rule exists
  chain new|delete|rename|flush
                            Manage chains
  help                      Show this help

Common flags:
  -config PATH   Configuration file (default %s)
  -t TABLE       Table to operate on (default filter)
  -6             Use the IPv6 binary
`, brand.Name, brand.Description, brand.BinaryName, brand.DefaultConfigPath)
}
