package cmd

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/iptx/internal/brand"
)

// RunChain handles chain management: new, delete, rename, flush. With
// no chain argument, flush empties the whole table.
func RunChain(args []string) {
	if len(args) < 1 {
		printChainUsage()
		os.Exit(1)
	}
	op := args[0]

	flags := flag.NewFlagSet("chain "+op, flag.ExitOnError)
	configPath := flags.String("config", brand.DefaultConfigPath, "Configuration file")
	ipv6 := flags.Bool("6", false, "Use the IPv6 binary")
	table := flags.String("t", "filter", "Table")
	flags.Parse(args[1:])
	rest := flags.Args()

	ipt := setup(*configPath, *ipv6)

	var ok bool
	var err error
	switch op {
	case "new":
		if len(rest) != 1 {
			fmt.Fprintf(os.Stderr, "Usage: %s chain new [flags] CHAIN\n", brand.BinaryName)
			os.Exit(1)
		}
		ok, err = ipt.NewChain(*table, rest[0])
	case "delete":
		if len(rest) != 1 {
			fmt.Fprintf(os.Stderr, "Usage: %s chain delete [flags] CHAIN\n", brand.BinaryName)
			os.Exit(1)
		}
		ok, err = ipt.DeleteChain(*table, rest[0])
	case "rename":
		if len(rest) != 2 {
			fmt.Fprintf(os.Stderr, "Usage: %s chain rename [flags] OLD NEW\n", brand.BinaryName)
			os.Exit(1)
		}
		ok, err = ipt.RenameChain(*table, rest[0], rest[1])
	case "flush":
		if len(rest) == 1 {
			ok, err = ipt.FlushChain(*table, rest[0])
		} else {
			ok, err = ipt.FlushTable(*table)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown chain command: %s\n\n", op)
		printChainUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func printChainUsage() {
	fmt.Fprintf(os.Stderr, `Chain commands:
  %[1]s chain new CHAIN          Create a user-defined chain
  %[1]s chain delete CHAIN       Delete a user-defined chain
  %[1]s chain rename OLD NEW     Rename a chain
  %[1]s chain flush [CHAIN]      Flush a chain, or the whole table
`, brand.BinaryName)
}
