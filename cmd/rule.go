package cmd

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/iptx/internal/brand"
)

// RunRule handles the rule mutation subcommands. op is one of append,
// insert, replace, delete, delete-all, check. The remaining arguments
// are CHAIN followed by the raw rulespec, passed through to the tool in
// order.
func RunRule(op string, args []string) {
	flags := flag.NewFlagSet(op, flag.ExitOnError)
	configPath := flags.String("config", brand.DefaultConfigPath, "Configuration file")
	ipv6 := flags.Bool("6", false, "Use the IPv6 binary")
	table := flags.String("t", "filter", "Table")
	pos := flags.Int("pos", 1, "Rule position (insert and replace only)")
	unique := flags.Bool("unique", false, "Fail if the rule already exists (append and insert only)")
	flags.Parse(args)

	chain, rulespec, err := splitRuleArgs(op, flags.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ipt := setup(*configPath, *ipv6)

	var ok bool
	switch op {
	case "append":
		if *unique {
			ok, err = ipt.AppendUnique(*table, chain, rulespec...)
		} else {
			ok, err = ipt.Append(*table, chain, rulespec...)
		}
	case "insert":
		if *unique {
			ok, err = ipt.InsertUnique(*table, chain, *pos, rulespec...)
		} else {
			ok, err = ipt.Insert(*table, chain, *pos, rulespec...)
		}
	case "replace":
		ok, err = ipt.Replace(*table, chain, *pos, rulespec...)
	case "delete":
		ok, err = ipt.Delete(*table, chain, rulespec...)
	case "delete-all":
		ok, err = ipt.DeleteAll(*table, chain, rulespec...)
	case "check":
		ok, err = ipt.Exists(*table, chain, rulespec...)
		if err == nil {
			if ok {
				fmt.Println("rule exists")
			} else {
				fmt.Println("rule does not exist")
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown rule operation: %s\n", op)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		// The tool ran but reported failure (rule missing, bad chain).
		os.Exit(1)
	}
}

// splitRuleArgs separates CHAIN from the rulespec. Every operation
// needs a non-empty rulespec, check included: a bare -C CHAIN is a
// usage error in the tool, and on pre-1.4.11 binaries the fallback
// scan would match any rule in the chain.
func splitRuleArgs(op string, rest []string) (string, []string, error) {
	if len(rest) < 1 {
		return "", nil, fmt.Errorf("usage: %s %s [flags] CHAIN RULESPEC...", brand.BinaryName, op)
	}
	if len(rest) < 2 {
		return "", nil, fmt.Errorf("%s requires a rulespec", op)
	}
	return rest[0], rest[1:], nil
}
