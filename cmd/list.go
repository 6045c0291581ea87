package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"grimm.is/iptx/internal/brand"
	"grimm.is/iptx/internal/iptables"
)

// RunList prints rules in rulespec form, for a whole table or a single
// chain. With -parsed it prints the structured interpretation instead.
func RunList(args []string) {
	flags := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := flags.String("config", brand.DefaultConfigPath, "Configuration file")
	ipv6 := flags.Bool("6", false, "Use the IPv6 binary")
	table := flags.String("t", "filter", "Table")
	parsed := flags.Bool("parsed", false, "Print parsed rule fields instead of raw rulespecs")
	flags.Parse(args)

	ipt := setup(*configPath, *ipv6)

	var lines []string
	var err error
	if chain := flags.Arg(0); chain != "" {
		lines, err = ipt.List(*table, chain)
	} else {
		lines, err = ipt.ListTable(*table)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*parsed {
		for _, line := range lines {
			fmt.Println(line)
		}
		return
	}

	printParsed(lines)
}

// RunChains prints the chain names of a table.
func RunChains(args []string) {
	flags := flag.NewFlagSet("chains", flag.ExitOnError)
	configPath := flags.String("config", brand.DefaultConfigPath, "Configuration file")
	ipv6 := flags.Bool("6", false, "Use the IPv6 binary")
	table := flags.String("t", "filter", "Table")
	flags.Parse(args)

	ipt := setup(*configPath, *ipv6)

	chains, err := ipt.ListChains(*table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, chain := range chains {
		fmt.Println(chain)
	}
}

func printParsed(lines []string) {
	chains, rules := iptables.ParseListing(lines)

	if len(chains) > 0 {
		fmt.Printf("%-20s %s\n", "CHAIN", "POLICY")
		for _, c := range chains {
			policy := c.Policy
			if policy == "" {
				policy = "-"
			}
			fmt.Printf("%-20s %s\n", c.Name, policy)
		}
		fmt.Println()
	}

	if len(rules) == 0 {
		return
	}
	fmt.Printf("%-12s %-8s %-18s %-18s %-10s %s\n", "CHAIN", "PROTO", "SOURCE", "DESTINATION", "TARGET", "DETAIL")
	for _, r := range rules {
		var detail []string
		if r.DstPort != "" {
			detail = append(detail, "dport="+r.DstPort)
		}
		if r.SrcPort != "" {
			detail = append(detail, "sport="+r.SrcPort)
		}
		if len(r.States) > 0 {
			detail = append(detail, "state="+strings.Join(r.States, ","))
		}
		if r.Comment != "" {
			detail = append(detail, fmt.Sprintf("comment=%q", r.Comment))
		}
		fmt.Printf("%-12s %-8s %-18s %-18s %-10s %s\n",
			r.Chain, orDash(r.Protocol), orDash(r.Source), orDash(r.Destination),
			orDash(r.Target), strings.Join(detail, " "))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
