package iptables

import (
	"regexp"
	"strings"
)

// ChainInfo is a chain declaration from a rulespec listing: a -P line
// for built-in chains (with policy) or a -N line for user chains.
type ChainInfo struct {
	Name   string
	Policy string // empty for user-defined chains
}

// Rule is a parsed -A line from a rulespec listing. Options the parser
// does not model are simply not populated; the raw line stays available
// through List.
type Rule struct {
	Chain        string
	Protocol     string
	Source       string
	Destination  string
	InInterface  string
	OutInterface string
	SrcPort      string
	DstPort      string
	Match        string // -m match modules, space separated
	Target       string // -j target
	States       []string
	Comment      string
}

var (
	ruleChainRe   = regexp.MustCompile(`^-A\s+(\S+)`)
	ruleProtoRe   = regexp.MustCompile(`-p\s+(\w+)`)
	ruleSrcRe     = regexp.MustCompile(`-s\s+(\S+)`)
	ruleDstRe     = regexp.MustCompile(`-d\s+(\S+)`)
	ruleInIfRe    = regexp.MustCompile(`-i\s+(\S+)`)
	ruleOutIfRe   = regexp.MustCompile(`-o\s+(\S+)`)
	ruleSportRe   = regexp.MustCompile(`--sport\s+(\S+)`)
	ruleDportRe   = regexp.MustCompile(`--dport\s+(\S+)`)
	ruleDportsRe  = regexp.MustCompile(`--dports\s+(\S+)`)
	ruleMatchRe   = regexp.MustCompile(`-m\s+(\w+)`)
	ruleStateRe   = regexp.MustCompile(`--state\s+(\S+)`)
	ruleCtStateRe = regexp.MustCompile(`--ctstate\s+(\S+)`)
	ruleTargetRe  = regexp.MustCompile(`-j\s+(\S+)`)
	ruleCommentRe = regexp.MustCompile(`--comment\s+"([^"]+)"`)
)

// ParseListing parses the lines of a rulespec listing (`-S` output)
// into chain declarations and rules. Unrecognized lines are skipped.
func ParseListing(lines []string) ([]ChainInfo, []Rule) {
	var chains []ChainInfo
	var rules []Rule

	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "-P "):
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				chains = append(chains, ChainInfo{Name: fields[1], Policy: fields[2]})
			}
		case strings.HasPrefix(line, "-N "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				chains = append(chains, ChainInfo{Name: fields[1]})
			}
		case strings.HasPrefix(line, "-A "):
			if rule := parseRuleLine(line); rule != nil {
				rules = append(rules, *rule)
			}
		}
	}

	return chains, rules
}

func parseRuleLine(line string) *Rule {
	rule := &Rule{}

	if m := ruleChainRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Chain = m[1]
	} else {
		return nil
	}

	if m := ruleProtoRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Protocol = m[1]
	}
	if m := ruleSrcRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Source = m[1]
	}
	if m := ruleDstRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Destination = m[1]
	}
	if m := ruleInIfRe.FindStringSubmatch(line); len(m) > 1 {
		rule.InInterface = m[1]
	}
	if m := ruleOutIfRe.FindStringSubmatch(line); len(m) > 1 {
		rule.OutInterface = m[1]
	}
	if m := ruleSportRe.FindStringSubmatch(line); len(m) > 1 {
		rule.SrcPort = m[1]
	}
	if m := ruleDportRe.FindStringSubmatch(line); len(m) > 1 {
		rule.DstPort = m[1]
	}
	if m := ruleDportsRe.FindStringSubmatch(line); len(m) > 1 {
		rule.DstPort = m[1]
	}

	for _, m := range ruleMatchRe.FindAllStringSubmatch(line, -1) {
		if len(m) > 1 {
			rule.Match += m[1] + " "
		}
	}
	rule.Match = strings.TrimSpace(rule.Match)

	if m := ruleStateRe.FindStringSubmatch(line); len(m) > 1 {
		rule.States = strings.Split(m[1], ",")
	}
	if m := ruleCtStateRe.FindStringSubmatch(line); len(m) > 1 {
		rule.States = strings.Split(m[1], ",")
	}

	if m := ruleTargetRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Target = m[1]
	}
	if m := ruleCommentRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Comment = m[1]
	}

	return rule
}

// StructuredList lists the table/chain and parses the output into
// chain and rule records.
func (ipt *IPTables) StructuredList(table, chain string) ([]ChainInfo, []Rule, error) {
	lines, err := ipt.List(table, chain)
	if err != nil {
		return nil, nil, err
	}
	chains, rules := ParseListing(lines)
	return chains, rules, nil
}

// StructuredListTable lists the whole table and parses the output.
func (ipt *IPTables) StructuredListTable(table string) ([]ChainInfo, []Rule, error) {
	lines, err := ipt.ListTable(table)
	if err != nil {
		return nil, nil, err
	}
	chains, rules := ParseListing(lines)
	return chains, rules, nil
}
