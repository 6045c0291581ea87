package iptables

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrRuleExists is returned by InsertUnique and AppendUnique when the
// rule is already present in the chain.
var ErrRuleExists = errors.New("rule already present in chain")

// Exists checks for the rule in the table/chain. Binaries without -C
// fall back to scanning the listing output.
func (ipt *IPTables) Exists(table, chain string, rulespec ...string) (bool, error) {
	if !ipt.caps.HasCheck {
		return ipt.existsLegacy(table, chain, rulespec...)
	}

	res, err := ipt.run(append([]string{"-t", table, "-C", chain}, rulespec...)...)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// existsLegacy emulates -C on pre-1.4.11 binaries by scanning the
// rulespec listing of the whole table.
func (ipt *IPTables) existsLegacy(table, chain string, rulespec ...string) (bool, error) {
	res, err := ipt.run("-t", table, "-S")
	if err != nil {
		return false, err
	}
	needle := "-A " + chain + " " + strings.Join(rulespec, " ")
	return strings.Contains(string(res.Stdout), needle), nil
}

// Insert inserts the rule at position pos (1-based) in the table/chain.
func (ipt *IPTables) Insert(table, chain string, pos int, rulespec ...string) (bool, error) {
	args := append([]string{"-t", table, "-I", chain, strconv.Itoa(pos)}, rulespec...)
	res, err := ipt.run(args...)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// InsertUnique inserts the rule at position pos unless it already exists.
func (ipt *IPTables) InsertUnique(table, chain string, pos int, rulespec ...string) (bool, error) {
	exists, err := ipt.Exists(table, chain, rulespec...)
	if err != nil {
		return false, err
	}
	if exists {
		return false, fmt.Errorf("%w: %s/%s", ErrRuleExists, table, chain)
	}
	return ipt.Insert(table, chain, pos, rulespec...)
}

// Replace replaces the rule at position pos in the table/chain.
func (ipt *IPTables) Replace(table, chain string, pos int, rulespec ...string) (bool, error) {
	args := append([]string{"-t", table, "-R", chain, strconv.Itoa(pos)}, rulespec...)
	res, err := ipt.run(args...)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// Append appends the rule to the table/chain.
func (ipt *IPTables) Append(table, chain string, rulespec ...string) (bool, error) {
	args := append([]string{"-t", table, "-A", chain}, rulespec...)
	res, err := ipt.run(args...)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// AppendUnique appends the rule unless it already exists.
func (ipt *IPTables) AppendUnique(table, chain string, rulespec ...string) (bool, error) {
	exists, err := ipt.Exists(table, chain, rulespec...)
	if err != nil {
		return false, err
	}
	if exists {
		return false, fmt.Errorf("%w: %s/%s", ErrRuleExists, table, chain)
	}
	return ipt.Append(table, chain, rulespec...)
}

// AppendReplace appends the rule, first deleting it if already present.
func (ipt *IPTables) AppendReplace(table, chain string, rulespec ...string) (bool, error) {
	exists, err := ipt.Exists(table, chain, rulespec...)
	if err != nil {
		return false, err
	}
	if exists {
		if _, err := ipt.Delete(table, chain, rulespec...); err != nil {
			return false, err
		}
	}
	return ipt.Append(table, chain, rulespec...)
}

// Delete deletes the rule from the table/chain.
func (ipt *IPTables) Delete(table, chain string, rulespec ...string) (bool, error) {
	args := append([]string{"-t", table, "-D", chain}, rulespec...)
	res, err := ipt.run(args...)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// DeleteAll deletes every repetition of the rule from the table/chain.
func (ipt *IPTables) DeleteAll(table, chain string, rulespec ...string) (bool, error) {
	for {
		exists, err := ipt.Exists(table, chain, rulespec...)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}

		ok, err := ipt.Delete(table, chain, rulespec...)
		if err != nil {
			return false, err
		}
		if !ok {
			// The rule is listed but undeletable; bail out rather
			// than spin.
			return false, nil
		}
	}
}

// List lists the rules of the table/chain in rulespec form.
func (ipt *IPTables) List(table, chain string) ([]string, error) {
	return ipt.getList("-t", table, "-S", chain)
}

// ListTable lists all rules of the table in rulespec form.
func (ipt *IPTables) ListTable(table string) ([]string, error) {
	return ipt.getList("-t", table, "-S")
}

// ListChains lists the name of each chain in the table.
func (ipt *IPTables) ListChains(table string) ([]string, error) {
	lines, err := ipt.getList("-t", table, "-S")
	if err != nil {
		return nil, err
	}

	var chains []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 1 && (fields[0] == "-P" || fields[0] == "-N") {
			chains = append(chains, fields[1])
		}
	}
	return chains, nil
}

// NewChain creates a new user-defined chain in the table.
func (ipt *IPTables) NewChain(table, chain string) (bool, error) {
	res, err := ipt.run("-t", table, "-N", chain)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// FlushChain deletes all rules of the chain.
func (ipt *IPTables) FlushChain(table, chain string) (bool, error) {
	res, err := ipt.run("-t", table, "-F", chain)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// RenameChain renames a chain in the table.
func (ipt *IPTables) RenameChain(table, oldChain, newChain string) (bool, error) {
	res, err := ipt.run("-t", table, "-E", oldChain, newChain)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// DeleteChain deletes a user-defined chain in the table.
func (ipt *IPTables) DeleteChain(table, chain string) (bool, error) {
	res, err := ipt.run("-t", table, "-X", chain)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// FlushTable flushes every chain in the table.
func (ipt *IPTables) FlushTable(table string) (bool, error) {
	res, err := ipt.run("-t", table, "-F")
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

func (ipt *IPTables) getList(args ...string) ([]string, error) {
	res, err := ipt.run(args...)
	if err != nil {
		return nil, err
	}

	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}
