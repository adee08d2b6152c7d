// Package formula - Variable extraction
package formula

import (
	"platform-cost/core/expression"
	"platform-cost/core/types"
)

// ExtractVariables returns every variable name a formula references,
// recursing through nested formulas and expression strings. Order is
// first occurrence; duplicates are removed.
func ExtractVariables(f types.Formula) []string {
	c := &collector{seen: make(map[string]bool)}
	c.walk(f)
	return c.names
}

type collector struct {
	names []string
	seen  map[string]bool
}

func (c *collector) add(name string) {
	if name == "" || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.names = append(c.names, name)
}

func (c *collector) addRefs(s string) {
	for _, name := range expression.ExtractRefs(s) {
		c.add(name)
	}
}

func (c *collector) walk(f types.Formula) {
	switch v := f.(type) {
	case types.Ref:
		c.add(string(v))
	case types.Expr:
		c.addRefs(string(v))
	case types.Tiered:
		c.add(v.VolumeVar)
		for _, tier := range v.Tiers {
			c.walk(tier.Rate)
		}
	case types.Multiplier:
		c.addRefs(string(v.Base))
		for _, entry := range v.Entries {
			c.add(entry.Variable)
		}
	case types.Conditional:
		for _, branch := range v.Conditions {
			c.add(branch.If.Variable)
			c.walk(branch.Then)
		}
		c.walk(v.Else)
	case types.Sum:
		for _, term := range v {
			c.walk(term.Formula)
		}
	}
}
