// Package types defines the data model for the cost calculation engine.
package types

// Variables is a variable context: variable name to numeric value.
// It is built fresh per calculation by merging sources in increasing
// precedence; the engine never mutates it.
type Variables map[string]float64

// MergeVariables combines variable maps in increasing precedence.
// Later maps overwrite earlier ones on key collision.
func MergeVariables(sources ...Variables) Variables {
	merged := make(Variables)
	for _, src := range sources {
		for k, v := range src {
			merged[k] = v
		}
	}
	return merged
}

// Clone returns a copy of the variable map
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Lookup returns the value for name, or 0 if absent
func (v Variables) Lookup(name string) float64 {
	return v[name]
}

// System is a named hardware/platform profile with its declared
// cost-component values. Read-only to the engine.
type System struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Components  Variables `json:"components" yaml:"components"`
}

// ServiceFormulas maps a service name (transport, storage, extraction,
// enrichment, modeling, search, exploration, ...) to its formula.
type ServiceFormulas map[string]Formula

// ServiceParams holds per-service parameter overrides for one calculation.
type ServiceParams map[string]Variables

// MultiplierTable is a named multiplier group: selector key to factor.
// Example: volume_discount: {small: 1.0, medium: 0.9, large: 0.75}.
type MultiplierTable map[string]float64

// MultiplierTables maps group name to its table.
type MultiplierTables map[string]MultiplierTable

// ResolveSelections turns a user's multiplier selections (group name to
// selector key) into context variables named after the group. Unknown
// groups or selectors are skipped.
func (mt MultiplierTables) ResolveSelections(selections map[string]string) Variables {
	vars := make(Variables)
	for group, key := range selections {
		table, ok := mt[group]
		if !ok {
			continue
		}
		factor, ok := table[key]
		if !ok {
			continue
		}
		vars[group] = factor
	}
	return vars
}
