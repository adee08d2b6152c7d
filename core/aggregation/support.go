// Package aggregation combines per-service formula results into system
// totals, percentage breakdowns, and multi-system comparisons.
package aggregation

import (
	"strings"

	"platform-cost/core/formula"
	"platform-cost/core/types"
)

// costTokens mark variable names that identify system cost components,
// as opposed to user-tuned parameters.
var costTokens = []string{"_per_", "_cost", "_price", "_base"}

// RequiredComponents returns the cost-component variables a formula
// needs from a system, filtered from its full variable set by the
// cost-token heuristic.
func RequiredComponents(f types.Formula) []string {
	var required []string
	for _, name := range formula.ExtractVariables(f) {
		if isCostComponent(name) {
			required = append(required, name)
		}
	}
	return required
}

// IsSupported reports whether a system's declared components satisfy a
// formula's required cost variables. This is a presence check only;
// component values are not inspected.
func IsSupported(f types.Formula, components types.Variables) bool {
	for _, name := range RequiredComponents(f) {
		if _, ok := components[name]; !ok {
			return false
		}
	}
	return true
}

func isCostComponent(name string) bool {
	for _, token := range costTokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}
