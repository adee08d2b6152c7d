// Package aggregation - Multi-system aggregation
package aggregation

import (
	"sort"

	"platform-cost/core/types"
)

// CalculateMulti runs the aggregator once per system with that system's
// own components merged into the context.
func (a *Aggregator) CalculateMulti(systems []types.System, globals types.Variables, params types.ServiceParams) []types.SystemResult {
	results := make([]types.SystemResult, 0, len(systems))
	for _, system := range systems {
		results = append(results, types.SystemResult{
			System: system,
			Result: a.Calculate(system, globals, params),
		})
	}
	return results
}

// Combine merges per-system results into one view. Each service's
// combined cost sums the contributions of the systems that support it;
// a service is globally unsupported only when no system supports it.
func Combine(results []types.SystemResult) types.CombinedResult {
	combined := types.CombinedResult{
		Services:            make(map[string]float64),
		SupportedServices:   []string{},
		UnsupportedServices: []string{},
		IsMultiSystem:       true,
		SystemCount:         len(results),
	}

	everywhere := make(map[string]bool)
	supported := make(map[string]bool)

	for _, sr := range results {
		for service, cost := range sr.Result.Services {
			combined.Services[service] += cost
			supported[service] = true
		}
		for _, service := range sr.Result.UnsupportedServices {
			everywhere[service] = true
		}
		combined.Total += sr.Result.Total
	}

	for service := range supported {
		combined.SupportedServices = append(combined.SupportedServices, service)
	}
	sort.Strings(combined.SupportedServices)

	for service := range everywhere {
		if !supported[service] {
			combined.UnsupportedServices = append(combined.UnsupportedServices, service)
		}
	}
	sort.Strings(combined.UnsupportedServices)

	combined.Breakdown = buildBreakdown(combined.Services, combined.Total)
	return combined
}
