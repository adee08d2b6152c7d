// Package aggregation - Single-system cost aggregation
package aggregation

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"platform-cost/core/formula"
	"platform-cost/core/types"
	"platform-cost/internal/logging"
)

// Aggregator runs every service formula against a system and builds
// the total and breakdown. It holds only configuration; each Calculate
// call constructs its context fresh, so concurrent calls are safe.
type Aggregator struct {
	formulas types.ServiceFormulas
}

// NewAggregator creates an aggregator for a formula set
func NewAggregator(formulas types.ServiceFormulas) *Aggregator {
	return &Aggregator{formulas: formulas}
}

// Calculate evaluates all service formulas for one system. Unsupported
// services are excluded from the total, not zeroed. Evaluation errors
// for an individual service are logged and counted as 0 so one broken
// formula cannot abort the whole calculation.
//
// NaN results surface in the breakdown at cost 0 and contribute nothing
// to the total.
func (a *Aggregator) Calculate(system types.System, globals types.Variables, params types.ServiceParams) types.CalcResult {
	result := types.CalcResult{
		SystemID:            system.ID,
		Services:            make(map[string]float64),
		SupportedServices:   []string{},
		UnsupportedServices: []string{},
	}

	for _, service := range sortedServices(a.formulas) {
		def := a.formulas[service]
		if !IsSupported(def, system.Components) {
			result.UnsupportedServices = append(result.UnsupportedServices, service)
			continue
		}

		vars := types.MergeVariables(system.Components, globals, params[service])
		cost, err := formula.ServiceCost(a.formulas, service, vars)
		if err != nil {
			logging.Error("service cost evaluation failed, counting 0",
				zap.String("service", service),
				zap.String("system", system.ID),
				zap.Error(err))
			cost = 0
		}
		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			cost = 0
		}

		result.Services[service] = cost
		result.SupportedServices = append(result.SupportedServices, service)
		result.Total += cost
	}

	result.Breakdown = buildBreakdown(result.Services, result.Total)
	return result
}

// buildBreakdown turns a service cost map into percentage-annotated
// entries sorted descending by cost, ties broken by service name.
func buildBreakdown(services map[string]float64, total float64) []types.BreakdownEntry {
	entries := make([]types.BreakdownEntry, 0, len(services))
	for service, cost := range services {
		entry := types.BreakdownEntry{Service: service, Cost: cost}
		if total > 0 {
			entry.Percentage = cost / total * 100
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Cost != entries[j].Cost {
			return entries[i].Cost > entries[j].Cost
		}
		return entries[i].Service < entries[j].Service
	})

	return entries
}

func sortedServices(formulas types.ServiceFormulas) []string {
	services := make([]string, 0, len(formulas))
	for name := range formulas {
		services = append(services, name)
	}
	sort.Strings(services)
	return services
}
