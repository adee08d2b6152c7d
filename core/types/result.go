// Package types - Calculation results
package types

// BreakdownEntry is one service's share of a calculation result.
// Entries are sorted descending by cost.
type BreakdownEntry struct {
	Service    string  `json:"service"`
	Cost       float64 `json:"cost"`
	Percentage float64 `json:"percentage"`
}

// CalcResult is the outcome of a single-system cost calculation.
// Services holds the evaluated cost per supported service; unsupported
// services are listed separately and never carry a cost entry.
type CalcResult struct {
	SystemID            string             `json:"system_id,omitempty"`
	Services            map[string]float64 `json:"services"`
	Total               float64            `json:"total"`
	Breakdown           []BreakdownEntry   `json:"breakdown"`
	SupportedServices   []string           `json:"supported_services"`
	UnsupportedServices []string           `json:"unsupported_services"`
}

// SystemResult pairs a system with its calculation result
type SystemResult struct {
	System System     `json:"system"`
	Result CalcResult `json:"result"`
}

// CombinedResult aggregates several systems' results into one view.
// A service is globally unsupported only if no selected system supports
// it; otherwise its combined cost sums the supporting systems' costs.
type CombinedResult struct {
	Services            map[string]float64 `json:"services"`
	Total               float64            `json:"total"`
	Breakdown           []BreakdownEntry   `json:"breakdown"`
	SupportedServices   []string           `json:"supported_services"`
	UnsupportedServices []string           `json:"unsupported_services"`
	IsMultiSystem       bool               `json:"is_multi_system"`
	SystemCount         int                `json:"system_count"`
}
