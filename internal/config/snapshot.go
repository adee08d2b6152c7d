// Package config - Snapshot export/import
// A snapshot captures the full pricing configuration plus the current
// variable state so a calculation can be reproduced exactly elsewhere.
package config

import (
	"encoding/json"

	"platform-cost/core/types"
	"platform-cost/internal/errors"
)

// Snapshot is the serialized form of pricing configuration and
// variable state.
type Snapshot struct {
	Version     string                     `json:"version"`
	BaseCosts   types.Variables            `json:"base_costs"`
	Formulas    map[string]json.RawMessage `json:"formulas"`
	Multipliers types.MultiplierTables     `json:"multipliers"`
	Systems     map[string]types.System    `json:"systems"`
	Variables   types.Variables            `json:"variables"`
}

// ExportSnapshot serializes a pricing configuration and the current
// variable state.
func ExportSnapshot(pricing *Pricing, vars types.Variables) ([]byte, error) {
	snap := Snapshot{
		Version:     "1",
		BaseCosts:   pricing.BaseCosts,
		Formulas:    make(map[string]json.RawMessage, len(pricing.Formulas)),
		Multipliers: pricing.Multipliers,
		Systems:     pricing.Systems,
		Variables:   vars,
	}

	for service, f := range pricing.Formulas {
		data, err := types.MarshalFormulaJSON(f)
		if err != nil {
			return nil, errors.Config("encoding formula "+service, err)
		}
		snap.Formulas[service] = data
	}

	return json.MarshalIndent(snap, "", "  ")
}

// ImportSnapshot restores a pricing configuration and variable state
// from an exported snapshot. Re-importing an export reproduces
// identical calculation results for the same inputs.
func ImportSnapshot(data []byte) (*Pricing, types.Variables, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, errors.Config("parsing snapshot", err)
	}

	pricing := &Pricing{
		BaseCosts:   snap.BaseCosts,
		Formulas:    make(types.ServiceFormulas, len(snap.Formulas)),
		Multipliers: snap.Multipliers,
		Systems:     snap.Systems,
	}
	if pricing.BaseCosts == nil {
		pricing.BaseCosts = types.Variables{}
	}
	if pricing.Multipliers == nil {
		pricing.Multipliers = types.MultiplierTables{}
	}
	if pricing.Systems == nil {
		pricing.Systems = map[string]types.System{}
	}

	for service, msg := range snap.Formulas {
		f, err := types.UnmarshalFormulaJSON(msg)
		if err != nil {
			return nil, nil, errors.Config("decoding formula "+service, err)
		}
		pricing.Formulas[service] = f
	}

	if err := pricing.Validate(); err != nil {
		return nil, nil, err
	}
	return pricing, snap.Variables, nil
}
