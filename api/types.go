// Package api - API types for cost calculation
// These types define the contract for the /calculate and /compare
// endpoints. The API is stateless, idempotent, and deterministic.
package api

import (
	"platform-cost/core/types"
)

// CalculateRequest is the input to POST /calculate
type CalculateRequest struct {
	// System is the system id to calculate against
	System string `json:"system"`

	// Variables are caller-supplied context variables (UI state)
	Variables types.Variables `json:"variables,omitempty"`

	// Multipliers selects one entry per multiplier group
	Multipliers map[string]string `json:"multipliers,omitempty"`

	// Params are per-service parameter overrides
	Params types.ServiceParams `json:"params,omitempty"`
}

// CompareRequest is the input to POST /compare
type CompareRequest struct {
	// Systems are the system ids to compare; empty means all
	Systems []string `json:"systems"`

	Variables   types.Variables     `json:"variables,omitempty"`
	Multipliers map[string]string   `json:"multipliers,omitempty"`
	Params      types.ServiceParams `json:"params,omitempty"`
}

// CalculateResponse is the output of POST /calculate
type CalculateResponse struct {
	Result   types.CalcResult  `json:"result"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// CompareResponse is the output of POST /compare
type CompareResponse struct {
	Systems  []types.SystemResult `json:"systems"`
	Combined types.CombinedResult `json:"combined"`
	Metadata *ResponseMetadata    `json:"metadata,omitempty"`
}

// ResponseMetadata carries provenance for reproducibility
type ResponseMetadata struct {
	// InputHash is the deterministic hash of the request
	InputHash string `json:"input_hash"`

	// EngineVersion is the engine version that produced the result
	EngineVersion string `json:"engine_version"`

	// DurationMs is the calculation duration
	DurationMs int64 `json:"duration_ms"`
}

// SystemInfo describes one system for GET /systems
type SystemInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Components  int    `json:"components"`
}
