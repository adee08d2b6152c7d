package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-cost/core/aggregation"
	"platform-cost/core/types"
	"platform-cost/internal/errors"
)

const pricingYAML = `
base_costs:
  support_base: 50

formulas:
  transport: "$transfer_gb * $transfer_cost_per_gb"
  storage:
    type: tiered
    volume_var: stored_gb
    tiers:
      - limit: 1000
        rate: 0.025
      - rate: 0.015
  modeling:
    type: multiplier
    base: "$training_runs * $training_cost_per_run"
    multipliers:
      - variable: replication
        factor: 1.5
  search:
    type: conditional
    conditions:
      - if:
          variable: queries
          operator: ">"
          value: 1000000
        then: "$queries * $query_price * 0.8"
    else: "$queries * $query_price"
  exploration:
    seats: "$seats * $seat_price"
    flat: 10

multipliers:
  volume_discount:
    small: 1.0
    large: 0.75

systems:
  baseline:
    name: Baseline cluster
    description: Shared commodity hardware
    components:
      transfer_cost_per_gb: 0.05
      query_price: 0.0001
  dense:
    name: Dense storage tier
    components:
      transfer_cost_per_gb: 0.03
`

func writePricing(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPricingYAML(t *testing.T) {
	pricing, err := LoadPricing(writePricing(t, pricingYAML))
	require.NoError(t, err)

	assert.Len(t, pricing.Formulas, 5)
	assert.Equal(t, types.Variables{"support_base": 50}, pricing.BaseCosts)
	assert.Equal(t, []string{"baseline", "dense"}, pricing.SystemIDs())

	// Scalar formula classified as an expression
	assert.IsType(t, types.Expr(""), pricing.Formulas["transport"])

	tiered, ok := pricing.Formulas["storage"].(types.Tiered)
	require.True(t, ok)
	assert.Equal(t, "stored_gb", tiered.VolumeVar)
	require.Len(t, tiered.Tiers, 2)
	require.NotNil(t, tiered.Tiers[0].Limit)
	assert.Equal(t, 1000.0, *tiered.Tiers[0].Limit)
	assert.Nil(t, tiered.Tiers[1].Limit)

	mult, ok := pricing.Formulas["modeling"].(types.Multiplier)
	require.True(t, ok)
	require.Len(t, mult.Entries, 1)
	assert.Equal(t, 1.5, mult.Entries[0].Factor)

	cond, ok := pricing.Formulas["search"].(types.Conditional)
	require.True(t, ok)
	require.Len(t, cond.Conditions, 1)
	assert.Equal(t, ">", cond.Conditions[0].If.Operator)
	assert.NotNil(t, cond.Else)

	// Untagged mapping decodes as a sum
	sum, ok := pricing.Formulas["exploration"].(types.Sum)
	require.True(t, ok)
	assert.Len(t, sum, 2)

	baseline, err := pricing.System("baseline")
	require.NoError(t, err)
	assert.Equal(t, "Baseline cluster", baseline.Name)
	assert.Equal(t, 0.05, baseline.Components["transfer_cost_per_gb"])
}

func TestLoadPricingMissingFile(t *testing.T) {
	_, err := LoadPricing(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestLoadPricingStructuralValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "no formulas",
			content: `
systems:
  a:
    name: A
`,
		},
		{
			name: "no systems",
			content: `
formulas:
  transport: "$x"
`,
		},
		{
			name: "unnamed system",
			content: `
formulas:
  transport: "$x"
systems:
  a:
    components: {}
`,
		},
		{
			name: "unknown formula type",
			content: `
formulas:
  transport:
    type: quantum
systems:
  a:
    name: A
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPricing(writePricing(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig), "got %v", err)
		})
	}
}

func TestSystemNotFound(t *testing.T) {
	pricing, err := LoadPricing(writePricing(t, pricingYAML))
	require.NoError(t, err)

	_, err = pricing.System("missing")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestSnapshotRoundTrip(t *testing.T) {
	pricing, err := LoadPricing(writePricing(t, pricingYAML))
	require.NoError(t, err)

	vars := types.MergeVariables(pricing.BaseCosts, types.Variables{
		"transfer_gb":           1500,
		"stored_gb":             2000,
		"queries":               2000000,
		"training_runs":         10,
		"training_cost_per_run": 3,
		"replication":           2,
		"seats":                 5,
		"seat_price":            20,
	})

	agg := aggregation.NewAggregator(pricing.Formulas)
	baseline := pricing.Systems["baseline"]
	before := agg.Calculate(baseline, vars, nil)

	data, err := ExportSnapshot(pricing, vars)
	require.NoError(t, err)

	restored, restoredVars, err := ImportSnapshot(data)
	require.NoError(t, err)

	after := aggregation.NewAggregator(restored.Formulas).
		Calculate(restored.Systems["baseline"], restoredVars, nil)

	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, before.Services, after.Services)
	assert.Equal(t, before.Breakdown, after.Breakdown)
	assert.Equal(t, before.SupportedServices, after.SupportedServices)
	assert.Equal(t, before.UnsupportedServices, after.UnsupportedServices)
}

func TestResolveSelections(t *testing.T) {
	pricing, err := LoadPricing(writePricing(t, pricingYAML))
	require.NoError(t, err)

	vars := pricing.Multipliers.ResolveSelections(map[string]string{
		"volume_discount": "large",
		"unknown_group":   "x",
	})
	assert.Equal(t, types.Variables{"volume_discount": 0.75}, vars)
}
