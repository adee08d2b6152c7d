package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-cost/core/types"
)

func testFormulas() types.ServiceFormulas {
	return types.ServiceFormulas{
		"transport": types.Expr("$transfer_gb * $transfer_cost_per_gb"),
		"storage":   types.Expr("$stored_gb * $storage_cost_per_gb"),
		"search":    types.Expr("$queries * $query_price"),
	}
}

func testSystem() types.System {
	return types.System{
		ID:   "baseline",
		Name: "Baseline cluster",
		Components: types.Variables{
			"transfer_cost_per_gb": 0.05,
			"storage_cost_per_gb":  0.02,
		},
	}
}

func TestCalculateTotalsAndBreakdown(t *testing.T) {
	agg := NewAggregator(testFormulas())
	globals := types.Variables{"transfer_gb": 1000, "stored_gb": 500}

	result := agg.Calculate(testSystem(), globals, nil)

	// search requires query_price, which the system lacks
	assert.Equal(t, []string{"search"}, result.UnsupportedServices)
	assert.Equal(t, []string{"storage", "transport"}, result.SupportedServices)

	assert.InDelta(t, 50.0, result.Services["transport"], 1e-9)
	assert.InDelta(t, 10.0, result.Services["storage"], 1e-9)
	assert.InDelta(t, 60.0, result.Total, 1e-9)

	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "transport", result.Breakdown[0].Service)
	assert.InDelta(t, 50.0/60.0*100, result.Breakdown[0].Percentage, 1e-9)
	assert.Equal(t, "storage", result.Breakdown[1].Service)

	// search carries no cost entry at all
	_, ok := result.Services["search"]
	assert.False(t, ok)
}

func TestCalculatePerServiceOverrides(t *testing.T) {
	agg := NewAggregator(testFormulas())
	globals := types.Variables{"transfer_gb": 1000, "stored_gb": 0}
	params := types.ServiceParams{
		"transport": {"transfer_gb": 10},
	}

	result := agg.Calculate(testSystem(), globals, params)

	// Override applies to transport only
	assert.InDelta(t, 0.5, result.Services["transport"], 1e-9)
	assert.InDelta(t, 0.0, result.Services["storage"], 1e-9)
}

func TestCalculateComponentPrecedence(t *testing.T) {
	agg := NewAggregator(types.ServiceFormulas{
		"storage": types.Expr("$storage_cost_per_gb"),
	})
	system := types.System{
		ID:         "sys",
		Components: types.Variables{"storage_cost_per_gb": 0.02},
	}

	// Globals overwrite system components on collision
	result := agg.Calculate(system, types.Variables{"storage_cost_per_gb": 0.5}, nil)
	assert.InDelta(t, 0.5, result.Services["storage"], 1e-9)
}

func TestCalculateZeroTotalBreakdown(t *testing.T) {
	agg := NewAggregator(types.ServiceFormulas{
		"storage": types.Expr("$stored_gb * $storage_cost_per_gb"),
	})

	result := agg.Calculate(testSystem(), types.Variables{"stored_gb": 0}, nil)

	require.Len(t, result.Breakdown, 1)
	assert.Zero(t, result.Breakdown[0].Cost)
	assert.Zero(t, result.Breakdown[0].Percentage)
}

func TestCalculateBrokenFormulaIsolated(t *testing.T) {
	formulas := testFormulas()
	// Unparsable expression evaluates to 0 without aborting the rest
	formulas["storage"] = types.Expr("((")

	agg := NewAggregator(formulas)
	result := agg.Calculate(testSystem(), types.Variables{"transfer_gb": 100}, nil)

	assert.InDelta(t, 5.0, result.Services["transport"], 1e-9)
	assert.Zero(t, result.Services["storage"])
	assert.Contains(t, result.SupportedServices, "storage")
}

func TestRequiredComponents(t *testing.T) {
	f := types.Expr("$transfer_gb * $transfer_cost_per_gb + $region_base")
	assert.Equal(t, []string{"transfer_cost_per_gb", "region_base"}, RequiredComponents(f))
}

func TestIsSupported(t *testing.T) {
	f := types.Expr("$foo_cost * $volume")

	assert.True(t, IsSupported(f, types.Variables{"foo_cost": 0.1}))
	// volume is not a cost component, its absence does not matter
	assert.True(t, IsSupported(f, types.Variables{"foo_cost": 0}))
	assert.False(t, IsSupported(f, types.Variables{"other_cost": 1}))
	assert.False(t, IsSupported(f, types.Variables{}))
}

func TestIsSupportedNestedFormula(t *testing.T) {
	f := types.Tiered{
		VolumeVar: "events",
		Tiers: []types.Tier{
			{Rate: types.Expr("$event_price")},
		},
	}
	assert.True(t, IsSupported(f, types.Variables{"event_price": 0.001}))
	assert.False(t, IsSupported(f, types.Variables{}))
}
