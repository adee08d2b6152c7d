// Package formula evaluates cost formula definitions.
// Dispatch is an exhaustive type switch over the formula variants; every
// strategy is a pure function of (formula, context) and returns a finite
// number. Unevaluable input degrades to 0 so a single bad formula cannot
// poison an aggregate total.
package formula

import (
	"math"

	"go.uber.org/zap"

	"platform-cost/core/expression"
	"platform-cost/core/types"
	"platform-cost/internal/errors"
	"platform-cost/internal/logging"
)

// Evaluate computes the cost of a formula against a variable context.
// The context and formula are never mutated.
func Evaluate(f types.Formula, vars types.Variables) float64 {
	switch v := f.(type) {
	case nil:
		return 0
	case types.Number:
		return finite(float64(v))
	case types.Ref:
		return finite(vars.Lookup(string(v)))
	case types.Expr:
		return expression.Evaluate(string(v), vars)
	case types.Tiered:
		return evalTiered(v, vars)
	case types.Multiplier:
		return evalMultiplier(v, vars)
	case types.Conditional:
		return evalConditional(v, vars)
	case types.Sum:
		return evalSum(v, vars)
	default:
		logging.Warn("unknown formula variant, using 0")
		return 0
	}
}

// ServiceCost evaluates the named service's formula. A missing formula
// is an error to the caller; the aggregator catches it per service.
func ServiceCost(formulas types.ServiceFormulas, service string, vars types.Variables) (float64, error) {
	f, ok := formulas[service]
	if !ok {
		return 0, errors.NotFound("formula", service)
	}
	return Evaluate(f, vars), nil
}

// evalTiered walks tiers in declared order, consuming volume at each
// tier's rate until the volume is exhausted. A tier without a limit
// absorbs all remaining volume.
func evalTiered(f types.Tiered, vars types.Variables) float64 {
	remaining := vars.Lookup(f.VolumeVar)
	var cost float64

	for _, tier := range f.Tiers {
		if remaining <= 0 {
			break
		}
		units := remaining
		if tier.Limit != nil && *tier.Limit < remaining {
			units = *tier.Limit
		}
		rate := Evaluate(tier.Rate, vars)
		cost += units * rate
		remaining -= units
	}

	return finite(cost)
}

// evalMultiplier stacks exponential multipliers on a base expression.
// A context value of exactly 1 contributes nothing; a value of n applies
// the factor to the power n-1.
func evalMultiplier(f types.Multiplier, vars types.Variables) float64 {
	base := expression.Evaluate(string(f.Base), vars)
	multiplier := 1.0

	for _, entry := range f.Entries {
		value, ok := vars[entry.Variable]
		if !ok {
			value = 1
		}
		if value > 1 {
			multiplier *= math.Pow(entry.Factor, value-1)
		}
	}

	return finite(base * multiplier)
}

// evalConditional returns the first satisfied branch's result, or the
// else clause (0 when absent).
func evalConditional(f types.Conditional, vars types.Variables) float64 {
	for _, branch := range f.Conditions {
		if compare(vars.Lookup(branch.If.Variable), branch.If.Operator, branch.If.Value) {
			return Evaluate(branch.Then, vars)
		}
	}
	if f.Else == nil {
		return 0
	}
	return Evaluate(f.Else, vars)
}

func evalSum(f types.Sum, vars types.Variables) float64 {
	var total float64
	for _, term := range f {
		total += Evaluate(term.Formula, vars)
	}
	return finite(total)
}

func compare(value float64, operator string, against float64) bool {
	switch operator {
	case ">":
		return value > against
	case ">=":
		return value >= against
	case "<":
		return value < against
	case "<=":
		return value <= against
	case "==":
		return value == against
	case "!=":
		return value != against
	default:
		logging.Warn("unknown comparison operator", zap.String("operator", operator))
		return false
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
