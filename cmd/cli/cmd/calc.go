// Package cmd - calc and compare commands
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"platform-cost/core/aggregation"
	"platform-cost/core/output"
	"platform-cost/core/types"
	"platform-cost/internal/config"
)

var (
	outputFormat string
	setVars      []string
	selections   []string
)

// calcCmd calculates costs for a single system
var calcCmd = &cobra.Command{
	Use:   "calc [system]",
	Short: "Calculate service costs for one system",
	Long: `Evaluate every service formula against a system profile and print
the total with a per-service breakdown.

Variables are set with repeated --set flags; multiplier selections with
--select group=key.

Examples:
  platform-cost calc baseline --set transfer_gb=1500 --set stored_gb=2000
  platform-cost calc dense --select volume_discount=large --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

// compareCmd calculates costs across several systems
var compareCmd = &cobra.Command{
	Use:   "compare [system...]",
	Short: "Compare service costs across systems",
	Long: `Run the calculation for several system profiles and combine the
results. With no arguments, all configured systems are compared.`,
	RunE: runCompare,
}

func init() {
	for _, c := range []*cobra.Command{calcCmd, compareCmd} {
		c.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown)")
		c.Flags().StringArrayVar(&setVars, "set", nil, "set a variable (name=value), repeatable")
		c.Flags().StringArrayVar(&selections, "select", nil, "select a multiplier (group=key), repeatable")
	}
}

func runCalc(cmd *cobra.Command, args []string) error {
	pricing, err := loadPricing()
	if err != nil {
		return err
	}

	system, err := pricing.System(args[0])
	if err != nil {
		return err
	}

	globals, err := buildGlobals(pricing)
	if err != nil {
		return err
	}

	agg := aggregation.NewAggregator(pricing.Formulas)
	result := agg.Calculate(system, globals, nil)

	return render(&output.Report{
		Currency: config.Get().Pricing.Currency,
		System:   &system,
		Result:   &result,
	})
}

func runCompare(cmd *cobra.Command, args []string) error {
	pricing, err := loadPricing()
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		ids = pricing.SystemIDs()
	}

	systems := make([]types.System, 0, len(ids))
	for _, id := range ids {
		system, err := pricing.System(id)
		if err != nil {
			return err
		}
		systems = append(systems, system)
	}

	globals, err := buildGlobals(pricing)
	if err != nil {
		return err
	}

	agg := aggregation.NewAggregator(pricing.Formulas)
	results := agg.CalculateMulti(systems, globals, nil)
	combined := aggregation.Combine(results)

	return render(&output.Report{
		Currency: config.Get().Pricing.Currency,
		Systems:  results,
		Combined: &combined,
	})
}

// buildGlobals merges base costs, --select multiplier choices, and
// --set variables, in increasing precedence.
func buildGlobals(pricing *config.Pricing) (types.Variables, error) {
	vars, err := parseSetFlags(setVars)
	if err != nil {
		return nil, err
	}

	chosen := make(map[string]string)
	for _, sel := range selections {
		group, key, ok := strings.Cut(sel, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --select %q, expected group=key", sel)
		}
		chosen[group] = key
	}

	return types.MergeVariables(
		pricing.BaseCosts,
		pricing.Multipliers.ResolveSelections(chosen),
		vars,
	), nil
}

func parseSetFlags(flags []string) (types.Variables, error) {
	vars := make(types.Variables, len(flags))
	for _, flag := range flags {
		name, raw, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", flag)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set value %q: %w", raw, err)
		}
		vars[name] = value
	}
	return vars, nil
}

func render(report *output.Report) error {
	cfg := config.Get()
	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}

	formatter, err := output.New(format, cfg.Output.Precision)
	if err != nil {
		return err
	}
	return formatter.Render(os.Stdout, report)
}
