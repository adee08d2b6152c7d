// Package output produces human and machine-readable calculation reports.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"platform-cost/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Report is the complete output of a calculation run. Either Result
// (single system) or Systems+Combined (comparison) is populated.
type Report struct {
	Currency string                `json:"currency"`
	System   *types.System         `json:"system,omitempty"`
	Result   *types.CalcResult     `json:"result,omitempty"`
	Systems  []types.SystemResult  `json:"systems,omitempty"`
	Combined *types.CombinedResult `json:"combined,omitempty"`
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the report
	Render(w io.Writer, report *Report) error
}

// New returns the formatter for a format name
func New(format string, precision int) (Formatter, error) {
	switch Format(format) {
	case FormatCLI, "":
		return &cliFormatter{precision: precision}, nil
	case FormatJSON:
		return &jsonFormatter{}, nil
	case FormatMarkdown:
		return &markdownFormatter{precision: precision}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// money rounds a float for display. Costs are computed in float64; the
// decimal rounding happens only at the presentation edge so totals do
// not show float artifacts.
func money(v float64, precision int) string {
	return decimal.NewFromFloat(v).Round(int32(precision)).StringFixed(int32(precision))
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1)
}

type cliFormatter struct {
	precision int
}

func (f *cliFormatter) Format() Format { return FormatCLI }

func (f *cliFormatter) Render(w io.Writer, report *Report) error {
	if report.Result != nil {
		f.renderResult(w, report, report.Result, report.System)
	}
	for i := range report.Systems {
		sr := &report.Systems[i]
		f.renderResult(w, report, &sr.Result, &sr.System)
	}
	if report.Combined != nil {
		fmt.Fprintf(w, "Combined (%d systems)\n", report.Combined.SystemCount)
		f.renderBreakdown(w, report, report.Combined.Breakdown, report.Combined.Total)
		if len(report.Combined.UnsupportedServices) > 0 {
			fmt.Fprintf(w, "  not supported anywhere: %s\n", strings.Join(report.Combined.UnsupportedServices, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (f *cliFormatter) renderResult(w io.Writer, report *Report, result *types.CalcResult, system *types.System) {
	if system != nil {
		fmt.Fprintf(w, "%s (%s)\n", system.Name, system.ID)
	}
	f.renderBreakdown(w, report, result.Breakdown, result.Total)
	if len(result.UnsupportedServices) > 0 {
		fmt.Fprintf(w, "  not supported: %s\n", strings.Join(result.UnsupportedServices, ", "))
	}
	fmt.Fprintln(w)
}

func (f *cliFormatter) renderBreakdown(w io.Writer, report *Report, breakdown []types.BreakdownEntry, total float64) {
	for _, entry := range breakdown {
		fmt.Fprintf(w, "  %-14s %12s %s  %5s%%  %s\n",
			entry.Service,
			money(entry.Cost, f.precision),
			report.Currency,
			percent(entry.Percentage),
			bar(entry.Percentage))
	}
	fmt.Fprintf(w, "  %-14s %12s %s\n", "total", money(total, f.precision), report.Currency)
}

// bar renders a proportional block bar for a percentage
func bar(percentage float64) string {
	n := int(percentage / 5)
	if n > 20 {
		n = 20
	}
	return strings.Repeat("█", n)
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format() Format { return FormatJSON }

func (f *jsonFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type markdownFormatter struct {
	precision int
}

func (f *markdownFormatter) Format() Format { return FormatMarkdown }

func (f *markdownFormatter) Render(w io.Writer, report *Report) error {
	if report.Result != nil {
		f.renderResult(w, report, report.Result, report.System)
	}
	for i := range report.Systems {
		sr := &report.Systems[i]
		f.renderResult(w, report, &sr.Result, &sr.System)
	}
	if report.Combined != nil {
		fmt.Fprintf(w, "## Combined (%d systems)\n\n", report.Combined.SystemCount)
		f.renderTable(w, report, report.Combined.Breakdown, report.Combined.Total)
	}
	return nil
}

func (f *markdownFormatter) renderResult(w io.Writer, report *Report, result *types.CalcResult, system *types.System) {
	if system != nil {
		fmt.Fprintf(w, "## %s\n\n", system.Name)
	}
	f.renderTable(w, report, result.Breakdown, result.Total)
	if len(result.UnsupportedServices) > 0 {
		fmt.Fprintf(w, "Not supported: %s\n\n", strings.Join(result.UnsupportedServices, ", "))
	}
}

func (f *markdownFormatter) renderTable(w io.Writer, report *Report, breakdown []types.BreakdownEntry, total float64) {
	fmt.Fprintf(w, "| Service | Cost (%s) | Share |\n", report.Currency)
	fmt.Fprintln(w, "|---|---:|---:|")
	for _, entry := range breakdown {
		fmt.Fprintf(w, "| %s | %s | %s%% |\n",
			entry.Service, money(entry.Cost, f.precision), percent(entry.Percentage))
	}
	fmt.Fprintf(w, "| **total** | **%s** | |\n\n", money(total, f.precision))
}
