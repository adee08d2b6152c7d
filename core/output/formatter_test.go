package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"platform-cost/core/types"
)

func sampleReport() *Report {
	return &Report{
		Currency: "USD",
		System:   &types.System{ID: "baseline", Name: "Baseline cluster"},
		Result: &types.CalcResult{
			SystemID: "baseline",
			Services: map[string]float64{"transport": 50, "storage": 10},
			Total:    60,
			Breakdown: []types.BreakdownEntry{
				{Service: "transport", Cost: 50, Percentage: 83.333333},
				{Service: "storage", Cost: 10, Percentage: 16.666667},
			},
			SupportedServices:   []string{"storage", "transport"},
			UnsupportedServices: []string{"search"},
		},
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New("yaml", 2); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestCLIRender(t *testing.T) {
	f, err := New("cli", 2)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Baseline cluster (baseline)",
		"transport",
		"50.00 USD",
		"83.3",
		"not supported: search",
		"total",
		"60.00 USD",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONRenderRoundTrips(t *testing.T) {
	f, err := New("json", 2)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Result.Total != 60 {
		t.Errorf("expected total 60, got %v", decoded.Result.Total)
	}
}

func TestMarkdownRender(t *testing.T) {
	f, err := New("markdown", 2)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"## Baseline cluster",
		"| Service | Cost (USD) | Share |",
		"| transport | 50.00 | 83.3% |",
		"| **total** | **60.00** | |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
