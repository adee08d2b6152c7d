package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"platform-cost/core/types"
	"platform-cost/internal/config"
)

func testPricing() *config.Pricing {
	return &config.Pricing{
		BaseCosts: types.Variables{"transfer_gb": 100},
		Formulas: types.ServiceFormulas{
			"transport": types.Expr("$transfer_gb * $transfer_cost_per_gb"),
			"search":    types.Expr("$queries * $query_price"),
		},
		Multipliers: types.MultiplierTables{
			"volume_discount": {"small": 1.0, "large": 0.5},
		},
		Systems: map[string]types.System{
			"baseline": {
				ID:         "baseline",
				Name:       "Baseline cluster",
				Components: types.Variables{"transfer_cost_per_gb": 0.05},
			},
			"indexed": {
				ID:   "indexed",
				Name: "Indexed cluster",
				Components: types.Variables{
					"transfer_cost_per_gb": 0.10,
					"query_price":          0.001,
				},
			},
		},
	}
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleCalculate(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodPost, "/calculate", CalculateRequest{
		System: "baseline",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp CalculateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	// base cost transfer_gb=100 * component 0.05
	if resp.Result.Total != 5 {
		t.Errorf("expected total 5, got %v", resp.Result.Total)
	}
	if len(resp.Result.UnsupportedServices) != 1 || resp.Result.UnsupportedServices[0] != "search" {
		t.Errorf("expected search unsupported, got %v", resp.Result.UnsupportedServices)
	}
	if resp.Metadata == nil || resp.Metadata.InputHash == "" {
		t.Error("expected input hash metadata")
	}
}

func TestHandleCalculateVariablePrecedence(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodPost, "/calculate", CalculateRequest{
		System:    "baseline",
		Variables: types.Variables{"transfer_gb": 10},
	})

	var resp CalculateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result.Total != 0.5 {
		t.Errorf("caller variables must override base costs, got total %v", resp.Result.Total)
	}
}

func TestHandleCalculateUnknownSystem(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodPost, "/calculate", CalculateRequest{System: "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleCalculateMissingSystem(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodPost, "/calculate", CalculateRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCompare(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodPost, "/compare", CompareRequest{
		Systems:   []string{"baseline", "indexed"},
		Variables: types.Variables{"queries": 1000},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp CompareResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if len(resp.Systems) != 2 {
		t.Fatalf("expected 2 system results, got %d", len(resp.Systems))
	}
	if !resp.Combined.IsMultiSystem || resp.Combined.SystemCount != 2 {
		t.Error("expected multi-system combined result")
	}
	// transport: 100*0.05 + 100*0.10; search: only indexed supports it
	if resp.Combined.Services["transport"] != 15 {
		t.Errorf("expected combined transport 15, got %v", resp.Combined.Services["transport"])
	}
	if resp.Combined.Services["search"] != 1 {
		t.Errorf("expected combined search 1, got %v", resp.Combined.Services["search"])
	}
}

func TestHandleCompareDefaultsToAllSystems(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodPost, "/compare", CompareRequest{})
	var resp CompareResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Systems) != 2 {
		t.Errorf("expected all systems, got %d", len(resp.Systems))
	}
}

func TestHandleSystems(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodGet, "/systems", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Systems []SystemInfo `json:"systems"`
		Count   int          `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || resp.Systems[0].ID != "baseline" {
		t.Errorf("unexpected systems response: %+v", resp)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer("test", testPricing())

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestInputHashDeterministic(t *testing.T) {
	req := &CalculateRequest{System: "baseline", Variables: types.Variables{"x": 1}}
	if inputHash(req) != inputHash(req) {
		t.Error("input hash must be deterministic")
	}
	other := &CalculateRequest{System: "indexed"}
	if inputHash(req) == inputHash(other) {
		t.Error("different requests must hash differently")
	}
}
