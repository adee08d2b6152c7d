// Package api - Thin, deterministic API layer
// The API is only responsible for input ingestion, engine orchestration,
// and output serialization. It never performs cost logic.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"platform-cost/core/aggregation"
	"platform-cost/core/types"
	"platform-cost/internal/config"
)

// Server is the API server
type Server struct {
	pricing    *config.Pricing
	aggregator *aggregation.Aggregator
	mux        *http.ServeMux
	version    string
}

// NewServer creates a new API server over a loaded pricing configuration
func NewServer(version string, pricing *config.Pricing) *Server {
	s := &Server{
		pricing:    pricing,
		aggregator: aggregation.NewAggregator(pricing.Formulas),
		mux:        http.NewServeMux(),
		version:    version,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /calculate", s.handleCalculate)
	s.mux.HandleFunc("POST /compare", s.handleCompare)
	s.mux.HandleFunc("GET /systems", s.handleSystems)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleCalculate handles POST /calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if req.System == "" {
		s.writeError(w, "VALIDATION_ERROR", "system is required", http.StatusBadRequest)
		return
	}

	system, err := s.pricing.System(req.System)
	if err != nil {
		s.writeError(w, "UNKNOWN_SYSTEM", err.Error(), http.StatusNotFound)
		return
	}

	result := s.aggregator.Calculate(system, s.buildGlobals(req.Variables, req.Multipliers), req.Params)

	s.writeJSON(w, &CalculateResponse{
		Result: result,
		Metadata: &ResponseMetadata{
			InputHash:     inputHash(&req),
			EngineVersion: s.version,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handleCompare handles POST /compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	ids := req.Systems
	if len(ids) == 0 {
		ids = s.pricing.SystemIDs()
	}

	systems := make([]types.System, 0, len(ids))
	for _, id := range ids {
		system, err := s.pricing.System(id)
		if err != nil {
			s.writeError(w, "UNKNOWN_SYSTEM", err.Error(), http.StatusNotFound)
			return
		}
		systems = append(systems, system)
	}

	results := s.aggregator.CalculateMulti(systems, s.buildGlobals(req.Variables, req.Multipliers), req.Params)

	s.writeJSON(w, &CompareResponse{
		Systems:  results,
		Combined: aggregation.Combine(results),
		Metadata: &ResponseMetadata{
			InputHash:     inputHash(&req),
			EngineVersion: s.version,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handleSystems handles GET /systems
func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	infos := make([]SystemInfo, 0, len(s.pricing.Systems))
	for _, id := range s.pricing.SystemIDs() {
		system := s.pricing.Systems[id]
		infos = append(infos, SystemInfo{
			ID:          system.ID,
			Name:        system.Name,
			Description: system.Description,
			Components:  len(system.Components),
		})
	}
	s.writeJSON(w, map[string]interface{}{
		"systems": infos,
		"count":   len(infos),
	}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "platform-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

// buildGlobals merges base costs, multiplier selections, and caller
// variables, in increasing precedence.
func (s *Server) buildGlobals(vars types.Variables, selections map[string]string) types.Variables {
	return types.MergeVariables(
		s.pricing.BaseCosts,
		s.pricing.Multipliers.ResolveSelections(selections),
		vars,
	)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// inputHash computes a deterministic hash of a request for the
// reproducibility metadata.
func inputHash(req interface{}) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
