package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// regionsResponse wraps the index table for the dashboard.
type regionsResponse struct {
	Count   int                   `json:"count"`
	BuiltAt time.Time             `json:"built_at"`
	Regions []domain.RegionReport `json:"regions"`
}

type statesResponse struct {
	BuiltAt  time.Time             `json:"built_at"`
	States   []domain.StateSummary `json:"states"`
	Warnings []string              `json:"warnings,omitempty"`
}

// simulateRequest is the ad-hoc what-if body. Baseline is optional and
// defaults from the infrastructure quality score.
type simulateRequest struct {
	InfrastructureQuality float64  `json:"infrastructure_quality" validate:"gte=0,lte=1"`
	Baseline              *float64 `json:"baseline_satisfaction" validate:"omitempty,gte=0,lte=1"`
	FundingDelta          float64  `json:"funding_delta" validate:"gte=0"`
}

// regionSimulateRequest scopes a what-if to a known region; quality and the
// default baseline come from the region's report.
type regionSimulateRequest struct {
	FundingDelta float64  `json:"funding_delta" validate:"gte=0"`
	Baseline     *float64 `json:"baseline_satisfaction" validate:"omitempty,gte=0,lte=1"`
}

func (s *Server) currentSnapshot(w http.ResponseWriter) *domain.IndexSnapshot {
	snap := s.service.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "index snapshot not built yet")
		return nil
	}
	return snap
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	snap := s.currentSnapshot(w)
	if snap == nil {
		return
	}

	tier := domain.Tier(r.URL.Query().Get("tier"))
	switch tier {
	case "", domain.TierHigh, domain.TierMedium, domain.TierLow:
	default:
		writeError(w, http.StatusBadRequest, "tier must be one of high, medium, low")
		return
	}

	regions := snap.Filter(r.URL.Query().Get("state"), tier)
	writeJSON(w, http.StatusOK, regionsResponse{
		Count:   len(regions),
		BuiltAt: snap.BuiltAt,
		Regions: regions,
	})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	snap := s.currentSnapshot(w)
	if snap == nil {
		return
	}

	report, ok := snap.Region(r.PathValue("fips"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown region")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	snap := s.currentSnapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, statesResponse{
		BuiltAt:  snap.BuiltAt,
		States:   snap.States,
		Warnings: snap.Warnings,
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	baseline := domain.BaselineSatisfaction(req.InfrastructureQuality)
	if req.Baseline != nil {
		baseline = *req.Baseline
	}

	s.respondSimulation(w, domain.SimulationParams{
		InfrastructureQuality: req.InfrastructureQuality,
		Baseline:              baseline,
		FundingDelta:          req.FundingDelta,
		Sensitivity:           s.sensitivity,
	})
}

func (s *Server) handleRegionSimulate(w http.ResponseWriter, r *http.Request) {
	snap := s.currentSnapshot(w)
	if snap == nil {
		return
	}

	report, ok := snap.Region(r.PathValue("fips"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown region")
		return
	}

	var req regionSimulateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	baseline := report.BaselineSatisfaction
	if req.Baseline != nil {
		baseline = *req.Baseline
	}

	s.respondSimulation(w, domain.SimulationParams{
		InfrastructureQuality: report.InfrastructureQuality,
		Baseline:              baseline,
		FundingDelta:          req.FundingDelta,
		Sensitivity:           s.sensitivity,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Refresh(r.Context()); err != nil {
		s.logger.Error("manual refresh failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "refresh failed: "+err.Error())
		return
	}

	regions := 0
	if snap := s.service.Current(); snap != nil {
		regions = len(snap.Regions)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "refreshed",
		"regions": regions,
	})
}

// decodeAndValidate parses a JSON body and applies the request's validation
// tags, writing a 400 on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.metrics.Simulations.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// respondSimulation runs a cached simulation and writes the result, mapping
// domain validation failures to 400.
func (s *Server) respondSimulation(w http.ResponseWriter, params domain.SimulationParams) {
	result, err := s.runSimulation(params)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.metrics.Simulations.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.Simulations.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, result)
}

// runSimulation consults the LRU cache before computing. Results are pure
// functions of their parameters, so cached entries never go stale.
func (s *Server) runSimulation(params domain.SimulationParams) (domain.SimulationResult, error) {
	key := cacheKey(params)
	if result, ok := s.simCache.get(key); ok {
		s.metrics.SimulationCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	s.metrics.SimulationCache.WithLabelValues("miss").Inc()

	result, err := domain.Simulate(params, s.thresholds)
	if err != nil {
		return domain.SimulationResult{}, err
	}
	s.simCache.put(key, result)
	return result, nil
}
