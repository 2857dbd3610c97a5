package main

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/urbanlab/siting/planner"
)

type SitingServer struct {
	planner *planner.Planner

	// excludes the rebuild from requests already past wait()
	mu sync.RWMutex
	// false while a cost update rebuilds the matrix and the curve
	ok bool
	// condition variable guarding ok
	cond *sync.Cond
}

func NewSitingServer(
	mongoURI string,
	demandPath, facilityPath, edgePath *Path,
	cacheDir string,
	pol planner.Policy,
) *SitingServer {
	ds, err := loadDataset(mongoURI, demandPath, facilityPath, edgePath, cacheDir)
	if err != nil {
		log.Panicf("failed to load dataset: %v", err)
	}
	p, err := planner.New(ds, pol)
	if err != nil {
		log.Panicf("failed to build planner: %v", err)
	}
	report := p.Report()
	if len(report.Unsnapped) > 0 {
		log.Warnf("%d points could not be snapped to a stop: %v", len(report.Unsnapped), report.Unsnapped)
	}
	if len(report.Isolated) > 0 {
		log.Warnf("%d tracts snapped to stops with no departures: %v", len(report.Isolated), report.Isolated)
	}
	matrixBuildSeconds.Observe(report.Duration.Seconds())
	return &SitingServer{
		planner: p,
		ok:      true, cond: sync.NewCond(&sync.Mutex{})}
}

// wait parks the request while the server is suspended for a rebuild,
// then takes the planner read lock. The caller must release it.
func (s *SitingServer) wait() {
	s.cond.L.Lock()
	for !s.ok {
		s.cond.Wait()
	}
	s.cond.L.Unlock()
	s.mu.RLock()
}

func (s *SitingServer) Suspend() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = false
}

func (s *SitingServer) Resume() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = true
	s.cond.Broadcast()
}

func (s *SitingServer) Close() {}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

type baselineResponse struct {
	RunID      string                `json:"runId"`
	Baseline   planner.Accessibility `json:"baseline"`
	MaxBudget  int                   `json:"maxBudget"`
	Tracts     int                   `json:"tracts"`
	Facilities int                   `json:"facilities"`
	Report     planner.BuildReport   `json:"report"`
}

func (s *SitingServer) handleBaseline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	s.wait()
	defer s.mu.RUnlock()
	requestsTotal.WithLabelValues("baseline").Inc()
	writeJSON(w, http.StatusOK, baselineResponse{
		RunID:      uuid.NewString(),
		Baseline:   s.planner.Baseline(),
		MaxBudget:  s.planner.MaxBudget(),
		Tracts:     s.planner.TractCount(),
		Facilities: s.planner.FacilityCount(),
		Report:     s.planner.Report(),
	})
}

type planResponse struct {
	RunID           string                `json:"runId"`
	Budget          int                   `json:"budget"`
	BudgetSatisfied bool                  `json:"budgetSatisfied"`
	Steps           []planner.Step        `json:"steps"`
	Accessibility   planner.Accessibility `json:"accessibility"`
	// round-trip minutes per tract, -1 for unreachable tracts
	Distances map[string]float64 `json:"distances"`
}

func (s *SitingServer) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	s.wait()
	defer s.mu.RUnlock()
	requestsTotal.WithLabelValues("plan").Inc()
	p, err := strconv.Atoi(r.URL.Query().Get("p"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "p must be an integer")
		return
	}
	res, err := s.planner.Plan(p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Debugf("plan p=%d: %d steps, avg %.2f min", p, len(res.Steps), res.Accessibility.AvgMinutes)
	distances := make(map[string]float64, len(res.Distances))
	for i, id := range s.planner.TractIDs() {
		d := res.Distances[i]
		if math.IsInf(d, 1) {
			// +Inf does not survive JSON
			d = -1
		}
		distances[id] = d
	}
	writeJSON(w, http.StatusOK, planResponse{
		RunID:           uuid.NewString(),
		Budget:          res.Budget,
		BudgetSatisfied: res.BudgetSatisfied,
		Steps:           res.Steps,
		Accessibility:   res.Accessibility,
		Distances:       distances,
	})
}

type curveResponse struct {
	RunID    string                `json:"runId"`
	Baseline planner.Accessibility `json:"baseline"`
	Steps    []planner.Step        `json:"steps"`
}

func (s *SitingServer) handleCurve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	s.wait()
	defer s.mu.RUnlock()
	requestsTotal.WithLabelValues("curve").Inc()
	steps := s.planner.Curve()
	if v := r.URL.Query().Get("max_p"); v != "" {
		maxP, err := strconv.Atoi(v)
		if err != nil || maxP < 0 {
			writeError(w, http.StatusBadRequest, "max_p must be a non-negative integer")
			return
		}
		if maxP < len(steps) {
			steps = steps[:maxP]
		}
	}
	writeJSON(w, http.StatusOK, curveResponse{
		RunID:    uuid.NewString(),
		Baseline: s.planner.Baseline(),
		Steps:    steps,
	})
}

type costsRequest struct {
	Mode   string  `json:"mode"`
	Factor float64 `json:"factor"`
}

type costsResponse struct {
	RunID       string             `json:"runId"`
	ModeMinutes map[string]float64 `json:"modeMinutes"`
	RebuildMs   int64              `json:"rebuildMs"`
}

// handleCosts rescales one mode's travel times and rebuilds everything
// derived from them. New requests park on the condition variable and
// in-flight ones are drained through the write lock, so no request ever
// sees a half-built matrix.
func (s *SitingServer) handleCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	requestsTotal.WithLabelValues("costs").Inc()
	var req costsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.Suspend()
	defer s.Resume()
	// drains in-flight readers and serializes concurrent rebuilds
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	if err := s.planner.ScaleModeMinutes(req.Mode, req.Factor); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rebuildsTotal.Inc()
	matrixBuildSeconds.Observe(s.planner.Report().Duration.Seconds())
	writeJSON(w, http.StatusOK, costsResponse{
		RunID:       uuid.NewString(),
		ModeMinutes: s.planner.ModeMinuteStats(),
		RebuildMs:   time.Since(start).Milliseconds(),
	})
}

func (s *SitingServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/baseline", s.handleBaseline)
	mux.HandleFunc("/api/v1/plan", s.handlePlan)
	mux.HandleFunc("/api/v1/curve", s.handleCurve)
	mux.HandleFunc("/api/v1/costs", s.handleCosts)
	mux.Handle("/metrics", metricsHandler())
	return mux
}
