// Package server exposes the scoring API over HTTP: single-shot prediction,
// an interactive websocket stream, model info, health, and metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"affair-radar/internal/common"
	"affair-radar/internal/features"
	"affair-radar/internal/metrics"
	"affair-radar/internal/model"
)

// Server provides the HTTP API around a loaded model artifact
type Server struct {
	loader *model.Loader
	topK   int
	rec    metrics.Recorder

	scorer     *model.Scorer
	scorerOnce sync.Once

	started  time.Time
	server   *http.Server
	upgrader websocket.Upgrader
}

// PredictionRequest represents the incoming prediction request.
// EducationLevel is an optional convenience for form clients; it maps to
// education_years unless that feature is set explicitly.
type PredictionRequest struct {
	Features       map[string]float64 `json:"features"`
	EducationLevel string             `json:"education_level,omitempty"`
	RequestID      string             `json:"request_id,omitempty"`
}

// PredictionResponse represents the prediction result
type PredictionResponse struct {
	Probability  float64            `json:"probability"`
	BaseValue    float64            `json:"base_value"`
	RiskBand     string             `json:"risk_band"`
	Factors      []model.Factor     `json:"factors"`
	Imputed      []string           `json:"imputed,omitempty"`
	Effective    map[string]float64 `json:"effective"`
	RequestID    string             `json:"request_id"`
	ModelVersion string             `json:"model_version"`
	Latency      float64            `json:"latency_ms"`
	Timestamp    time.Time          `json:"timestamp"`
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status       string  `json:"status"`
	ModelVersion string  `json:"model_version,omitempty"`
	ModelAge     float64 `json:"model_age_seconds,omitempty"`
	Uptime       float64 `json:"uptime_seconds"`
}

// NewServer wires the API routes around a lazily loaded artifact. The loader
// publishes the bundle on first use, so a missing artifact surfaces as 503s
// on every endpoint that needs the model.
func NewServer(loader *model.Loader, topK int, rec metrics.Recorder, port int) *Server {
	if rec == nil {
		rec = metrics.Noop()
	}
	s := &Server{
		loader:  loader,
		topK:    topK,
		rec:     rec,
		started: time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/predict", s.handlePredict)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/model", s.handleModelInfo)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start begins serving HTTP requests
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting scoring server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// getScorer resolves the facade, loading the artifact on first use. The
// loader's result is sticky, so the once only fires after a successful load.
func (s *Server) getScorer() (*model.Scorer, error) {
	b, err := s.loader.Get()
	if err != nil {
		return nil, err
	}
	s.scorerOnce.Do(func() {
		s.scorer = model.NewScorer(b, s.topK)
		s.rec.ModelLoadedSet(1)
		s.rec.ModelAgeSet(time.Since(b.CreatedAt).Seconds())
		log.Info().Str("version", b.Version).Int("trees", len(b.Forest.Trees)).Msg("model artifact loaded")
	})
	return s.scorer, nil
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	scorer, err := s.getScorer()
	if err != nil {
		s.rec.ErrorsInc()
		log.Error().Err(err).Msg("model unavailable")
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
		return
	}

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rec.PredictionErrorsInc()
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}

	// Validate request
	if len(req.Features) == 0 && req.EducationLevel == "" {
		s.rec.PredictionErrorsInc()
		http.Error(w, "features cannot be empty", http.StatusBadRequest)
		return
	}

	resp, err := s.score(scorer, &req)
	if err != nil {
		s.rec.PredictionErrorsInc()
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}

	elapsed := time.Since(start)
	resp.Latency = float64(elapsed.Microseconds()) / 1000.0
	s.rec.PredictionLatencyObserve(elapsed.Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// score runs one request through the facade and shapes the wire response.
// The caller stamps latency.
func (s *Server) score(scorer *model.Scorer, req *PredictionRequest) (*PredictionResponse, error) {
	if req.EducationLevel != "" {
		years, ok := features.EducationLevelYears[req.EducationLevel]
		if !ok {
			return nil, fmt.Errorf("unknown education_level %q", req.EducationLevel)
		}
		if _, set := req.Features[features.EducationYears]; !set {
			if req.Features == nil {
				req.Features = make(map[string]float64, 1)
			}
			req.Features[features.EducationYears] = years
		}
	}

	vec := features.FromMap(req.Features)
	if err := features.CheckRange(vec); err != nil {
		return nil, err
	}

	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}

	res := scorer.Score(req.Features)
	band := common.RiskBand(res.Probability)

	s.rec.PredictionsInc()
	s.rec.PredictionScoresObserve(res.Probability)
	s.rec.RiskBandInc(band)

	return &PredictionResponse{
		Probability:  res.Probability,
		BaseValue:    res.BaseValue,
		RiskBand:     band,
		Factors:      res.Factors,
		Imputed:      res.Imputed,
		Effective:    res.Effective,
		RequestID:    id,
		ModelVersion: scorer.Version(),
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{Status: "ok", Uptime: time.Since(s.started).Seconds()}
	status := http.StatusOK

	scorer, err := s.getScorer()
	if err != nil {
		health.Status = "model unavailable"
		status = http.StatusServiceUnavailable
	} else {
		b := scorer.Bundle()
		health.ModelVersion = b.Version
		health.ModelAge = time.Since(b.CreatedAt).Seconds()
		s.rec.ModelAgeSet(health.ModelAge)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(health)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	scorer, err := s.getScorer()
	if err != nil {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
		return
	}
	b := scorer.Bundle()

	info := map[string]interface{}{
		"version":         b.Version,
		"created_at":      b.CreatedAt,
		"schema":          b.Schema,
		"trees":           len(b.Forest.Trees),
		"config":          b.Forest.Config,
		"training":        b.Training,
		"importance":      b.Forest.TopImportance(s.topK),
		"trait_baselines": features.PopulationAverage,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}
