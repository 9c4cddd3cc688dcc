package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"econ-predictor/internal/features"
	"econ-predictor/internal/ml"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server exposes the prediction service over HTTP.
type Server struct {
	svc    *Service
	model  *ml.TrainedService
	router *mux.Router
	server *http.Server
}

// PredictRequest is the body of POST /predict. Pointer fields let a missing
// value be told apart from zero.
type PredictRequest struct {
	Inflation *float64 `json:"inflation"`
	Earnings  *float64 `json:"earnings"`
	Growth    *float64 `json:"growth"`
	Persist   bool     `json:"persist"`
}

// PredictResponse is the body of a successful POST /predict.
type PredictResponse struct {
	Prediction string        `json:"prediction"`
	ModelID    string        `json:"model_id"`
	Persisted  bool          `json:"persisted"`
	RecordID   string        `json:"record_id,omitempty"`
	PersistErr string        `json:"persist_error,omitempty"`
	Neighbors  []ml.Neighbor `json:"neighbors"`
	Latency    float64       `json:"latency_ms"`
}

type errorResponse struct {
	Error      string         `json:"error"`
	Violations []ml.Violation `json:"violations,omitempty"`
}

// NewServer wires the routes. gatherer backs /metrics; nil means the
// default registry.
func NewServer(svc *Service, model *ml.TrainedService, gatherer prometheus.Gatherer, port int) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{svc: svc, model: model}

	r := mux.NewRouter()
	r.HandleFunc("/predict", s.handlePredict).Methods("POST")
	r.HandleFunc("/bounds", s.handleBounds).Methods("GET")
	r.HandleFunc("/model/info", s.handleModelInfo).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	s.router = r

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves HTTP requests until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting prediction API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.svc.ParseFailure(err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if missing := missingField(body); missing != "" {
		s.svc.ParseFailure(&InputParseError{Field: missing})
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: missing + " is required"})
		return
	}

	req := PredictionRequest{Triple: features.Triple{
		Inflation: *body.Inflation,
		Earnings:  *body.Earnings,
		Growth:    *body.Growth,
	}}

	outcome := s.svc.Classify(req)
	if outcome.State == Rejected {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      "input values are economically impossible",
			Violations: outcome.Violations(),
		})
		return
	}

	resp := PredictResponse{
		Prediction: outcome.Label,
		ModelID:    s.model.ModelID(),
		Neighbors:  s.model.Neighbors(req.Triple),
	}

	if body.Persist {
		if err := s.svc.Persist(r.Context(), outcome); err != nil {
			resp.PersistErr = err.Error()
		} else {
			resp.Persisted = true
			resp.RecordID = outcome.Record.ID
		}
	} else {
		_ = s.svc.Discard(outcome)
	}

	resp.Latency = float64(time.Since(start).Microseconds()) / 1000
	writeJSON(w, http.StatusOK, resp)
}

func missingField(body PredictRequest) string {
	switch {
	case body.Inflation == nil:
		return "inflation"
	case body.Earnings == nil:
		return "earnings"
	case body.Growth == nil:
		return "growth"
	}
	return ""
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.model.Bounds())
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	stats := s.model.ScalerParams().Stats
	scaler := make(map[string]features.FeatureStats, len(stats))
	for i, name := range features.Names() {
		scaler[name] = stats[i]
	}

	info := map[string]interface{}{
		"model_id":      s.model.ModelID(),
		"trained_at":    s.model.TrainedAt(),
		"k":             s.model.K(),
		"training_rows": s.model.Size(),
		"labels":        s.model.Labels(),
		"scaler":        scaler,
		"persistence":   s.svc.PersistenceEnabled(),
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
