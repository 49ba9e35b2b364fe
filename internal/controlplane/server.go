package controlplane

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/models"
	"github.com/fentz26/taskgov/internal/report"
	"github.com/fentz26/taskgov/internal/snapshot"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0-dev"

// Server serves the live report and run history over HTTP.
type Server struct {
	service *Service
	addr    string
	server  *http.Server
	logger  *zap.Logger
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, addr string) *Server {
	return &Server{
		service: service,
		addr:    addr,
		logger:  service.logger,
	}
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleReport)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/decisions", s.handleDecisions)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start starts the HTTP server. It blocks until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("starting report server", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleReport renders the report from the current snapshot on every
// request. Nothing is written to disk.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, err := s.service.Build()
	if err != nil {
		s.snapshotError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.Render(w, doc); err != nil {
		s.logger.Error("render failed", zap.Error(err))
	}
}

// SummaryResponse is the JSON form of a built report.
type SummaryResponse struct {
	GeneratedAt   time.Time          `json:"generated_at"`
	ReportedTotal int                `json:"reported_total"`
	Processed     int                `json:"processed"`
	Counts        map[string]int     `json:"counts"`
	Compliant     bool               `json:"compliant"`
	Violations    []models.Violation `json:"violations"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, err := s.service.Build()
	if err != nil {
		s.snapshotError(w, err)
		return
	}

	violations := doc.Violations
	if violations == nil {
		violations = []models.Violation{}
	}
	writeJSON(w, http.StatusOK, SummaryResponse{
		GeneratedAt:   doc.GeneratedAt,
		ReportedTotal: doc.ReportedTotal,
		Processed:     doc.Processed,
		Counts:        doc.Counts.ByName(),
		Compliant:     doc.Compliant(),
		Violations:    violations,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runs, err := s.service.Runs(r.Context(), limit)
	if err != nil {
		s.historyError(w, err)
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	decisions, err := s.service.Decisions(r.Context(), limit)
	if err != nil {
		s.historyError(w, err)
		return
	}
	if decisions == nil {
		decisions = []models.Decision{}
	}
	writeJSON(w, http.StatusOK, decisions)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	switch err := s.service.Ping(ctx); {
	case errors.Is(err, ErrNoHistory):
		health.DB = "disabled"
	case err != nil:
		health.OK = false
		health.DB = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, health)
}

func (s *Server) snapshotError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, snapshot.ErrSnapshotNotFound) || errors.Is(err, snapshot.ErrSnapshotInvalid) {
		status = http.StatusServiceUnavailable
	}
	s.logger.Warn("snapshot unavailable", zap.Error(err))
	http.Error(w, err.Error(), status)
}

func (s *Server) historyError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrNoHistory) {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
