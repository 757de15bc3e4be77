package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"scholarnet/internal/analysis"
	"scholarnet/internal/config"
	"scholarnet/internal/graph"
	"scholarnet/internal/logger"
	"scholarnet/internal/metrics"
	"scholarnet/internal/models"
	"scholarnet/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
)

// maxBodyBytes bounds request bodies; documents may carry full text.
const maxBodyBytes = 64 << 20

// RunStore is the archive of analysis runs, implemented by storage.AnalysisRepo.
type RunStore interface {
	CreateRun(ctx context.Context, runID, workflowID string, documentCount int) error
	UpdateRunStatus(ctx context.Context, runID, status, failReason string) error
	SaveResult(ctx context.Context, runID string, result any) error
	GetRun(ctx context.Context, runID string) (models.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error)
}

// WorkflowClient is the subset of the Temporal client the server uses.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

type Server struct {
	cfg      config.Config
	runs     RunStore
	temporal WorkflowClient
	analyzer *analysis.Analyzer
	validate *validator.Validate
}

type analyzeRequest struct {
	Documents []models.Document `json:"documents" validate:"required,dive"`
}

// NewServer wires the handlers. runs and tc may be nil: without runs nothing is
// archived and run endpoints answer 503, without tc async analysis is refused.
func NewServer(cfg config.Config, runs RunStore, tc WorkflowClient) *Server {
	detector := graph.DefaultDetectorOptions()
	detector.Weighted = cfg.Weighted
	return &Server{
		cfg:      cfg,
		runs:     runs,
		temporal: tc,
		analyzer: analysis.New(analysis.Options{
			MaxPlayers: cfg.MaxKeyPlayers,
			Detector:   detector,
			Source:     "api",
		}),
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", instrument("healthz", s.handleHealthz))
	mux.Handle("/analyze/network", instrument("analyze", s.handleAnalyze))
	mux.Handle("/analyze/network/async", instrument("analyze_async", s.handleAnalyzeAsync))
	mux.Handle("/runs", instrument("runs", s.handleRuns))
	mux.Handle("/runs/", instrument("runs_scoped", s.handleRunsScoped))
	mux.Handle("/metrics", promhttp.Handler())
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	docs, status, err := s.decodeDocuments(w, r)
	if err != nil {
		writeErr(w, status, err)
		return
	}

	res := s.analyzer.Analyze(docs)
	if runID := s.archive(r.Context(), docs, res); runID != "" {
		w.Header().Set("X-Run-ID", runID)
	}
	writeJSON(w, http.StatusOK, res)
}

// archive stores a synchronous result when persistence is on. Failures are
// logged only; the caller already has its answer.
func (s *Server) archive(ctx context.Context, docs []models.Document, res analysis.Result) string {
	if s.runs == nil || !s.cfg.Persist {
		return ""
	}
	runID := newRunID()
	if err := s.runs.CreateRun(ctx, runID, "", len(docs)); err != nil {
		logger.Warn("archive analysis run failed", "run_id", runID, "err", err)
		return ""
	}
	if err := s.runs.SaveResult(ctx, runID, res); err != nil {
		logger.Warn("archive analysis result failed", "run_id", runID, "err", err)
		return ""
	}
	return runID
}

// decodeDocuments reads, validates and normalises the request body. It returns
// the HTTP status to use when err is not nil.
func (s *Server) decodeDocuments(w http.ResponseWriter, r *http.Request) ([]models.Document, int, error) {
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("request body too large: %w", err)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if s.cfg.MaxDocuments > 0 && len(req.Documents) > s.cfg.MaxDocuments {
		return nil, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: %d > %d", util.ErrTooManyDocuments, len(req.Documents), s.cfg.MaxDocuments)
	}
	return graph.NormalizeDocuments(req.Documents), 0, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	if code >= 500 {
		logger.Error("request failed", "code", apiErr.Code, "err", err)
	}
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		metrics.ObserveRequest(route, rec.code)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "X-Run-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
