package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"scholarnet/internal/ingest"
	"scholarnet/internal/logger"
	"scholarnet/internal/models"
	"scholarnet/internal/util"
	"scholarnet/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	tclient "go.temporal.io/sdk/client"
)

var errUnavailable = errors.New("service unavailable")

func newRunID() string {
	return uuid.NewString()
}

func (s *Server) handleAnalyzeAsync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.temporal == nil || s.runs == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("async analysis: %w", errUnavailable))
		return
	}
	docs, status, err := s.decodeDocuments(w, r)
	if err != nil {
		writeErr(w, status, err)
		return
	}

	runID := newRunID()
	manifest, err := ingest.Stage(s.cfg.DataInRoot, runID, docs)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	wfID := workflows.WorkflowID(runID)
	if err := s.runs.CreateRun(r.Context(), runID, wfID, len(docs)); err != nil {
		s.unstage(runID)
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    wfID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, workflows.NetworkAnalysisWorkflow, workflows.NetworkAnalysisInput{
		RunID:        runID,
		ManifestPath: manifest,
	})
	if err != nil {
		if mErr := s.runs.UpdateRunStatus(r.Context(), runID, models.RunStatusFailed, "start workflow: "+err.Error()); mErr != nil {
			logger.Warn("mark run failed", "run_id", runID, "err", mErr)
		}
		s.unstage(runID)
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			writeErr(w, http.StatusConflict, err)
			return
		}
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("start workflow: %w", err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":          runID,
		"workflow_id":     we.GetID(),
		"workflow_run_id": we.GetRunID(),
		"document_count":  len(docs),
	})
}

func (s *Server) unstage(runID string) {
	if err := ingest.Unstage(s.cfg.DataInRoot, runID); err != nil {
		logger.Warn("remove staged documents", "run_id", runID, "err", err)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.runs == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("run archive: %w", errUnavailable))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleRunsScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" || len(parts) > 2 {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.runs == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("run archive: %w", errUnavailable))
		return
	}
	if _, err := uuid.Parse(parts[0]); err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("%w: %s", util.ErrRunNotFound, parts[0]))
		return
	}
	runID := parts[0]

	if len(parts) == 1 {
		run, err := s.runs.GetRun(r.Context(), runID)
		if err != nil {
			writeErr(w, runErrStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, run)
		return
	}
	if parts[1] != "progress" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	s.handleProgress(w, r, runID)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, runID string) {
	if s.temporal != nil {
		resp, err := s.temporal.QueryWorkflow(r.Context(), workflows.WorkflowID(runID), "", workflows.QueryGetAnalysisProgress)
		if err == nil {
			var prog workflows.AnalysisProgress
			if err := resp.Get(&prog); err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, prog)
			return
		}
	}

	// No queryable workflow: report what the archive knows.
	run, err := s.runs.GetRun(r.Context(), runID)
	if err != nil {
		writeErr(w, runErrStatus(err), err)
		return
	}
	prog := workflows.AnalysisProgress{
		RunID:         run.RunID,
		CurrentStep:   run.Status,
		Status:        run.Status,
		FailReason:    run.FailReason,
		DocumentCount: run.DocumentCount,
		Steps:         map[string]string{},
	}
	if run.Status == models.RunStatusCompleted {
		prog.CurrentStep = "done"
	}
	writeJSON(w, http.StatusOK, prog)
}

func runErrStatus(err error) int {
	if errors.Is(err, util.ErrRunNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
