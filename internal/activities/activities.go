package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"scholarnet/internal/analysis"
	"scholarnet/internal/config"
	"scholarnet/internal/graph"
	"scholarnet/internal/ingest"
	"scholarnet/internal/logger"
	"scholarnet/internal/models"
	"scholarnet/internal/util"

	"go.temporal.io/sdk/temporal"
)

const (
	ErrTypeInvalidManifest  = "InvalidManifest"
	ErrTypeTooManyDocuments = "TooManyDocuments"

	ReportFileName = "analysis.json"
)

// RunStore is the part of storage.AnalysisRepo the activities need.
type RunStore interface {
	UpdateRunStatus(ctx context.Context, runID, status, failReason string) error
	SaveResult(ctx context.Context, runID string, result any) error
}

type Activities struct {
	cfg      config.Config
	runs     RunStore
	analyzer *analysis.Analyzer
}

func New(cfg config.Config, runs RunStore) *Activities {
	detector := graph.DefaultDetectorOptions()
	detector.Weighted = cfg.Weighted
	return &Activities{
		cfg:  cfg,
		runs: runs,
		analyzer: analysis.New(analysis.Options{
			MaxPlayers: cfg.MaxKeyPlayers,
			Detector:   detector,
			Source:     "worker",
		}),
	}
}

func (a *Activities) LoadDocumentsActivity(ctx context.Context, in LoadDocumentsInput) (LoadDocumentsOutput, error) {
	docs, err := a.loadDocuments(ctx, in.ManifestPath)
	if err != nil {
		return LoadDocumentsOutput{}, err
	}
	logger.Info("documents loaded", "run_id", in.RunID, "documents", len(docs))
	return LoadDocumentsOutput{DocumentCount: len(docs)}, nil
}

func (a *Activities) AnalyzeNetworkActivity(ctx context.Context, in AnalyzeNetworkInput) (AnalyzeNetworkOutput, error) {
	docs, err := a.loadDocuments(ctx, in.ManifestPath)
	if err != nil {
		return AnalyzeNetworkOutput{}, err
	}
	res := a.analyzer.Analyze(docs)

	path := filepath.Join(a.cfg.DataOutRoot, in.RunID, ReportFileName)
	if err := util.WriteJSONAtomic(path, res); err != nil {
		return AnalyzeNetworkOutput{}, fmt.Errorf("write analysis report: %w", err)
	}
	return AnalyzeNetworkOutput{
		ReportPath:          path,
		Nodes:               len(res.Nodes),
		Edges:               len(res.Edges),
		Clusters:            res.Clusters,
		KeyPlayers:          len(res.KeyPlayers),
		TotalCollaborations: res.Metrics.TotalCollaborations,
	}, nil
}

func (a *Activities) SaveAnalysisResultActivity(ctx context.Context, in SaveAnalysisResultInput) error {
	var report json.RawMessage
	if err := util.ReadJSONFile(in.ReportPath, &report); err != nil {
		return err
	}
	return a.runs.SaveResult(ctx, in.RunID, report)
}

func (a *Activities) MarkAnalysisRunActivity(ctx context.Context, in MarkAnalysisRunInput) error {
	switch in.Status {
	case models.RunStatusPending, models.RunStatusRunning, models.RunStatusCompleted, models.RunStatusFailed:
	default:
		return temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown run status %q", in.Status), "InvalidStatus", nil)
	}
	return a.runs.UpdateRunStatus(ctx, in.RunID, in.Status, in.FailReason)
}

// loadDocuments turns bad input into non-retryable failures; retrying a
// malformed manifest cannot help.
func (a *Activities) loadDocuments(ctx context.Context, path string) ([]models.Document, error) {
	docs, err := ingest.LoadDocuments(ctx, path)
	if errors.Is(err, util.ErrInvalidManifest) || errors.Is(err, util.ErrPathEscapesRoot) {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidManifest, err)
	}
	if err != nil {
		return nil, err
	}
	if a.cfg.MaxDocuments > 0 && len(docs) > a.cfg.MaxDocuments {
		err := fmt.Errorf("%w: %d > %d", util.ErrTooManyDocuments, len(docs), a.cfg.MaxDocuments)
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeTooManyDocuments, err)
	}
	return docs, nil
}
