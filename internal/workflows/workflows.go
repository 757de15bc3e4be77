package workflows

import (
	"errors"
	"time"

	"scholarnet/internal/activities"
	"scholarnet/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetAnalysisProgress = "GetAnalysisProgress"

// WorkflowID is the Temporal workflow id used for a run.
func WorkflowID(runID string) string {
	return "network-analysis-" + runID
}

func NetworkAnalysisWorkflow(ctx workflow.Context, input NetworkAnalysisInput) (string, error) {
	progress := AnalysisProgress{
		RunID:       input.RunID,
		CurrentStep: "init",
		Status:      models.RunStatusPending,
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetAnalysisProgress, func() (AnalysisProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	mark := func(status, reason string) error {
		return workflow.ExecuteActivity(ctx, "MarkAnalysisRunActivity", activities.MarkAnalysisRunInput{
			RunID:      input.RunID,
			Status:     status,
			FailReason: reason,
		}).Get(ctx, nil)
	}
	fail := func(err error) (string, error) {
		progress.Status = models.RunStatusFailed
		progress.FailReason = err.Error()
		progress.Steps[progress.CurrentStep] = "failed"
		_ = mark(models.RunStatusFailed, progress.FailReason)
		if isInputError(err) {
			return progress.Status, nil
		}
		return "", err
	}

	progress.Status = models.RunStatusRunning
	_ = mark(models.RunStatusRunning, "")

	progress.CurrentStep = "load_documents"
	progress.Steps[progress.CurrentStep] = "processing"
	var loadOut activities.LoadDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "LoadDocumentsActivity", activities.LoadDocumentsInput{
		RunID:        input.RunID,
		ManifestPath: input.ManifestPath,
	}).Get(ctx, &loadOut); err != nil {
		return fail(err)
	}
	progress.DocumentCount = loadOut.DocumentCount
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "analyze_network"
	progress.Steps[progress.CurrentStep] = "processing"
	var analyzeOut activities.AnalyzeNetworkOutput
	if err := workflow.ExecuteActivity(ctx, "AnalyzeNetworkActivity", activities.AnalyzeNetworkInput{
		RunID:        input.RunID,
		ManifestPath: input.ManifestPath,
	}).Get(ctx, &analyzeOut); err != nil {
		return fail(err)
	}
	progress.Nodes = analyzeOut.Nodes
	progress.Edges = analyzeOut.Edges
	progress.Clusters = analyzeOut.Clusters
	progress.KeyPlayers = analyzeOut.KeyPlayers
	progress.ReportPath = analyzeOut.ReportPath
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "save_result"
	progress.Steps[progress.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "SaveAnalysisResultActivity", activities.SaveAnalysisResultInput{
		RunID:      input.RunID,
		ReportPath: analyzeOut.ReportPath,
	}).Get(ctx, nil); err != nil {
		return fail(err)
	}
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "done"
	progress.Status = models.RunStatusCompleted
	return progress.Status, nil
}

// isInputError reports failures caused by the submitted documents rather than
// by infrastructure. Those end the run as failed without failing the workflow.
func isInputError(err error) bool {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Type() {
	case activities.ErrTypeInvalidManifest, activities.ErrTypeTooManyDocuments:
		return true
	}
	return false
}
