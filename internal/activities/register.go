package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.LoadDocumentsActivity)
	w.RegisterActivity(a.AnalyzeNetworkActivity)
	w.RegisterActivity(a.SaveAnalysisResultActivity)
	w.RegisterActivity(a.MarkAnalysisRunActivity)
}
