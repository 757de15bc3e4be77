package activities

type LoadDocumentsInput struct {
	RunID        string `json:"run_id"`
	ManifestPath string `json:"manifest_path"`
}

type LoadDocumentsOutput struct {
	DocumentCount int `json:"document_count"`
}

type AnalyzeNetworkInput struct {
	RunID        string `json:"run_id"`
	ManifestPath string `json:"manifest_path"`
}

// AnalyzeNetworkOutput carries a digest of the report. The report itself stays
// on disk at ReportPath to keep workflow history small.
type AnalyzeNetworkOutput struct {
	ReportPath          string `json:"report_path"`
	Nodes               int    `json:"nodes"`
	Edges               int    `json:"edges"`
	Clusters            int    `json:"clusters"`
	KeyPlayers          int    `json:"key_players"`
	TotalCollaborations int    `json:"total_collaborations"`
}

type SaveAnalysisResultInput struct {
	RunID      string `json:"run_id"`
	ReportPath string `json:"report_path"`
}

type MarkAnalysisRunInput struct {
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
}
