package workflows

type NetworkAnalysisInput struct {
	RunID        string `json:"run_id"`
	ManifestPath string `json:"manifest_path"`
}

type AnalysisProgress struct {
	RunID         string            `json:"run_id"`
	CurrentStep   string            `json:"current_step"`
	Status        string            `json:"status"`
	FailReason    string            `json:"fail_reason,omitempty"`
	DocumentCount int               `json:"document_count"`
	Nodes         int               `json:"nodes"`
	Edges         int               `json:"edges"`
	Clusters      int               `json:"clusters"`
	KeyPlayers    int               `json:"key_players"`
	ReportPath    string            `json:"report_path,omitempty"`
	Steps         map[string]string `json:"steps"`
}
