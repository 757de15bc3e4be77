package analysis

type Activity string

const (
	ActivityLow      Activity = "Low"
	ActivityMedium   Activity = "Medium"
	ActivityHigh     Activity = "High"
	ActivityVeryHigh Activity = "Very High"
)

type GraphNode struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Label       string   `json:"label"`
	Cluster     *int     `json:"cluster,omitempty"`
	Degree      *float64 `json:"degree,omitempty"`
	Betweenness *float64 `json:"betweenness,omitempty"`
}

type GraphEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Weight   int    `json:"weight"`
}

type KeyPlayer struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Specialization []string `json:"specialization"`
	RelatedWorks   int      `json:"related_works"`
	Collaborations int      `json:"collaborations"`
	Activity       Activity `json:"activity"`
	Score          float64  `json:"score"`
	Summary        string   `json:"summary"`
}

type Metrics struct {
	ActivePlayers       int `json:"active_players"`
	TotalCollaborations int `json:"total_collaborations"`
	ResearchClusters    int `json:"research_clusters"`
}

// Result is the full answer of one analysis call.
type Result struct {
	Nodes      []GraphNode `json:"nodes"`
	Edges      []GraphEdge `json:"edges"`
	Clusters   int         `json:"clusters"`
	KeyPlayers []KeyPlayer `json:"key_players"`
	Metrics    Metrics     `json:"metrics"`
}
