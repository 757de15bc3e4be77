package analysis

import (
	"encoding/json"
	"fmt"
	"testing"

	"scholarnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleDocs() []models.Document {
	return []models.Document{{
		ID:           "doc1",
		Type:         "Patent",
		Authors:      []string{"Alice", "Bob"},
		Institutions: []string{"ACME"},
		Topics:       []models.Topic{{Topic: "AI", Subtopics: []string{"ML"}}},
	}}
}

func corpus() []models.Document {
	return []models.Document{
		{ID: "p1", Type: "patent", Authors: []string{"Ada", "Grace"}, Institutions: []string{"IBM"},
			Topics: []models.Topic{{Topic: "compilers", Subtopics: []string{"parsing", "optimisation"}}}},
		{ID: "p2", Type: "publication", Authors: []string{"Ada", "Linus", "Ken"}, Institutions: []string{"Bell Labs"},
			Topics: []models.Topic{{Topic: "operating systems", Subtopics: []string{"kernels"}}}},
		{ID: "p3", Type: "publication", Authors: []string{"Ken", "Dennis"}, Institutions: []string{"Bell Labs"},
			Topics: []models.Topic{{Topic: "languages", Subtopics: []string{"C"}}}},
		{ID: "p4", Type: "Publication", Authors: []string{"Grace", "Ada"}},
	}
}

func TestAnalyzeSpecExample(t *testing.T) {
	res := Analyze(exampleDocs())

	ids := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		ids = append(ids, n.ID)
		require.NotNil(t, n.Cluster)
		require.NotNil(t, n.Degree)
		require.NotNil(t, n.Betweenness)
	}
	assert.ElementsMatch(t, []string{
		"document:doc1", "author:Alice", "author:Bob", "institution:ACME", "keyword:AI", "keyword:ML",
	}, ids)

	rels := map[string]int{}
	for _, e := range res.Edges {
		rels[e.Relation]++
		assert.Equal(t, 1, e.Weight)
	}
	assert.Equal(t, map[string]int{"WROTE": 2, "CO_AUTHOR": 1, "AFFILIATED_WITH": 2, "CONTAINS_KEYWORD": 2}, rels)

	require.Len(t, res.KeyPlayers, 3)
	byName := map[string]KeyPlayer{}
	for _, p := range res.KeyPlayers {
		byName[p.Name] = p
	}
	for _, name := range []string{"Alice", "Bob"} {
		p := byName[name]
		assert.Equal(t, "inventor", p.Type)
		assert.Equal(t, 1, p.RelatedWorks)
		assert.Equal(t, 1, p.Collaborations)
		assert.Equal(t, []string{"AI", "ML"}, p.Specialization)
		assert.Equal(t, ActivityLow, p.Activity)
		assert.InDelta(t, 0.42, p.Score, 1e-9)
	}
	acme := byName["ACME"]
	assert.Equal(t, "institution", acme.Type)
	assert.Equal(t, 2, acme.RelatedWorks)
	assert.Equal(t, ActivityVeryHigh, acme.Activity)
	assert.Equal(t, "ACME", res.KeyPlayers[2].Name)

	assert.Equal(t, Metrics{ActivePlayers: 3, TotalCollaborations: 1, ResearchClusters: res.Clusters}, res.Metrics)
	assert.Positive(t, res.Clusters)
}

func TestAnalyzeEmpty(t *testing.T) {
	res := Analyze(nil)
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[],"clusters":0,"key_players":[],
		"metrics":{"active_players":0,"total_collaborations":0,"research_clusters":0}}`, string(b))
}

func TestAnalyzeDeterministic(t *testing.T) {
	first, err := json.Marshal(Analyze(corpus()))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(Analyze(corpus()))
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}

func TestAnalyzeTotalCollaborations(t *testing.T) {
	res := Analyze(corpus())
	sum := 0
	for _, e := range res.Edges {
		if e.Relation == "CO_AUTHOR" {
			sum += e.Weight
		}
	}
	assert.Equal(t, sum, res.Metrics.TotalCollaborations)
	// Ada-Grace (2), Ada-Linus, Ada-Ken, Linus-Ken, Ken-Dennis
	assert.Equal(t, 6, sum)
}

func TestAnalyzeActivePlayersCountsAllEntities(t *testing.T) {
	docs := make([]models.Document, 0, 60)
	for i := 0; i < 60; i++ {
		docs = append(docs, models.Document{
			ID:      fmt.Sprintf("d%d", i),
			Authors: []string{"hub", fmt.Sprintf("author-%02d", i)},
		})
	}
	res := Analyze(docs)
	require.Len(t, res.KeyPlayers, MaxKeyPlayers)
	assert.Equal(t, 61, res.Metrics.ActivePlayers)
	assert.Equal(t, "hub", res.KeyPlayers[0].Name)
	assert.Equal(t, 60, res.KeyPlayers[0].RelatedWorks)
	for i := 1; i < len(res.KeyPlayers); i++ {
		assert.GreaterOrEqual(t, res.KeyPlayers[i-1].Score, res.KeyPlayers[i].Score)
	}
}

func TestAnalyzerHonoursMaxPlayers(t *testing.T) {
	res := New(Options{MaxPlayers: 2, Source: "test"}).Analyze(corpus())
	assert.Len(t, res.KeyPlayers, 2)
}

func TestAnalyzeRoleResolution(t *testing.T) {
	res := Analyze(corpus())
	types := map[string]string{}
	for _, p := range res.KeyPlayers {
		types[p.Name] = p.Type
	}
	assert.Equal(t, "inventor", types["Ada"])
	assert.Equal(t, "inventor", types["Grace"])
	assert.Equal(t, "author", types["Ken"])
	assert.Equal(t, "institution", types["Bell Labs"])
}
