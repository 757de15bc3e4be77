package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"scholarnet/internal/config"
	"scholarnet/internal/models"
	"scholarnet/internal/util"
	"scholarnet/internal/workflows"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/mocks"
)

type memRuns struct {
	runs  map[string]models.AnalysisRun
	order []string
	fail  error
}

func newMemRuns() *memRuns {
	return &memRuns{runs: map[string]models.AnalysisRun{}}
}

func (m *memRuns) CreateRun(_ context.Context, runID, workflowID string, n int) error {
	if m.fail != nil {
		return m.fail
	}
	m.runs[runID] = models.AnalysisRun{RunID: runID, WorkflowID: workflowID, DocumentCount: n, Status: models.RunStatusPending}
	m.order = append(m.order, runID)
	return nil
}

func (m *memRuns) UpdateRunStatus(_ context.Context, runID, status, failReason string) error {
	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("update analysis run %s: %w", runID, util.ErrRunNotFound)
	}
	run.Status = status
	run.FailReason = failReason
	m.runs[runID] = run
	return nil
}

func (m *memRuns) SaveResult(_ context.Context, runID string, result any) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	run := m.runs[runID]
	run.Result = b
	run.Status = models.RunStatusCompleted
	m.runs[runID] = run
	return nil
}

func (m *memRuns) GetRun(_ context.Context, runID string) (models.AnalysisRun, error) {
	run, ok := m.runs[runID]
	if !ok {
		return models.AnalysisRun{}, fmt.Errorf("get analysis run %s: %w", runID, util.ErrRunNotFound)
	}
	return run, nil
}

func (m *memRuns) ListRuns(_ context.Context, limit int) ([]models.AnalysisRun, error) {
	out := make([]models.AnalysisRun, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.runs[m.order[i]])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type encoded struct {
	v any
}

func (e encoded) HasValue() bool { return e.v != nil }

func (e encoded) Get(valuePtr interface{}) error {
	b, err := json.Marshal(e.v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, valuePtr)
}

type fakeTemporal struct {
	started  []tclient.StartWorkflowOptions
	inputs   []workflows.NetworkAnalysisInput
	progress map[string]workflows.AnalysisProgress
	startErr error
}

func (f *fakeTemporal) ExecuteWorkflow(_ context.Context, opts tclient.StartWorkflowOptions, _ interface{}, args ...interface{}) (tclient.WorkflowRun, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, opts)
	f.inputs = append(f.inputs, args[0].(workflows.NetworkAnalysisInput))
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return(opts.ID)
	run.On("GetRunID").Return("temporal-run-1")
	return run, nil
}

func (f *fakeTemporal) QueryWorkflow(_ context.Context, workflowID, _ string, queryType string, _ ...interface{}) (converter.EncodedValue, error) {
	if queryType != workflows.QueryGetAnalysisProgress {
		return nil, errors.New("unknown query")
	}
	p, ok := f.progress[workflowID]
	if !ok {
		return nil, errors.New("workflow not found")
	}
	return encoded{v: p}, nil
}

const exampleBody = `{"documents":[{"id":"doc1","type":"Patent","authors":["Alice","Bob"],
	"institutions":["ACME"],"topics":[{"topic":"AI","subtopics":["ML"]}]}]}`

func testConfig(t *testing.T) config.Config {
	return config.Config{
		DataInRoot:        t.TempDir(),
		DataOutRoot:       t.TempDir(),
		TemporalTaskQueue: "scholarnet-test",
		MaxDocuments:      10,
		MaxKeyPlayers:     50,
		Persist:           true,
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code, body.Error.Message
}

func TestHealthz(t *testing.T) {
	h := NewServer(testConfig(t), nil, nil).Routes()
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestAnalyzeNetworkSync(t *testing.T) {
	runs := newMemRuns()
	h := NewServer(testConfig(t), runs, nil).Routes()

	rec := do(t, h, http.MethodPost, "/analyze/network", exampleBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Nodes      []json.RawMessage `json:"nodes"`
		Edges      []json.RawMessage `json:"edges"`
		KeyPlayers []struct {
			Name           string   `json:"name"`
			Type           string   `json:"type"`
			Specialization []string `json:"specialization"`
		} `json:"key_players"`
		Metrics struct {
			ActivePlayers       int `json:"active_players"`
			TotalCollaborations int `json:"total_collaborations"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Nodes, 6)
	assert.Len(t, res.Edges, 7)
	require.Len(t, res.KeyPlayers, 3)
	assert.Equal(t, "Alice", res.KeyPlayers[0].Name)
	assert.Equal(t, "inventor", res.KeyPlayers[0].Type)
	assert.Equal(t, []string{"AI", "ML"}, res.KeyPlayers[0].Specialization)
	assert.Equal(t, 3, res.Metrics.ActivePlayers)
	assert.Equal(t, 1, res.Metrics.TotalCollaborations)

	runID := rec.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)
	assert.Equal(t, models.RunStatusCompleted, runs.runs[runID].Status)
	assert.JSONEq(t, rec.Body.String(), string(runs.runs[runID].Result))
}

func TestAnalyzeNetworkWithoutArchive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Persist = false
	runs := newMemRuns()
	h := NewServer(cfg, runs, nil).Routes()

	rec := do(t, h, http.MethodPost, "/analyze/network", `{"documents":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Run-ID"))
	assert.Empty(t, runs.runs)
	assert.JSONEq(t, `{"nodes":[],"edges":[],"clusters":0,"key_players":[],
		"metrics":{"active_players":0,"total_collaborations":0,"research_clusters":0}}`, rec.Body.String())
}

func TestAnalyzeNetworkArchiveFailureStillAnswers(t *testing.T) {
	runs := newMemRuns()
	runs.fail = errors.New("dial tcp: connection refused")
	h := NewServer(testConfig(t), runs, nil).Routes()

	rec := do(t, h, http.MethodPost, "/analyze/network", exampleBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Run-ID"))
}

func TestAnalyzeNetworkRejectsBadInput(t *testing.T) {
	h := NewServer(testConfig(t), nil, nil).Routes()

	cases := []struct {
		name, method, body, code string
		status                   int
		msg                      string
	}{
		{"malformed", http.MethodPost, `{"documents":`, "SN-API-4001", http.StatusBadRequest, "Malformed JSON request body."},
		{"missing documents", http.MethodPost, `{}`, "SN-API-4001", http.StatusBadRequest, "documents is required."},
		{"missing id", http.MethodPost, `{"documents":[{"authors":["A"]}]}`, "SN-API-4001", http.StatusBadRequest, "documents[0].id is required."},
		{"blank id", http.MethodPost, `{"documents":[{"id":"  ","type":"patent","authors":["A","B"]}]}`, "SN-API-4001", http.StatusBadRequest, "documents[0].id is required."},
		{"wrong method", http.MethodGet, "", "SN-API-4005", http.StatusMethodNotAllowed, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, "/analyze/network", tc.body)
			require.Equal(t, tc.status, rec.Code)
			code, msg := errorCode(t, rec)
			assert.Equal(t, tc.code, code)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, msg)
			}
		})
	}
}

func TestAnalyzeNetworkTooManyDocuments(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxDocuments = 2
	h := NewServer(cfg, nil, nil).Routes()

	var buf bytes.Buffer
	buf.WriteString(`{"documents":[`)
	for i := 0; i < 3; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":"d%d","authors":["A"]}`, i)
	}
	buf.WriteString(`]}`)

	rec := do(t, h, http.MethodPost, "/analyze/network", buf.String())
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	code, _ := errorCode(t, rec)
	assert.Equal(t, "SN-API-4013", code)
}

func TestAnalyzeNetworkAsync(t *testing.T) {
	cfg := testConfig(t)
	runs := newMemRuns()
	tc := &fakeTemporal{progress: map[string]workflows.AnalysisProgress{}}
	h := NewServer(cfg, runs, tc).Routes()

	rec := do(t, h, http.MethodPost, "/analyze/network/async", exampleBody)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	runID := out["run_id"].(string)
	assert.Equal(t, workflows.WorkflowID(runID), out["workflow_id"])
	assert.Equal(t, float64(1), out["document_count"])

	require.Len(t, tc.started, 1)
	assert.Equal(t, "scholarnet-test", tc.started[0].TaskQueue)
	assert.Equal(t, runID, tc.inputs[0].RunID)
	assert.FileExists(t, tc.inputs[0].ManifestPath)
	assert.Equal(t, workflows.WorkflowID(runID), runs.runs[runID].WorkflowID)

	tc.progress[workflows.WorkflowID(runID)] = workflows.AnalysisProgress{RunID: runID, CurrentStep: "analyze_network", Status: models.RunStatusRunning}
	rec = do(t, h, http.MethodGet, "/runs/"+runID+"/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var prog workflows.AnalysisProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prog))
	assert.Equal(t, "analyze_network", prog.CurrentStep)
}

func TestAnalyzeNetworkAsyncUnavailable(t *testing.T) {
	h := NewServer(testConfig(t), newMemRuns(), nil).Routes()
	rec := do(t, h, http.MethodPost, "/analyze/network/async", exampleBody)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	code, _ := errorCode(t, rec)
	assert.Equal(t, "SN-API-5030", code)
}

func TestAnalyzeNetworkAsyncStartConflict(t *testing.T) {
	tc := &fakeTemporal{startErr: serviceerror.NewWorkflowExecutionAlreadyStarted("workflow execution already started", "", "")}
	runs := newMemRuns()
	h := NewServer(testConfig(t), runs, tc).Routes()
	rec := do(t, h, http.MethodPost, "/analyze/network/async", exampleBody)
	require.Equal(t, http.StatusConflict, rec.Code)
	code, _ := errorCode(t, rec)
	assert.Equal(t, "SN-API-4009", code)

	require.Len(t, runs.order, 1)
	assert.Equal(t, models.RunStatusFailed, runs.runs[runs.order[0]].Status)
}

func TestAnalyzeNetworkAsyncStartFailureMarksRunFailed(t *testing.T) {
	cfg := testConfig(t)
	runs := newMemRuns()
	tc := &fakeTemporal{startErr: errors.New("dial tcp 127.0.0.1:7233: connect: connection refused")}
	h := NewServer(cfg, runs, tc).Routes()

	rec := do(t, h, http.MethodPost, "/analyze/network/async", exampleBody)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	code, _ := errorCode(t, rec)
	assert.Equal(t, "SN-API-5030", code)

	require.Len(t, runs.order, 1)
	runID := runs.order[0]
	run := runs.runs[runID]
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Contains(t, run.FailReason, "connection refused")
	assert.NoDirExists(t, filepath.Join(cfg.DataInRoot, runID))

	rec = do(t, h, http.MethodGet, "/runs/"+runID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var archived models.AnalysisRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &archived))
	assert.Equal(t, models.RunStatusFailed, archived.Status)
}

func TestRunsEndpoints(t *testing.T) {
	runs := newMemRuns()
	h := NewServer(testConfig(t), runs, &fakeTemporal{}).Routes()

	first := do(t, h, http.MethodPost, "/analyze/network", exampleBody).Header().Get("X-Run-ID")
	second := do(t, h, http.MethodPost, "/analyze/network", `{"documents":[]}`).Header().Get("X-Run-ID")

	rec := do(t, h, http.MethodGet, "/runs?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Runs []models.AnalysisRun `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, second, list.Runs[0].RunID)

	rec = do(t, h, http.MethodGet, "/runs/"+first, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run models.AnalysisRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Contains(t, string(run.Result), `"key_players"`)

	// no live workflow: progress falls back to the archive
	rec = do(t, h, http.MethodGet, "/runs/"+first+"/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var prog workflows.AnalysisProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prog))
	assert.Equal(t, "done", prog.CurrentStep)
	assert.Equal(t, 1, prog.DocumentCount)

	rec = do(t, h, http.MethodGet, "/runs/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/runs/6f1c2c1e-8d7e-4f55-9a56-2b1d3f0c9e11", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	_, msg := errorCode(t, rec)
	assert.Equal(t, "Analysis run was not found.", msg)

	rec = do(t, h, http.MethodGet, "/runs?limit=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunsWithoutArchive(t *testing.T) {
	h := NewServer(testConfig(t), nil, nil).Routes()
	rec := do(t, h, http.MethodGet, "/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewServer(testConfig(t), nil, nil).Routes()
	do(t, h, http.MethodPost, "/analyze/network", exampleBody)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scholarnet_analyses_total")
	assert.Contains(t, rec.Body.String(), `scholarnet_http_requests_total{code="200",route="analyze"}`)
}

func TestCORSPreflight(t *testing.T) {
	h := NewServer(testConfig(t), nil, nil).Routes()
	rec := do(t, h, http.MethodOptions, "/analyze/network", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
