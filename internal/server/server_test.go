package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	bvcore "github.com/jaskrrish/Go-BV/internal/bv"
	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	"github.com/jaskrrish/Go-BV/internal/handlers"
	models "github.com/jaskrrish/Go-BV/internal/models/bv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	evaluator := bvcore.NewEvaluator(quantum.NewSimulatorBackend(99), zerolog.Nop())
	manager := bvcore.NewExperimentManager(evaluator, bvcore.ManagerOptions{
		MaxQubits:    8,
		DefaultShots: 64,
		NoiseProfiles: map[string]*quantum.NoiseModel{
			"ideal": {Name: "ideal"},
		},
		Logger: zerolog.Nop(),
	})

	s := New(Config{
		Port:    0,
		Log:     zerolog.Nop(),
		BV:      handlers.NewBVHandler(manager),
		DevMode: true,
	})
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createExperiment(t *testing.T, h http.Handler, req models.ExperimentCreateRequest) *models.Experiment {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/api/v1/bv/experiments", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.ExperimentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Experiment)
	return resp.Experiment
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = do(t, h, http.MethodGet, "/api/v1/bv/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "StateVectorSimulator", body["backend"])
	assert.Equal(t, true, body["simulator"])
	assert.Equal(t, float64(0), body["active_experiments"])
	assert.Equal(t, []interface{}{"ideal"}, body["noise_profiles"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExperimentLifecycle(t *testing.T) {
	h := newTestServer(t)

	exp := createExperiment(t, h, models.ExperimentCreateRequest{NumQubits: 4, A: 5, B: 1})
	assert.Equal(t, "101", exp.Expected)
	assert.Equal(t, models.OracleStyleCX, exp.OracleStyle)
	assert.Equal(t, 2, exp.CorrelatingGates)

	base := "/api/v1/bv/experiments/" + exp.ExperimentID.String()

	rec := do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/qasm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "OPENQASM 2.0;")

	rec = do(t, h, http.MethodPost, base+"/runs", models.RunRequest{Shots: 128})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run models.RunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&run))
	assert.Equal(t, 128, run.Run.Shots)
	assert.Equal(t, 1.0, run.Run.Accuracy)
	assert.Equal(t, "101", run.Run.MostFrequent)
	assert.True(t, run.Run.Recovered)
	assert.Equal(t, uint64(5), run.Run.RecoveredA)

	// empty body falls back to the default shot count
	req := httptest.NewRequest(http.MethodPost, base+"/runs", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, base+"/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.RunListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list.Runs, 2)
	assert.Equal(t, 2, list.Summary.Runs)
	assert.Equal(t, 128+64, list.Summary.TotalShots)
	assert.Equal(t, 1.0, list.Summary.MeanAccuracy)

	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPhaseKickbackExperiment(t *testing.T) {
	h := newTestServer(t)

	exp := createExperiment(t, h, models.ExperimentCreateRequest{
		NumQubits:   5,
		A:           0b1011,
		OracleStyle: models.OracleStyleCZ,
	})
	assert.Equal(t, "1011", exp.Expected)

	rec := do(t, h, http.MethodPost, "/api/v1/bv/experiments/"+exp.ExperimentID.String()+"/runs",
		models.RunRequest{Shots: 50, NoiseProfile: "ideal"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run models.RunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&run))
	assert.Equal(t, 1.0, run.Run.Accuracy)
	assert.Equal(t, "ideal", run.Run.NoiseProfile)
}

func TestErrorResponses(t *testing.T) {
	h := newTestServer(t)
	exp := createExperiment(t, h, models.ExperimentCreateRequest{NumQubits: 3, A: 2})
	base := "/api/v1/bv/experiments/"

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		raw    string
		status int
	}{
		{"malformed json", http.MethodPost, base, nil, "{", http.StatusBadRequest},
		{"too few qubits", http.MethodPost, base, models.ExperimentCreateRequest{NumQubits: 1}, "", http.StatusBadRequest},
		{"bad secret bit", http.MethodPost, base, models.ExperimentCreateRequest{NumQubits: 3, B: 2}, "", http.StatusBadRequest},
		{"secret out of range", http.MethodPost, base, models.ExperimentCreateRequest{NumQubits: 3, A: 4}, "", http.StatusBadRequest},
		{"beyond backend limit", http.MethodPost, base, models.ExperimentCreateRequest{NumQubits: 9}, "", http.StatusBadRequest},
		{"unknown style", http.MethodPost, base, models.ExperimentCreateRequest{NumQubits: 3, OracleStyle: "ccx"}, "", http.StatusBadRequest},
		{"bad id", http.MethodGet, base + "not-a-uuid", nil, "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, base + uuid.NewString(), nil, "", http.StatusNotFound},
		{"runs of unknown id", http.MethodGet, base + uuid.NewString() + "/runs", nil, "", http.StatusNotFound},
		{"bad shots", http.MethodPost, base + exp.ExperimentID.String() + "/runs", models.RunRequest{Shots: -1}, "", http.StatusBadRequest},
		{"unknown noise profile", http.MethodPost, base + exp.ExperimentID.String() + "/runs", models.RunRequest{NoiseProfile: "missing"}, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.raw != "" {
				req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.raw))
				rec = httptest.NewRecorder()
				h.ServeHTTP(rec, req)
			} else {
				rec = do(t, h, tt.method, tt.path, tt.body)
			}
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
