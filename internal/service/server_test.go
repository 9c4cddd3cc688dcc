package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"econ-predictor/internal/features"
	"econ-predictor/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, sink Sink) (*httptest.Server, *fakeSink) {
	t.Helper()
	model := trainScenario(t)
	registry := prometheus.NewRegistry()
	wrapper := metrics.NewWrapper(metrics.NewWithRegistry(registry))

	fs, _ := sink.(*fakeSink)
	svc := New(model, sink, wrapper, Config{MaxRetries: 1})
	srv := httptest.NewServer(NewServer(svc, model, registry, 0).Handler())
	t.Cleanup(srv.Close)
	return srv, fs
}

func postPredict(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/predict", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Predict(t *testing.T) {
	srv, sink := newTestServer(t, &fakeSink{})

	resp := postPredict(t, srv.URL, `{"inflation": 2.2, "earnings": 2300, "growth": 1.6}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Stable", body.Prediction)
	assert.Equal(t, "Supervised_ML_Model_1", body.ModelID)
	assert.False(t, body.Persisted)
	assert.Len(t, body.Neighbors, 5)
	assert.Equal(t, 0, sink.calls)
}

func TestServer_PredictAndPersist(t *testing.T) {
	srv, sink := newTestServer(t, &fakeSink{})

	resp := postPredict(t, srv.URL, `{"inflation": 2.2, "earnings": 2300, "growth": 1.6, "persist": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Persisted)
	require.Len(t, sink.records, 1)
	assert.Equal(t, sink.records[0].ID, body.RecordID)
}

func TestServer_PredictRejected(t *testing.T) {
	srv, sink := newTestServer(t, &fakeSink{})

	resp := postPredict(t, srv.URL, `{"inflation": 2.2, "earnings": -5, "growth": 75, "persist": true}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Violations, 2)
	assert.Equal(t, 0, sink.calls)
}

func TestServer_PredictBadRequest(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSink{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"inflation": `},
		{"string value", `{"inflation": "two", "earnings": 2300, "growth": 1.6}`},
		{"missing growth", `{"inflation": 2.2, "earnings": 2300}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postPredict(t, srv.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServer_PersistenceDisabled(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postPredict(t, srv.URL, `{"inflation": 2.2, "earnings": 2300, "growth": 1.6, "persist": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Persisted)
	assert.Contains(t, body.PersistErr, "disabled")
}

func TestServer_Bounds(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSink{})

	resp, err := http.Get(srv.URL + "/bounds")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bounds features.BoundsAdvisory
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bounds))
	assert.Equal(t, features.Range{Min: 2000, Max: 2500}, bounds.Earnings)
}

func TestServer_ModelInfoAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSink{})

	resp, err := http.Get(srv.URL + "/model/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "Supervised_ML_Model_1", info["model_id"])
	assert.Equal(t, float64(5), info["k"])
	assert.Equal(t, float64(5), info["training_rows"])

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSink{})
	postPredict(t, srv.URL, `{"inflation": 2.2, "earnings": 2300, "growth": 1.6}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `predictions_total{label="Stable"} 1`)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSink{})

	resp, err := http.Get(srv.URL + "/predict")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
