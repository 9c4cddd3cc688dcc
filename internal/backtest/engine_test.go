package backtest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"econ-predictor/internal/features"
	"econ-predictor/internal/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableRecords returns two well separated clusters of six rows each.
func separableRecords() []features.TrainingRecord {
	var records []features.TrainingRecord
	for i := 0; i < 6; i++ {
		d := float64(i) * 0.1
		records = append(records,
			features.TrainingRecord{Triple: features.Triple{Inflation: 1 + d, Earnings: 2000 + 10*d, Growth: 1 + d}, Status: "Stable"},
			features.TrainingRecord{Triple: features.Triple{Inflation: 10 + d, Earnings: 5000 + 10*d, Growth: 10 + d}, Status: "Growing"},
		)
	}
	return records
}

func TestLeaveOneOut_Separable(t *testing.T) {
	results, err := LeaveOneOut(separableRecords(), 5)
	require.NoError(t, err)

	assert.Equal(t, 12, results.Total)
	assert.Equal(t, 12, results.Evaluated)
	assert.Equal(t, 0, results.Skipped)
	assert.Equal(t, 12, results.Correct)
	assert.Equal(t, 1.0, results.Accuracy)
	assert.Equal(t, []string{"Growing", "Stable"}, results.Labels)
	assert.Equal(t, 6, results.Confusion["Stable"]["Stable"])
	assert.Equal(t, 6, results.Confusion["Growing"]["Growing"])
	assert.Zero(t, results.Confusion["Stable"]["Growing"])
}

func TestLeaveOneOut_TooFewRowsSkipsAll(t *testing.T) {
	results, err := LeaveOneOut(ml.ScenarioRecords(), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, results.Total)
	assert.Equal(t, 5, results.Skipped)
	assert.Equal(t, 0, results.Evaluated)
	assert.Equal(t, 0.0, results.Accuracy)
	for _, e := range results.Evaluations {
		assert.True(t, e.Skipped)
		assert.Contains(t, e.Reason, "insufficient training data")
	}
}

func TestLeaveOneOut_DegenerateHeldOutFitSkipped(t *testing.T) {
	records := separableRecords()
	for i := range records {
		records[i].Earnings = 2000
	}
	records[0].Earnings = 2100

	results, err := LeaveOneOut(records, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, results.Skipped)
	assert.True(t, results.Evaluations[0].Skipped)
	assert.Contains(t, results.Evaluations[0].Reason, "degenerate feature")
	assert.Equal(t, 11, results.Evaluated)
}

func TestLeaveOneOut_Empty(t *testing.T) {
	_, err := LeaveOneOut(nil, 5)
	var empty *features.EmptyTrainingSetError
	assert.ErrorAs(t, err, &empty)
}

func TestNewEngine_DefaultK(t *testing.T) {
	e := NewEngine(separableRecords(), 0)
	assert.Equal(t, ml.DefaultK, e.k)
	assert.Nil(t, e.GetResults())
}

func TestReporter_GenerateReport(t *testing.T) {
	results, err := LeaveOneOut(separableRecords(), 5)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	reporter := NewReporter(results, nil, dir)
	require.NoError(t, reporter.GenerateReport())

	for _, name := range []string{"evaluation_summary.txt", "evaluations.csv", "evaluation_results.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "evaluation_results.json"))
	require.NoError(t, err)
	var report struct {
		LeaveOneOut Results `json:"leave_one_out"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 12, report.LeaveOneOut.Correct)

	var buf bytes.Buffer
	reporter.WriteSummary(&buf)
	assert.Contains(t, buf.String(), "Accuracy: 100.00%")
	assert.Contains(t, buf.String(), "CONFUSION MATRIX")
	assert.NotContains(t, buf.String(), "AUDIT REPLAY")
}
