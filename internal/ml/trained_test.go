package ml

import (
	"errors"
	"sync"
	"testing"

	"econ-predictor/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrain_EndToEndScenario(t *testing.T) {
	metrics := &MockMetrics{}
	ts, err := Train(ScenarioRecords(), TrainConfig{ModelID: "Supervised_ML_Model_1", Metrics: metrics})
	require.NoError(t, err)

	req := features.Triple{Inflation: 2.0, Earnings: 2200, Growth: 1.5}
	require.NoError(t, Validate(req))
	assert.Equal(t, "Stable", ts.Predict(req))

	assert.Equal(t, 5, ts.K())
	assert.Equal(t, 5, ts.Size())
	assert.Equal(t, "Supervised_ML_Model_1", ts.ModelID())
	assert.Equal(t, []string{"Growing", "Stable"}, ts.Labels())
	assert.Equal(t, 5.0, metrics.trainingRows)
	assert.NotZero(t, metrics.trainedAt)
}

func TestTrain_ExactlyFiveRows(t *testing.T) {
	_, err := Train(ScenarioRecords(), TrainConfig{})
	assert.NoError(t, err)
}

func TestTrain_FourRowsInsufficient(t *testing.T) {
	_, err := Train(ScenarioRecords()[:4], TrainConfig{})

	var insufficient *InsufficientTrainingDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 4, insufficient.Have)
}

func TestTrain_AlwaysUsesDefaultK(t *testing.T) {
	records := append(ScenarioRecords(), ScenarioRecords()...)
	ts, err := Train(records, TrainConfig{})
	require.NoError(t, err)

	assert.Equal(t, DefaultK, ts.K())
	assert.Len(t, ts.Neighbors(features.Triple{Inflation: 2.0, Earnings: 2200, Growth: 1.5}), DefaultK)
}

func TestTrain_Empty(t *testing.T) {
	_, err := Train(nil, TrainConfig{})
	var insufficient *InsufficientTrainingDataError
	assert.True(t, errors.As(err, &insufficient))
}

func TestTrain_DegenerateFeature(t *testing.T) {
	records := ScenarioRecords()
	for i := range records {
		records[i].Earnings = 2200
	}

	ts, err := Train(records, TrainConfig{})
	assert.Nil(t, ts)

	var degenerate *features.DegenerateFeatureError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, "Avg_Earnings", degenerate.Feature)
}

func TestTrain_BoundsAdvisory(t *testing.T) {
	ts, err := Train(ScenarioRecords(), TrainConfig{})
	require.NoError(t, err)

	b := ts.Bounds()
	assert.Equal(t, features.Range{Min: 1.0, Max: 3.0}, b.Inflation)
	assert.Equal(t, features.Range{Min: 2000, Max: 2500}, b.Earnings)
	assert.Equal(t, features.Range{Min: 1.0, Max: 2.0}, b.Growth)
}

func TestTrainedService_ScalesExactlyOnce(t *testing.T) {
	ts, err := Train(ScenarioRecords(), TrainConfig{})
	require.NoError(t, err)

	x := features.Triple{Inflation: 2.7, Earnings: 2450, Growth: 1.9}
	n := ts.Neighbors(x)
	direct := ts.model.Neighbors(ts.Scale(x))
	assert.Equal(t, direct, n)

	doubled := ts.model.Neighbors(ts.Scale(ts.Scale(x)))
	assert.NotEqual(t, direct[0].Distance, doubled[0].Distance)
}

func TestTrainedService_ConcurrentReaders(t *testing.T) {
	ts, err := Train(ScenarioRecords(), TrainConfig{})
	require.NoError(t, err)

	want := ts.Predict(valid())
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, ts.Predict(valid()))
			}
		}()
	}
	wg.Wait()
}
