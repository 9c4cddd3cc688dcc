package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePoints() []Triple {
	return []Triple{
		{Inflation: 1.0, Earnings: 2000, Growth: 1.0},
		{Inflation: 1.5, Earnings: 2100, Growth: 1.2},
		{Inflation: 2.0, Earnings: 2250, Growth: 1.5},
		{Inflation: 2.5, Earnings: 2400, Growth: 1.8},
		{Inflation: 3.0, Earnings: 2500, Growth: 2.0},
	}
}

func TestFitScaler_PopulationStats(t *testing.T) {
	params, err := FitScaler(samplePoints())
	require.NoError(t, err)

	// inflation: mean 2.0, population variance 0.5
	assert.InDelta(t, 2.0, params.Stats[Inflation].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), params.Stats[Inflation].StdDev, 1e-12)
	assert.InDelta(t, 2250.0, params.Stats[Earnings].Mean, 1e-9)
	assert.InDelta(t, 1.5, params.Stats[Growth].Mean, 1e-12)
}

func TestFitScaler_Empty(t *testing.T) {
	_, err := FitScaler(nil)
	var empty *EmptyTrainingSetError
	assert.True(t, errors.As(err, &empty))
}

func TestFitScaler_DegenerateFeature(t *testing.T) {
	points := samplePoints()
	for i := range points {
		points[i].Earnings = 2200
	}

	_, err := FitScaler(points)
	require.Error(t, err)

	var degenerate *DegenerateFeatureError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, "Avg_Earnings", degenerate.Feature)
	assert.Equal(t, 2200.0, degenerate.Value)
}

func TestFitScaler_DegenerateWithRoundingResidue(t *testing.T) {
	points := []Triple{
		{Inflation: 0.1, Earnings: 1, Growth: 1},
		{Inflation: 0.1, Earnings: 2, Growth: 2},
		{Inflation: 0.1, Earnings: 3, Growth: 3},
	}
	_, err := FitScaler(points)
	var degenerate *DegenerateFeatureError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, "CPI_Inflation", degenerate.Feature)
}

func TestTransform_Deterministic(t *testing.T) {
	params, err := FitScaler(samplePoints())
	require.NoError(t, err)

	x := Triple{Inflation: 2.2, Earnings: 2300, Growth: 1.4}
	first := params.Transform(x)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, params.Transform(x))
	}
}

func TestTransform_MeanMapsToZero(t *testing.T) {
	params, err := FitScaler(samplePoints())
	require.NoError(t, err)

	out := params.Transform(Triple{
		Inflation: params.Stats[Inflation].Mean,
		Earnings:  params.Stats[Earnings].Mean,
		Growth:    params.Stats[Growth].Mean,
	})
	assert.Equal(t, Triple{}, out)
}

func TestTransform_DoubleScalingDiffers(t *testing.T) {
	params, err := FitScaler(samplePoints())
	require.NoError(t, err)

	x := Triple{Inflation: 2.0, Earnings: 2200, Growth: 1.5}
	once := params.Transform(x)
	twice := params.Transform(once)
	assert.NotEqual(t, once, twice)
}

func TestTransformAll_DoesNotMutateInput(t *testing.T) {
	points := samplePoints()
	params, err := FitScaler(points)
	require.NoError(t, err)

	scaled := params.TransformAll(points)
	assert.Equal(t, samplePoints(), points)
	require.Len(t, scaled, len(points))
	assert.Equal(t, params.Transform(points[3]), scaled[3])
}
