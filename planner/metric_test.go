package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAccessibility(t *testing.T) {
	pol := DefaultPolicy()
	current := []float64{10, math.Inf(0), 30}
	weights := []int64{2, 5, 1}

	acc := ComputeAccessibility(current, weights, pol)
	assert.InDelta(t, 50.0/3.0, acc.AvgMinutes, 1e-9)
	assert.Equal(t, 2, acc.ServedTracts)
	assert.Equal(t, int64(3), acc.ServedWeight)
	assert.Equal(t, int64(5), acc.UnservedWeight)
}

func TestComputeAccessibilityThreshold(t *testing.T) {
	pol := DefaultPolicy()
	pol.ServeThresholdMin = 15
	current := []float64{10, math.Inf(0), 30}
	weights := []int64{2, 5, 1}

	// the threshold narrows the served set but not the average
	acc := ComputeAccessibility(current, weights, pol)
	assert.InDelta(t, 50.0/3.0, acc.AvgMinutes, 1e-9)
	assert.Equal(t, 1, acc.ServedTracts)
	assert.Equal(t, int64(2), acc.ServedWeight)
	assert.Equal(t, int64(6), acc.UnservedWeight)
}

func TestComputeAccessibilityAllUnreachable(t *testing.T) {
	pol := DefaultPolicy()
	current := []float64{math.Inf(0), math.Inf(0)}
	weights := []int64{4, 6}

	acc := ComputeAccessibility(current, weights, pol)
	assert.Equal(t, 0.0, acc.AvgMinutes)
	assert.Equal(t, 0, acc.ServedTracts)
	assert.Equal(t, int64(0), acc.ServedWeight)
	assert.Equal(t, int64(10), acc.UnservedWeight)
}

func TestComputeAccessibilityZeroWeight(t *testing.T) {
	pol := DefaultPolicy()
	current := []float64{20, 40}
	weights := []int64{0, 2}

	acc := ComputeAccessibility(current, weights, pol)
	assert.InDelta(t, 40.0, acc.AvgMinutes, 1e-9)
	assert.Equal(t, 2, acc.ServedTracts)
	assert.Equal(t, int64(2), acc.ServedWeight)
}

func TestPolicyServed(t *testing.T) {
	pol := DefaultPolicy()
	assert.True(t, pol.Served(1e6))
	assert.False(t, pol.Served(math.Inf(0)))

	pol.ServeThresholdMin = 30
	assert.True(t, pol.Served(30))
	assert.False(t, pol.Served(30.1))
}

func TestPolicyValidate(t *testing.T) {
	pol := DefaultPolicy()
	assert.NoError(t, pol.Validate())

	pol = DefaultPolicy()
	pol.RoundTripFactor = 0
	assert.Error(t, pol.Validate())

	pol = DefaultPolicy()
	pol.Modes = []string{"walk", "tram"}
	assert.Error(t, pol.Validate())

	pol = DefaultPolicy()
	pol.Workers = 0
	assert.NoError(t, pol.Validate())
	assert.Equal(t, DefaultPolicy().Workers, pol.Workers)
}
