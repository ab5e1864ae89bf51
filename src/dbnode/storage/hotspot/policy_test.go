// Copyright (c) 2016 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package hotspot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSnapshot(values ...float64) Snapshot {
	s := make(Snapshot, len(values))
	for i, v := range values {
		s[i] = PartitionQPS{ReadQPS: v}
	}
	return s
}

func readScores(scores []PartitionScore) []int64 {
	out := make([]int64, len(scores))
	for i, s := range scores {
		out[i] = s.Read
	}
	return out
}

func TestQPSVariancePolicyScoresOutlier(t *testing.T) {
	history := []Snapshot{readSnapshot(100, 100, 100, 100, 100, 100, 100, 1000)}
	scores := make([]PartitionScore, 8)

	require.True(t, NewQPSVariancePolicy().Analysis(history, scores))
	assert.Equal(t, []int64{0, 0, 0, 0, 0, 0, 0, 3}, readScores(scores))
	for _, s := range scores {
		assert.Equal(t, int64(0), s.Write)
	}
}

func TestQPSVariancePolicyUsesWholeHistory(t *testing.T) {
	var history []Snapshot
	for i := 0; i < 10; i++ {
		history = append(history, readSnapshot(100, 100, 100, 100, 100, 100, 100, 100))
	}
	history = append(history, readSnapshot(100, 100, 100, 1000, 100, 100, 100, 100))
	scores := make([]PartitionScore, 8)

	require.True(t, NewQPSVariancePolicy().Analysis(history, scores))
	assert.Equal(t, []int64{0, 0, 0, 10, 0, 0, 0, 0}, readScores(scores))
}

func TestQPSVariancePolicyNoSamples(t *testing.T) {
	history := []Snapshot{readSnapshot(0.5, 1, 0, 0.9)}
	scores := make([]PartitionScore, 4)

	assert.False(t, NewQPSVariancePolicy().Analysis(history, scores))
	assert.Equal(t, []int64{0, 0, 0, 0}, readScores(scores))
	assert.False(t, NewQPSVariancePolicy().Analysis(nil, scores))
}

func TestQPSVariancePolicyNoSpread(t *testing.T) {
	history := []Snapshot{readSnapshot(50, 50, 50)}
	scores := make([]PartitionScore, 3)

	assert.True(t, NewQPSVariancePolicy().Analysis(history, scores))
	assert.Equal(t, []int64{0, 0, 0}, readScores(scores))
}

func TestQPSVariancePolicyDirectionsIndependent(t *testing.T) {
	history := []Snapshot{{
		{ReadQPS: 100, WriteQPS: 0},
		{ReadQPS: 100, WriteQPS: 0},
		{ReadQPS: 100, WriteQPS: 0},
		{ReadQPS: 100, WriteQPS: 0},
		{ReadQPS: 100, WriteQPS: 0},
		{ReadQPS: 100, WriteQPS: 0},
		{ReadQPS: 100, WriteQPS: 0},
		{ReadQPS: 1000, WriteQPS: 0},
	}}
	scores := make([]PartitionScore, 8)

	require.True(t, NewQPSVariancePolicy().Analysis(history, scores))
	assert.Equal(t, int64(3), scores[7].Read)
	for _, s := range scores {
		assert.Equal(t, int64(0), s.Write)
	}
}

func TestQPSPercentilePolicy(t *testing.T) {
	history := []Snapshot{readSnapshot(90, 95, 100, 105, 110, 100, 1000, 100)}
	scores := make([]PartitionScore, 8)

	require.True(t, NewQPSPercentilePolicy().Analysis(history, scores))
	assert.Equal(t, []int64{0, 0, 0, 1, 2, 0, 122, 0}, readScores(scores))
}

func TestQPSPercentilePolicyNoDeviation(t *testing.T) {
	history := []Snapshot{readSnapshot(100, 100, 100, 100, 1000)}
	scores := make([]PartitionScore, 5)

	require.True(t, NewQPSPercentilePolicy().Analysis(history, scores))
	assert.Equal(t, []int64{0, 0, 0, 0, 0}, readScores(scores))
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewPolicy(QPSVariancePolicyName)
	require.NoError(t, err)
	assert.IsType(t, qpsVariancePolicy{}, p)

	p, err = NewPolicy(QPSPercentilePolicyName)
	require.NoError(t, err)
	assert.IsType(t, qpsPercentilePolicy{}, p)

	_, err = NewPolicy("qps_magic")
	require.Error(t, err)
}
