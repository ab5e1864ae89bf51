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
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// madNormalConsistency scales the median absolute deviation to estimate the
// standard deviation of normally distributed samples.
const madNormalConsistency = 1.4826

type qpsPercentilePolicy struct{}

// NewQPSPercentilePolicy returns a policy scoring each partition's latest
// QPS in scaled median absolute deviations above the median of every QPS
// sample in the history.
func NewQPSPercentilePolicy() Policy {
	return qpsPercentilePolicy{}
}

func (qpsPercentilePolicy) Analysis(history []Snapshot, scores []PartitionScore) bool {
	if len(history) == 0 {
		return false
	}
	latest := history[len(history)-1]
	reads, writes := qpsSamples(history)

	if len(reads) > 0 {
		median, mad := medianAbsDeviation(reads)
		for p := range scores {
			scores[p].Read = deviationScore(latest[p].ReadQPS, median, madNormalConsistency*mad)
		}
	}
	if len(writes) > 0 {
		median, mad := medianAbsDeviation(writes)
		for p := range scores {
			scores[p].Write = deviationScore(latest[p].WriteQPS, median, madNormalConsistency*mad)
		}
	}
	return len(reads) > 0 || len(writes) > 0
}

// medianAbsDeviation sorts samples in place.
func medianAbsDeviation(samples []float64) (median, mad float64) {
	sort.Float64s(samples)
	median = stat.Quantile(0.5, stat.Empirical, samples, nil)

	deviations := make([]float64, len(samples))
	for i, v := range samples {
		deviations[i] = math.Abs(v - median)
	}
	sort.Float64s(deviations)
	mad = stat.Quantile(0.5, stat.Empirical, deviations, nil)
	return median, mad
}
