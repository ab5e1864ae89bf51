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
	"fmt"
	"math"
)

const (
	// QPSVariancePolicyName names the mean and standard deviation policy.
	QPSVariancePolicyName = "qps_variance"
	// QPSPercentilePolicyName names the median absolute deviation policy.
	QPSPercentilePolicyName = "qps_percentile"

	// Samples at or below this QPS are idle noise and left out of the
	// distribution.
	qpsSampleFloor = 1.0
)

// NewPolicy returns the policy with the given name. An empty name returns a
// nil policy, which disables hotspot detection.
func NewPolicy(name string) (Policy, error) {
	switch name {
	case "":
		return nil, nil
	case QPSVariancePolicyName:
		return NewQPSVariancePolicy(), nil
	case QPSPercentilePolicyName:
		return NewQPSPercentilePolicy(), nil
	}
	return nil, fmt.Errorf("unknown hotspot policy: %q", name)
}

// qpsSamples returns every read and write QPS in the history above the
// sample floor.
func qpsSamples(history []Snapshot) (reads, writes []float64) {
	for _, snapshot := range history {
		for _, qps := range snapshot {
			if qps.ReadQPS > qpsSampleFloor {
				reads = append(reads, qps.ReadQPS)
			}
			if qps.WriteQPS > qpsSampleFloor {
				writes = append(writes, qps.WriteQPS)
			}
		}
	}
	return reads, writes
}

// deviationScore returns how many spreads value is above center, rounded
// up and never negative.
func deviationScore(value, center, spread float64) int64 {
	if spread <= 0 || math.IsNaN(spread) {
		return 0
	}
	return int64(math.Ceil(math.Max(0, (value-center)/spread)))
}
