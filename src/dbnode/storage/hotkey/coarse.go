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

package hotkey

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/stat"
)

func bucketIndex(key []byte, numBuckets int) int {
	return int(xxhash.Sum64(key) % uint64(numBuckets))
}

// coarseDetector counts captured weight per hash bucket and reports a bucket
// whose count is an outlier relative to all the other buckets.
type coarseDetector struct {
	buckets    []atomic.Uint64
	threshold  float64
	minSamples uint64
}

func newCoarseDetector(numBuckets int, threshold float64, minSamples uint64) *coarseDetector {
	return &coarseDetector{
		buckets:    make([]atomic.Uint64, numBuckets),
		threshold:  threshold,
		minSamples: minSamples,
	}
}

func (d *coarseDetector) Capture(key []byte, weight uint64) {
	d.buckets[bucketIndex(key, len(d.buckets))].Add(weight)
}

// Analyse resets every bucket and returns the hot bucket of the window, if any.
func (d *coarseDetector) Analyse() (int, bool) {
	var (
		counts = make([]float64, len(d.buckets))
		total  uint64
		hot    int
	)
	for i := range d.buckets {
		v := d.buckets[i].Swap(0)
		total += v
		counts[i] = float64(v)
		if counts[i] > counts[hot] {
			hot = i
		}
	}
	if total < d.minSamples {
		return 0, false
	}

	others := make([]float64, 0, len(counts)-1)
	others = append(others, counts[:hot]...)
	others = append(others, counts[hot+1:]...)

	hotValue := counts[hot]
	mean, sd := stat.MeanStdDev(others, nil)
	if sd == 0 || math.IsNaN(sd) {
		// Only a single non-empty bucket is a signal without spread.
		if hotValue > 0 && mean == 0 {
			return hot, true
		}
		return 0, false
	}
	if (hotValue-mean)/sd >= d.threshold {
		return hot, true
	}
	return 0, false
}
