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
	"gonum.org/v1/gonum/stat"
)

type qpsVariancePolicy struct{}

// NewQPSVariancePolicy returns a policy scoring each partition's latest QPS
// in population standard deviations above the mean of every QPS sample in
// the history.
func NewQPSVariancePolicy() Policy {
	return qpsVariancePolicy{}
}

func (qpsVariancePolicy) Analysis(history []Snapshot, scores []PartitionScore) bool {
	if len(history) == 0 {
		return false
	}
	latest := history[len(history)-1]
	reads, writes := qpsSamples(history)

	if len(reads) > 0 {
		mean, sd := stat.PopMeanStdDev(reads, nil)
		for p := range scores {
			scores[p].Read = deviationScore(latest[p].ReadQPS, mean, sd)
		}
	}
	if len(writes) > 0 {
		mean, sd := stat.PopMeanStdDev(writes, nil)
		for p := range scores {
			scores[p].Write = deviationScore(latest[p].WriteQPS, mean, sd)
		}
	}
	return len(reads) > 0 || len(writes) > 0
}
