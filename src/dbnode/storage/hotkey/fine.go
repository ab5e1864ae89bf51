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

	"github.com/uber-go/tally/v4"
	"gonum.org/v1/gonum/stat"
)

// minFineHotWeight is the weight a key needs within one window to be
// reported. A key seen once cannot stand out from the rest of its bucket.
const minFineHotWeight = 2

type fineItem struct {
	key    string
	weight uint64
}

// fineDetector counts exact keys of a single coarse bucket. Captures are
// pushed into bounded shards and only aggregated during analysis.
type fineDetector struct {
	target     int
	numBuckets int
	threshold  float64
	shards     []chan fineItem
	dropped    tally.Counter
}

func newFineDetector(
	target int,
	numBuckets int,
	threshold float64,
	numShards int,
	shardCapacity int,
	dropped tally.Counter,
) *fineDetector {
	shards := make([]chan fineItem, numShards)
	for i := range shards {
		shards[i] = make(chan fineItem, shardCapacity)
	}
	return &fineDetector{
		target:     target,
		numBuckets: numBuckets,
		threshold:  threshold,
		shards:     shards,
		dropped:    dropped,
	}
}

// Capture admits key into shard if the key belongs to the target bucket. A
// full shard drops the key rather than block.
func (d *fineDetector) Capture(key []byte, weight uint64, shard int) {
	if bucketIndex(key, d.numBuckets) != d.target {
		return
	}
	select {
	case d.shards[shard%len(d.shards)] <- fineItem{key: string(key), weight: weight}:
	default:
		d.dropped.Inc(1)
	}
}

// Analyse drains the shards and returns the key with the highest weight if
// it is an outlier among the keys of the window. Ties go to the key seen
// first.
func (d *fineDetector) Analyse() (string, bool) {
	var (
		counts = make(map[string]uint64)
		order  []string
	)
	for _, shard := range d.shards {
		order = drainShard(shard, counts, order)
	}
	if len(order) == 0 {
		return "", false
	}

	hot := 0
	for i, key := range order {
		if counts[key] > counts[order[hot]] {
			hot = i
		}
	}
	hotKey := order[hot]
	hotValue := float64(counts[hotKey])
	if hotValue < minFineHotWeight {
		return "", false
	}
	if len(order) == 1 {
		return hotKey, true
	}

	others := make([]float64, 0, len(order)-1)
	for i, key := range order {
		if i != hot {
			others = append(others, float64(counts[key]))
		}
	}
	mean, sd := stat.MeanStdDev(others, nil)
	if sd == 0 || math.IsNaN(sd) {
		return hotKey, hotValue > mean
	}
	if (hotValue-mean)/sd >= d.threshold {
		return hotKey, true
	}
	return "", false
}

// drainShard moves at most cap(shard) items into counts so that concurrent
// captures cannot keep analysis busy.
func drainShard(shard chan fineItem, counts map[string]uint64, order []string) []string {
	for n := cap(shard); n > 0; n-- {
		select {
		case item := <-shard:
			if _, ok := counts[item.key]; !ok {
				order = append(order, item.key)
			}
			counts[item.key] += item.weight
		default:
			return order
		}
	}
	return order
}
