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
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoarseDetectorBalancedTrafficHasNoHotBucket(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := newCoarseDetector(defaultCoarseBucketCount, defaultCoarseThreshold, defaultCoarseBucketCount)

	for _, key := range balancedKeys(rng, defaultCoarseBucketCount, 100) {
		d.Capture(key, 1)
	}
	_, ok := d.Analyse()
	assert.False(t, ok)
}

func TestCoarseDetectorFindsHotBucket(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := newCoarseDetector(defaultCoarseBucketCount, defaultCoarseThreshold, defaultCoarseBucketCount)

	hot := []byte("AAAAAAAAAA")
	for i := 0; i < 10000; i++ {
		if i%2 == 0 {
			d.Capture(hot, 1)
		} else {
			d.Capture(randomKey(rng), 1)
		}
	}
	bucket, ok := d.Analyse()
	require.True(t, ok)
	assert.Equal(t, bucketIndex(hot, defaultCoarseBucketCount), bucket)
}

func TestCoarseDetectorSingleNonEmptyBucket(t *testing.T) {
	d := newCoarseDetector(defaultCoarseBucketCount, defaultCoarseThreshold, 1)

	key := []byte("only")
	d.Capture(key, 5)
	bucket, ok := d.Analyse()
	require.True(t, ok)
	assert.Equal(t, bucketIndex(key, defaultCoarseBucketCount), bucket)
}

func TestCoarseDetectorBelowSampleFloor(t *testing.T) {
	d := newCoarseDetector(defaultCoarseBucketCount, defaultCoarseThreshold, 100)

	d.Capture([]byte("only"), 99)
	_, ok := d.Analyse()
	assert.False(t, ok)
}

func TestCoarseDetectorAnalyseResets(t *testing.T) {
	d := newCoarseDetector(defaultCoarseBucketCount, defaultCoarseThreshold, 1)

	d.Capture([]byte("only"), 5)
	_, ok := d.Analyse()
	require.True(t, ok)

	_, ok = d.Analyse()
	assert.False(t, ok)
	for i := range d.buckets {
		assert.Equal(t, uint64(0), d.buckets[i].Load())
	}
}

func TestCoarseDetectorHighestRawCountWins(t *testing.T) {
	d := newCoarseDetector(5, 1, 1)
	for i, v := range []uint64{1, 1, 40, 1, 30} {
		d.buckets[i].Store(v)
	}
	bucket, ok := d.Analyse()
	require.True(t, ok)
	assert.Equal(t, 2, bucket)
}

func TestCoarseDetectorCountsEveryCapture(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	seed := time.Now().UnixNano()
	parameters.MinSuccessfulTests = 100
	parameters.Rng = rand.New(rand.NewSource(seed))
	properties := gopter.NewProperties(parameters)

	properties.Property("bucket totals equal captured weight and reset on analysis", prop.ForAll(
		func(keys []string, weight uint8) bool {
			d := newCoarseDetector(defaultCoarseBucketCount, defaultCoarseThreshold, 0)
			w := uint64(weight) + 1
			for _, key := range keys {
				d.Capture([]byte(key), w)
			}

			var total uint64
			for i := range d.buckets {
				total += d.buckets[i].Load()
			}
			if total != uint64(len(keys))*w {
				return false
			}

			d.Analyse()
			for i := range d.buckets {
				if d.buckets[i].Load() != 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()).WithLabel("keys"),
		gen.UInt8().WithLabel("weight"),
	))

	reporter := gopter.NewFormatedReporter(true, 160, os.Stdout)
	if !properties.Run(reporter) {
		t.Errorf("failed with initial seed: %d", seed)
	}
}
