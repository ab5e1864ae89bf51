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
	"time"

	"github.com/m3db/m3hotspot/src/x/clock"
)

const testKeyLen = 10

var testKeyAlphabet = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func randomKey(rng *rand.Rand) []byte {
	key := make([]byte, testKeyLen)
	for i := range key {
		key[i] = testKeyAlphabet[rng.Intn(len(testKeyAlphabet))]
	}
	return key
}

// balancedKeys returns perBucket random keys for every coarse bucket, so a
// window made of them has no spread between buckets.
func balancedKeys(rng *rand.Rand, numBuckets, perBucket int) [][]byte {
	var (
		filled = make([]int, numBuckets)
		keys   = make([][]byte, 0, numBuckets*perBucket)
	)
	for len(keys) < cap(keys) {
		key := randomKey(rng)
		b := bucketIndex(key, numBuckets)
		if filled[b] == perBucket {
			continue
		}
		filled[b]++
		keys = append(keys, key)
	}
	return keys
}

func newTestOptions() (Options, *clock.Manual) {
	manual := clock.NewManual(time.Unix(1600000000, 0))
	opts := NewOptions().
		SetClockOptions(clock.NewOptions().SetNowFn(manual.Now)).
		SetFineShardCount(4)
	return opts, manual
}
