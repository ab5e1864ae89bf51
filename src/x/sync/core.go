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

package sync

import (
	"runtime"

	"go.uber.org/atomic"
)

// CoreFn is a function that returns the index of the shard the calling
// goroutine should use. Implementations must return values in [0, NumCores()).
type CoreFn func() int

// NumCores returns the number of shards core-sharded structures should
// allocate.
func NumCores() int {
	return runtime.GOMAXPROCS(0)
}

// RoundRobinCoreFn returns a CoreFn that cycles through n shards. It is safe
// for concurrent use and spreads contending callers across shards.
func RoundRobinCoreFn(n int) CoreFn {
	if n <= 1 {
		return func() int { return 0 }
	}
	var next atomic.Uint64
	return func() int {
		return int((next.Inc() - 1) % uint64(n))
	}
}
