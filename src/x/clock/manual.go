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

package clock

import (
	"sync"
	"time"
)

// Manual is a clock that only moves when told to, used to drive
// time-dependent components deterministically.
type Manual struct {
	sync.RWMutex
	now time.Time
}

// NewManual returns a manual clock starting at the given time.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now returns the current time of the clock.
func (c *Manual) Now() time.Time {
	c.RLock()
	defer c.RUnlock()
	return c.now
}

// Add moves the clock forward by the given duration.
func (c *Manual) Add(d time.Duration) {
	c.Lock()
	c.now = c.now.Add(d)
	c.Unlock()
}

// Set sets the clock to the given time.
func (c *Manual) Set(now time.Time) {
	c.Lock()
	c.now = now
	c.Unlock()
}
