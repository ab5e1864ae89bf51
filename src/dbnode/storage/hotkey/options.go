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
	"errors"
	"fmt"
	"time"

	"github.com/m3db/m3hotspot/src/x/clock"
	"github.com/m3db/m3hotspot/src/x/instrument"
	xsync "github.com/m3db/m3hotspot/src/x/sync"
)

const (
	defaultCoarseBucketCount    = 37
	defaultCoarseThreshold      = 3.0
	defaultCoarseMinSampleCount = 1000
	defaultFineThreshold        = 3.0
	defaultFineShardCapacity    = 1000
	defaultMaxWorkTime          = 150 * time.Second
	minCoarseBucketCount        = 3
)

var (
	errCoarseThresholdNotPositive = errors.New("coarse threshold must be positive")
	errFineThresholdNotPositive   = errors.New("fine threshold must be positive")
	errFineShardCountNotPositive  = errors.New("fine shard count must be positive")
	errFineShardCapacityTooSmall  = errors.New("fine shard capacity must be positive")
	errMaxWorkTimeNegative        = errors.New("max work time must not be negative")
)

// Options are the options for a hotkey collector.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options

	// SetClockOptions sets the clock options.
	SetClockOptions(value clock.Options) Options

	// ClockOptions returns the clock options.
	ClockOptions() clock.Options

	// SetCoarseBucketCount sets the number of coarse buckets, a prime of at least 3.
	SetCoarseBucketCount(value int) Options

	// CoarseBucketCount returns the number of coarse buckets.
	CoarseBucketCount() int

	// SetCoarseThreshold sets the number of standard deviations above the
	// mean of the other buckets at which a bucket is hot.
	SetCoarseThreshold(value float64) Options

	// CoarseThreshold returns the coarse threshold.
	CoarseThreshold() float64

	// SetCoarseMinSampleCount sets the minimum total weight per coarse
	// analysis below which no bucket is reported.
	SetCoarseMinSampleCount(value uint64) Options

	// CoarseMinSampleCount returns the coarse minimum sample count.
	CoarseMinSampleCount() uint64

	// SetFineThreshold sets the number of standard deviations above the mean
	// weight of the other keys at which the heaviest key of a fine window is
	// reported.
	SetFineThreshold(value float64) Options

	// FineThreshold returns the fine threshold.
	FineThreshold() float64

	// SetFineShardCount sets the number of fine capture shards.
	SetFineShardCount(value int) Options

	// FineShardCount returns the number of fine capture shards.
	FineShardCount() int

	// SetFineShardCapacity sets the capacity of each fine capture shard.
	SetFineShardCapacity(value int) Options

	// FineShardCapacity returns the capacity of each fine capture shard.
	FineShardCapacity() int

	// SetMaxWorkTime sets the time after which an unfinished detection resets.
	SetMaxWorkTime(value time.Duration) Options

	// MaxWorkTime returns the max work time.
	MaxWorkTime() time.Duration
}

type options struct {
	iOpts                instrument.Options
	clockOpts            clock.Options
	coarseBucketCount    int
	coarseThreshold      float64
	coarseMinSampleCount uint64
	fineThreshold        float64
	fineShardCount       int
	fineShardCapacity    int
	maxWorkTime          time.Duration
}

// NewOptions creates new collector options.
func NewOptions() Options {
	return &options{
		iOpts:                instrument.NewOptions(),
		clockOpts:            clock.NewOptions(),
		coarseBucketCount:    defaultCoarseBucketCount,
		coarseThreshold:      defaultCoarseThreshold,
		coarseMinSampleCount: defaultCoarseMinSampleCount,
		fineThreshold:        defaultFineThreshold,
		fineShardCount:       defaultFineShardCount(),
		fineShardCapacity:    defaultFineShardCapacity,
		maxWorkTime:          defaultMaxWorkTime,
	}
}

func (o *options) Validate() error {
	if o.coarseBucketCount < minCoarseBucketCount || !isPrime(o.coarseBucketCount) {
		return fmt.Errorf("coarse bucket count must be a prime of at least %d: %d",
			minCoarseBucketCount, o.coarseBucketCount)
	}
	if o.coarseThreshold <= 0 {
		return errCoarseThresholdNotPositive
	}
	if o.fineThreshold <= 0 {
		return errFineThresholdNotPositive
	}
	if o.fineShardCount <= 0 {
		return errFineShardCountNotPositive
	}
	if o.fineShardCapacity <= 0 {
		return errFineShardCapacityTooSmall
	}
	if o.maxWorkTime < 0 {
		return errMaxWorkTimeNegative
	}
	return nil
}

func (o *options) SetInstrumentOptions(value instrument.Options) Options {
	opts := *o
	opts.iOpts = value
	return &opts
}

func (o *options) InstrumentOptions() instrument.Options {
	return o.iOpts
}

func (o *options) SetClockOptions(value clock.Options) Options {
	opts := *o
	opts.clockOpts = value
	return &opts
}

func (o *options) ClockOptions() clock.Options {
	return o.clockOpts
}

func (o *options) SetCoarseBucketCount(value int) Options {
	opts := *o
	opts.coarseBucketCount = value
	return &opts
}

func (o *options) CoarseBucketCount() int {
	return o.coarseBucketCount
}

func (o *options) SetCoarseThreshold(value float64) Options {
	opts := *o
	opts.coarseThreshold = value
	return &opts
}

func (o *options) CoarseThreshold() float64 {
	return o.coarseThreshold
}

func (o *options) SetCoarseMinSampleCount(value uint64) Options {
	opts := *o
	opts.coarseMinSampleCount = value
	return &opts
}

func (o *options) CoarseMinSampleCount() uint64 {
	return o.coarseMinSampleCount
}

func (o *options) SetFineThreshold(value float64) Options {
	opts := *o
	opts.fineThreshold = value
	return &opts
}

func (o *options) FineThreshold() float64 {
	return o.fineThreshold
}

func (o *options) SetFineShardCount(value int) Options {
	opts := *o
	opts.fineShardCount = value
	return &opts
}

func (o *options) FineShardCount() int {
	return o.fineShardCount
}

func (o *options) SetFineShardCapacity(value int) Options {
	opts := *o
	opts.fineShardCapacity = value
	return &opts
}

func (o *options) FineShardCapacity() int {
	return o.fineShardCapacity
}

func (o *options) SetMaxWorkTime(value time.Duration) Options {
	opts := *o
	opts.maxWorkTime = value
	return &opts
}

func (o *options) MaxWorkTime() time.Duration {
	return o.maxWorkTime
}

func defaultFineShardCount() int {
	return xsync.NumCores()
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}
