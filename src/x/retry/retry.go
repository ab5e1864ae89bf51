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

package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/uber-go/tally/v4"
)

var (
	// ErrWhileConditionFalse is returned when the while condition to a while retry
	// method evaluates false.
	ErrWhileConditionFalse = errors.New("retry while condition evaluated to false")
)

type sleepFn func(d time.Duration)

type retrier struct {
	opts    Options
	sleepFn sleepFn
	metrics retrierMetrics
}

type retrierMetrics struct {
	success            tally.Counter
	successLatency     tally.Timer
	errors             tally.Counter
	errorsNotRetryable tally.Counter
	errorsFinal        tally.Counter
	errorsLatency      tally.Timer
	retries            tally.Counter
}

// NewRetrier returns a new retrier.
func NewRetrier(opts Options) Retrier {
	scope := opts.MetricsScope()
	errorTags := struct {
		retryable    map[string]string
		notRetryable map[string]string
	}{
		map[string]string{"type": "retryable"},
		map[string]string{"type": "not-retryable"},
	}
	return &retrier{
		opts:    opts,
		sleepFn: time.Sleep,
		metrics: retrierMetrics{
			success:            scope.Counter("success"),
			successLatency:     scope.Timer("success-latency"),
			errors:             scope.Tagged(errorTags.retryable).Counter("errors"),
			errorsNotRetryable: scope.Tagged(errorTags.notRetryable).Counter("errors"),
			errorsFinal:        scope.Counter("errors-final"),
			errorsLatency:      scope.Timer("errors-latency"),
			retries:            scope.Counter("retries"),
		},
	}
}

func (r *retrier) Options() Options {
	return r.opts
}

func (r *retrier) Attempt(fn Fn) error {
	return r.attempt(nil, r.sleepFn, fn)
}

func (r *retrier) AttemptWhile(continueFn ContinueFn, fn Fn) error {
	return r.attempt(continueFn, r.sleepFn, fn)
}

func (r *retrier) AttemptContext(ctx context.Context, fn Fn) error {
	continueFn := func(int) bool {
		return ctx.Err() == nil
	}
	sleepFn := func(d time.Duration) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	err := r.attempt(continueFn, sleepFn, fn)
	if err == ErrWhileConditionFalse {
		return ctx.Err()
	}
	return err
}

func (r *retrier) attempt(continueFn ContinueFn, sleepFn sleepFn, fn Fn) error {
	attempt := 0

	if continueFn != nil && !continueFn(attempt) {
		return ErrWhileConditionFalse
	}

	start := time.Now()
	err := fn()
	duration := time.Since(start)
	attempt++
	if err == nil {
		r.metrics.successLatency.Record(duration)
		r.metrics.success.Inc(1)
		return nil
	}
	r.metrics.errorsLatency.Record(duration)
	if !r.opts.RetryableErrorFn()(err) {
		r.metrics.errorsNotRetryable.Inc(1)
		return err
	}
	r.metrics.errors.Inc(1)

	for i := 1; r.opts.Forever() || i <= r.opts.MaxRetries(); i++ {
		sleepFn(time.Duration(BackoffNanos(
			i,
			r.opts.Jitter(),
			r.opts.BackoffFactor(),
			r.opts.InitialBackoff(),
			r.opts.MaxBackoff(),
			r.opts.RngFn(),
		)))

		if continueFn != nil && !continueFn(attempt) {
			return ErrWhileConditionFalse
		}

		r.metrics.retries.Inc(1)
		start := time.Now()
		err = fn()
		duration := time.Since(start)
		attempt++
		if err == nil {
			r.metrics.successLatency.Record(duration)
			r.metrics.success.Inc(1)
			return nil
		}
		r.metrics.errorsLatency.Record(duration)
		if !r.opts.RetryableErrorFn()(err) {
			r.metrics.errorsNotRetryable.Inc(1)
			return err
		}
		r.metrics.errors.Inc(1)
	}
	r.metrics.errorsFinal.Inc(1)

	return err
}

// BackoffNanos calculates the backoff for a retry in nanoseconds.
func BackoffNanos(
	retry int,
	jitter bool,
	backoffFactor float64,
	initialBackoff time.Duration,
	maxBackoff time.Duration,
	rngFn RngFn,
) int64 {
	backoff := initialBackoff.Nanoseconds()
	if retry >= 1 {
		backoffFloat64 := float64(backoff) * math.Pow(backoffFactor, float64(retry-1))
		// math.Inf is also larger than math.MaxInt64.
		if backoffFloat64 > math.MaxInt64 {
			return maxBackoff.Nanoseconds()
		}
		backoff = int64(backoffFloat64)
	}
	// Validate the value of backoff to make sure Int63n() does not panic.
	if jitter && backoff >= 2 {
		half := backoff / 2
		backoff = half + rngFn(half)
	}
	if maxBackoff := maxBackoff.Nanoseconds(); backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
