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

// Package retry provides retry functionality with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/uber-go/tally/v4"
)

// Fn is a function that can be retried.
type Fn func() error

// ContinueFn is a function that returns whether to continue attempting an operation.
type ContinueFn func(attempt int) bool

// IsRetryableFn returns whether an error should be retried.
type IsRetryableFn func(err error) bool

// RngFn returns a non-negative pseudo-random number in [0,n).
type RngFn func(n int64) int64

// Retrier is a executor that can retry attempts on executing methods.
type Retrier interface {
	// Options returns the options used to construct the retrier.
	Options() Options

	// Attempt will attempt to perform a function with retries.
	Attempt(fn Fn) error

	// AttemptWhile will attempt to perform a function with retries while
	// the continue function returns true.
	AttemptWhile(continueFn ContinueFn, fn Fn) error

	// AttemptContext will attempt to perform a function with retries until
	// the context is done. A done context also cuts the backoff short, the
	// context error is then returned.
	AttemptContext(ctx context.Context, fn Fn) error
}

// Options is a set of retry options.
type Options interface {
	// SetMetricsScope sets the metrics scope.
	SetMetricsScope(value tally.Scope) Options

	// MetricsScope returns the metrics scope.
	MetricsScope() tally.Scope

	// SetInitialBackoff sets the initial delay duration.
	SetInitialBackoff(value time.Duration) Options

	// InitialBackoff gets the initial delay duration.
	InitialBackoff() time.Duration

	// SetBackoffFactor sets the backoff factor multiplier when moving to next attempt.
	SetBackoffFactor(value float64) Options

	// BackoffFactor gets the backoff factor multiplier when moving to next attempt.
	BackoffFactor() float64

	// SetMaxBackoff sets the maximum backoff delay.
	SetMaxBackoff(value time.Duration) Options

	// MaxBackoff returns the maximum backoff delay.
	MaxBackoff() time.Duration

	// SetMaxRetries sets the maximum retry attempts.
	SetMaxRetries(value int) Options

	// MaxRetries gets the maximum retry attempts.
	MaxRetries() int

	// SetForever sets whether to retry forever until either success or the
	// continue function returns false. MaxRetries is ignored when set.
	SetForever(value bool) Options

	// Forever returns whether to retry forever.
	Forever() bool

	// SetJitter sets whether to jitter between the current backoff and the next
	// backoff when moving to next attempt.
	SetJitter(value bool) Options

	// Jitter gets whether to jitter between the current backoff and the next
	// backoff when moving to next attempt.
	Jitter() bool

	// SetRngFn sets the random number generator used for jittering.
	SetRngFn(value RngFn) Options

	// RngFn returns the random number generator used for jittering.
	RngFn() RngFn

	// SetRetryableErrorFn sets the function that decides whether an error is retryable.
	SetRetryableErrorFn(value IsRetryableFn) Options

	// RetryableErrorFn returns the function that decides whether an error is retryable.
	RetryableErrorFn() IsRetryableFn
}
