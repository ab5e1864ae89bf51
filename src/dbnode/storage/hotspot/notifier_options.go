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
	"errors"
	"time"

	"github.com/m3db/m3hotspot/src/x/instrument"
	"github.com/m3db/m3hotspot/src/x/retry"
)

const (
	defaultNotifyConcurrency    = 8
	defaultNotifyRequestTimeout = 5 * time.Second
	defaultNotifyInitialBackoff = time.Second
	defaultNotifyMaxBackoff     = 30 * time.Second
)

var (
	errNotifyConcurrencyNotPositive = errors.New("notify concurrency must be positive")
	errNotifyTimeoutNotPositive     = errors.New("notify request timeout must be positive")
)

// NotifierOptions are the options for a replica notifier.
type NotifierOptions interface {
	// Validate validates the options.
	Validate() error

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) NotifierOptions

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options

	// SetConcurrency sets the number of notifications in flight at once.
	SetConcurrency(value int) NotifierOptions

	// Concurrency returns the notify concurrency.
	Concurrency() int

	// SetRequestTimeout sets the timeout of a single start command.
	SetRequestTimeout(value time.Duration) NotifierOptions

	// RequestTimeout returns the request timeout.
	RequestTimeout() time.Duration

	// SetRetryOptions sets the options for retrying timed out commands.
	SetRetryOptions(value retry.Options) NotifierOptions

	// RetryOptions returns the retry options.
	RetryOptions() retry.Options
}

type notifierOptions struct {
	iOpts          instrument.Options
	concurrency    int
	requestTimeout time.Duration
	retryOpts      retry.Options
}

// NewNotifierOptions creates new notifier options. Timed out commands are
// retried until they succeed or the notifier is closed.
func NewNotifierOptions() NotifierOptions {
	return &notifierOptions{
		iOpts:          instrument.NewOptions(),
		concurrency:    defaultNotifyConcurrency,
		requestTimeout: defaultNotifyRequestTimeout,
		retryOpts: retry.NewOptions().
			SetInitialBackoff(defaultNotifyInitialBackoff).
			SetMaxBackoff(defaultNotifyMaxBackoff).
			SetForever(true),
	}
}

func (o *notifierOptions) Validate() error {
	if o.concurrency <= 0 {
		return errNotifyConcurrencyNotPositive
	}
	if o.requestTimeout <= 0 {
		return errNotifyTimeoutNotPositive
	}
	return nil
}

func (o *notifierOptions) SetInstrumentOptions(value instrument.Options) NotifierOptions {
	opts := *o
	opts.iOpts = value
	return &opts
}

func (o *notifierOptions) InstrumentOptions() instrument.Options {
	return o.iOpts
}

func (o *notifierOptions) SetConcurrency(value int) NotifierOptions {
	opts := *o
	opts.concurrency = value
	return &opts
}

func (o *notifierOptions) Concurrency() int {
	return o.concurrency
}

func (o *notifierOptions) SetRequestTimeout(value time.Duration) NotifierOptions {
	opts := *o
	opts.requestTimeout = value
	return &opts
}

func (o *notifierOptions) RequestTimeout() time.Duration {
	return o.requestTimeout
}

func (o *notifierOptions) SetRetryOptions(value retry.Options) NotifierOptions {
	opts := *o
	opts.retryOpts = value
	return &opts
}

func (o *notifierOptions) RetryOptions() retry.Options {
	return o.retryOpts
}
