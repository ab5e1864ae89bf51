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

package client

import (
	"errors"
	"net/http"
	"time"

	"github.com/m3db/m3hotspot/src/x/instrument"
)

const defaultRequestTimeout = 10 * time.Second

var (
	errRequestTimeoutNotPositive = errors.New("request timeout must be positive")
	errNoHTTPClient              = errors.New("http client is required")
)

// Options are the options of a node client.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options

	// SetRequestTimeout sets the timeout applied to requests whose context
	// has no deadline.
	SetRequestTimeout(value time.Duration) Options

	// RequestTimeout returns the request timeout.
	RequestTimeout() time.Duration

	// SetHTTPClient sets the HTTP client.
	SetHTTPClient(value *http.Client) Options

	// HTTPClient returns the HTTP client.
	HTTPClient() *http.Client
}

type options struct {
	iOpts          instrument.Options
	requestTimeout time.Duration
	httpClient     *http.Client
}

// NewOptions creates new client options.
func NewOptions() Options {
	return &options{
		iOpts:          instrument.NewOptions(),
		requestTimeout: defaultRequestTimeout,
		httpClient:     &http.Client{},
	}
}

func (o *options) Validate() error {
	if o.requestTimeout <= 0 {
		return errRequestTimeoutNotPositive
	}
	if o.httpClient == nil {
		return errNoHTTPClient
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

func (o *options) SetRequestTimeout(value time.Duration) Options {
	opts := *o
	opts.requestTimeout = value
	return &opts
}

func (o *options) RequestTimeout() time.Duration {
	return o.requestTimeout
}

func (o *options) SetHTTPClient(value *http.Client) Options {
	opts := *o
	opts.httpClient = value
	return &opts
}

func (o *options) HTTPClient() *http.Client {
	return o.httpClient
}
