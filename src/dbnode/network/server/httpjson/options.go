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

package httpjson

import (
	"context"
	"errors"
	"time"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultRequestTimeout  = 30 * time.Second
	defaultMaxRequestBytes = 1 << 20
)

var (
	errReadTimeoutNotPositive     = errors.New("http read timeout must be positive")
	errWriteTimeoutNotPositive    = errors.New("http write timeout must be positive")
	errRequestTimeoutNotPositive  = errors.New("method call timeout must be positive")
	errMaxRequestBytesNotPositive = errors.New("max request body size must be positive")
)

// ContextFn derives the context passed to a service method from the
// request context, the method name and the first value of each header.
type ContextFn func(ctx context.Context, method string, headers map[string]string) context.Context

// PostResponseFn is called once a service method returns, with its result
// or nil.
type PostResponseFn func(ctx context.Context, method string, response interface{})

// ServerOptions configures the JSON method server. Setters return a copy.
type ServerOptions interface {
	// Validate checks the limits are usable.
	Validate() error

	// SetReadTimeout bounds reading a whole request, body included.
	SetReadTimeout(value time.Duration) ServerOptions

	ReadTimeout() time.Duration

	// SetWriteTimeout bounds writing a response.
	SetWriteTimeout(value time.Duration) ServerOptions

	WriteTimeout() time.Duration

	// SetRequestTimeout sets the deadline of the context a method is
	// called with.
	SetRequestTimeout(value time.Duration) ServerOptions

	RequestTimeout() time.Duration

	// SetMaxRequestBytes caps the size of a JSON request body. Larger bodies
	// are rejected as invalid params.
	SetMaxRequestBytes(value int64) ServerOptions

	MaxRequestBytes() int64

	// SetContextFn installs a hook deriving each method's context, nil for
	// none.
	SetContextFn(value ContextFn) ServerOptions

	ContextFn() ContextFn

	// SetPostResponseFn installs a hook run after each method call, nil for
	// none.
	SetPostResponseFn(value PostResponseFn) ServerOptions

	PostResponseFn() PostResponseFn
}

type serverOptions struct {
	readTimeout     time.Duration
	writeTimeout    time.Duration
	requestTimeout  time.Duration
	maxRequestBytes int64
	contextFn       ContextFn
	postResponseFn  PostResponseFn
}

// NewServerOptions returns server options with default timeouts and body
// limit and no hooks.
func NewServerOptions() ServerOptions {
	return &serverOptions{
		readTimeout:     defaultReadTimeout,
		writeTimeout:    defaultWriteTimeout,
		requestTimeout:  defaultRequestTimeout,
		maxRequestBytes: defaultMaxRequestBytes,
	}
}

func (o *serverOptions) Validate() error {
	switch {
	case o.readTimeout <= 0:
		return errReadTimeoutNotPositive
	case o.writeTimeout <= 0:
		return errWriteTimeoutNotPositive
	case o.requestTimeout <= 0:
		return errRequestTimeoutNotPositive
	case o.maxRequestBytes <= 0:
		return errMaxRequestBytesNotPositive
	}
	return nil
}

func (o *serverOptions) SetReadTimeout(value time.Duration) ServerOptions {
	opts := *o
	opts.readTimeout = value
	return &opts
}

func (o *serverOptions) ReadTimeout() time.Duration {
	return o.readTimeout
}

func (o *serverOptions) SetWriteTimeout(value time.Duration) ServerOptions {
	opts := *o
	opts.writeTimeout = value
	return &opts
}

func (o *serverOptions) WriteTimeout() time.Duration {
	return o.writeTimeout
}

func (o *serverOptions) SetRequestTimeout(value time.Duration) ServerOptions {
	opts := *o
	opts.requestTimeout = value
	return &opts
}

func (o *serverOptions) RequestTimeout() time.Duration {
	return o.requestTimeout
}

func (o *serverOptions) SetMaxRequestBytes(value int64) ServerOptions {
	opts := *o
	opts.maxRequestBytes = value
	return &opts
}

func (o *serverOptions) MaxRequestBytes() int64 {
	return o.maxRequestBytes
}

func (o *serverOptions) SetContextFn(value ContextFn) ServerOptions {
	opts := *o
	opts.contextFn = value
	return &opts
}

func (o *serverOptions) ContextFn() ContextFn {
	return o.contextFn
}

func (o *serverOptions) SetPostResponseFn(value PostResponseFn) ServerOptions {
	opts := *o
	opts.postResponseFn = value
	return &opts
}

func (o *serverOptions) PostResponseFn() PostResponseFn {
	return o.postResponseFn
}
