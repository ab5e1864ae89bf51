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

package instrument

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
)

// MetricsConfiguration configures options for emitting metrics.
type MetricsConfiguration struct {
	// Prefix for all metrics emitted by the root scope.
	Prefix string `yaml:"prefix"`

	// Common tags added to every metric.
	Tags map[string]string `yaml:"tags"`

	// Reporting interval of the root scope.
	ReportInterval time.Duration `yaml:"reportInterval"`

	// Whether to register go runtime and process collectors.
	ExtendedMetrics bool `yaml:"extended"`
}

// ReportIntervalOrDefault returns the report interval or the default.
func (c MetricsConfiguration) ReportIntervalOrDefault() time.Duration {
	if c.ReportInterval <= 0 {
		return defaultReportingInterval
	}
	return c.ReportInterval
}

// NewRootScopeAndHandler creates a new root scope reporting to a dedicated
// prometheus registry and returns the HTTP handler serving that registry.
func (c MetricsConfiguration) NewRootScopeAndHandler() (tally.Scope, io.Closer, http.Handler, error) {
	registry := prometheus.NewRegistry()
	if c.ExtendedMetrics {
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return nil, nil, nil, err
		}
		err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err != nil {
			return nil, nil, nil, err
		}
	}

	reporter := promreporter.NewReporter(promreporter.Options{
		Registerer: registry,
	})
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:          c.Prefix,
		Tags:            c.Tags,
		CachedReporter:  reporter,
		Separator:       promreporter.DefaultSeparator,
		SanitizeOptions: &promreporter.DefaultSanitizerOpts,
	}, c.ReportIntervalOrDefault())

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return scope, closer, handler, nil
}
