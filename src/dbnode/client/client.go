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

// Package client calls the HTTP JSON API of storage nodes.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/uber-go/tally/v4"
)

const (
	detectHotkeyPath   = "/detecthotkey"
	partitionStatsPath = "/partitionstats"
	writePath          = "/write"
	readPath           = "/read"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorResult struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type methodMetrics struct {
	success tally.Counter
	errors  tally.Counter
}

func newMethodMetrics(scope tally.Scope, method string) methodMetrics {
	scope = scope.Tagged(map[string]string{"method": method})
	return methodMetrics{
		success: scope.Counter("success"),
		errors:  scope.Counter("errors"),
	}
}

func (m methodMetrics) report(err error) {
	if err != nil {
		m.errors.Inc(1)
		return
	}
	m.success.Inc(1)
}

// Client sends hotkey control commands to nodes and pulls their partition
// stats. It is safe for concurrent use.
type Client struct {
	opts           Options
	httpClient     *http.Client
	detectHotkey   methodMetrics
	partitionStats methodMetrics
	write          methodMetrics
	read           methodMetrics
}

// NewClient returns a new node client.
func NewClient(opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	scope := opts.InstrumentOptions().MetricsScope().SubScope("client")
	return &Client{
		opts:           opts,
		httpClient:     opts.HTTPClient(),
		detectHotkey:   newMethodMetrics(scope, "detect-hotkey"),
		partitionStats: newMethodMetrics(scope, "partition-stats"),
		write:          newMethodMetrics(scope, "write"),
		read:           newMethodMetrics(scope, "read"),
	}, nil
}

// DetectHotkey sends a hotkey detect request to the node at address.
func (c *Client) DetectHotkey(
	ctx context.Context,
	address string,
	req *hotkey.DetectRequest,
) (*hotkey.DetectResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode detect hotkey request")
	}
	var resp hotkey.DetectResponse
	err = c.do(ctx, http.MethodPost, address, detectHotkeyPath, body, &resp)
	c.detectHotkey.report(err)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PartitionStats returns the partition counters of the node at address.
func (c *Client) PartitionStats(ctx context.Context, address string) (*partition.StatsResult, error) {
	var result partition.StatsResult
	err := c.do(ctx, http.MethodGet, address, partitionStatsPath, nil, &result)
	c.partitionStats.report(err)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Write sends a batch of encoded write requests to the node at address.
func (c *Client) Write(ctx context.Context, address string, batch *partition.Batch) (*partition.BatchResult, error) {
	result, err := c.sendBatch(ctx, address, writePath, batch)
	c.write.report(err)
	return result, err
}

// Read sends a batch of encoded read requests to the node at address.
func (c *Client) Read(ctx context.Context, address string, batch *partition.Batch) (*partition.BatchResult, error) {
	result, err := c.sendBatch(ctx, address, readPath, batch)
	c.read.report(err)
	return result, err
}

func (c *Client) sendBatch(
	ctx context.Context,
	address, path string,
	batch *partition.Batch,
) (*partition.BatchResult, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, errors.Wrap(err, "encode request batch")
	}
	var result partition.BatchResult
	if err := c.do(ctx, http.MethodPost, address, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(
	ctx context.Context,
	method, address, path string,
	body []byte,
	result interface{},
) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout())
		defer cancel()
	}

	url := nodeURL(address, path)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrapf(err, "create request %s %s", method, url)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %s %s", method, url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read response %s %s", method, url)
	}
	if resp.StatusCode != http.StatusOK {
		var errResult errorResult
		if err := json.Unmarshal(data, &errResult); err != nil || errResult.Error.Message == "" {
			return errors.Errorf("request %s %s: status %d", method, url, resp.StatusCode)
		}
		return errors.Errorf("request %s %s: status %d: %s",
			method, url, resp.StatusCode, errResult.Error.Message)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return errors.Wrapf(err, "decode response %s %s", method, url)
	}
	return nil
}

func nodeURL(address, path string) string {
	if strings.Contains(address, "://") {
		return strings.TrimSuffix(address, "/") + path
	}
	return "http://" + address + path
}
