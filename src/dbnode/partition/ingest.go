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

package partition

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3db/m3hotspot/src/dbnode/rrdb"

	"go.uber.org/zap"
)

var errBatchRequired = errors.New("request batch is required")

// Write decodes a batch of encoded write requests and applies it to a
// partition replica. Requests that fail to decode are rejected and skipped.
func (r *Registry) Write(ctx context.Context, batch *Batch) (*BatchResult, error) {
	p, err := r.batchTarget(batch)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	requests := make([]rrdb.WriteRequest, 0, len(batch.Requests))
	for _, body := range batch.Requests {
		req, err := rrdb.DecodeWriteRequest(body)
		if err != nil {
			result.Rejected++
			r.logger.Debug("rejected write request", zap.Error(err))
			continue
		}
		requests = append(requests, req)
	}
	p.OnWrite(requests)
	result.Accepted = len(requests)
	r.metrics.rejected.Inc(int64(result.Rejected))
	return result, nil
}

// Read decodes a batch of encoded read requests and applies each to a
// partition replica.
func (r *Registry) Read(ctx context.Context, batch *Batch) (*BatchResult, error) {
	p, err := r.batchTarget(batch)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, body := range batch.Requests {
		req, err := rrdb.DecodeReadRequest(body)
		if err != nil {
			result.Rejected++
			r.logger.Debug("rejected read request", zap.Error(err))
			continue
		}
		p.OnRead(req)
		result.Accepted++
	}
	r.metrics.rejected.Inc(int64(result.Rejected))
	return result, nil
}

func (r *Registry) batchTarget(batch *Batch) (*Partition, error) {
	if batch == nil {
		return nil, errBatchRequired
	}
	p, ok := r.Get(batch.Table, batch.Partition)
	if !ok {
		return nil, fmt.Errorf("%v: %s.%d", errUnknownPartition, batch.Table, batch.Partition)
	}
	return p, nil
}
