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

package node

import (
	"context"

	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
)

// Service is the hotkey control and stats API of a node.
type Service interface {
	// DetectHotkey runs a hotkey detection control command.
	DetectHotkey(ctx context.Context, req *hotkey.DetectRequest) (*hotkey.DetectResponse, error)

	// PartitionStats returns the request counters of every partition.
	PartitionStats(ctx context.Context) (*partition.StatsResult, error)

	// Write applies a batch of encoded write requests to a partition.
	Write(ctx context.Context, batch *partition.Batch) (*partition.BatchResult, error)

	// Read applies a batch of encoded read requests to a partition.
	Read(ctx context.Context, batch *partition.Batch) (*partition.BatchResult, error)
}

// service narrows a Service to the methods served over HTTP.
type service struct {
	svc Service
}

// NewService returns the HTTP JSON service of a node.
func NewService(svc Service) interface{} {
	return &service{svc: svc}
}

func (s *service) DetectHotkey(ctx context.Context, req *hotkey.DetectRequest) (*hotkey.DetectResponse, error) {
	return s.svc.DetectHotkey(ctx, req)
}

func (s *service) PartitionStats(ctx context.Context) (*partition.StatsResult, error) {
	return s.svc.PartitionStats(ctx)
}

func (s *service) Write(ctx context.Context, batch *partition.Batch) (*partition.BatchResult, error) {
	return s.svc.Write(ctx, batch)
}

func (s *service) Read(ctx context.Context, batch *partition.Batch) (*partition.BatchResult, error) {
	return s.svc.Read(ctx, batch)
}
