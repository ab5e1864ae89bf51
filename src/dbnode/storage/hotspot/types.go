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

// Package hotspot scores the partitions of each table by their QPS relative
// to the rest of the table and asks the primary replica of a repeatedly hot
// partition to start hotkey detection.
package hotspot

import (
	"context"

	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
)

// PartitionQPS is the aggregated QPS of one partition in one tick.
type PartitionQPS struct {
	ReadQPS  float64
	WriteQPS float64
}

// Snapshot holds the QPS of every partition of a table, ordered by
// partition index.
type Snapshot []PartitionQPS

// PartitionScore is the hotspot score of one partition.
type PartitionScore struct {
	Read  int64
	Write int64
}

// Policy scores partitions from a table's QPS history.
type Policy interface {
	// Analysis writes a score for every partition into scores, which has one
	// entry per partition and is zeroed by the caller. The newest snapshot
	// is the last entry of history. It returns false when there was not
	// enough data to score.
	Analysis(history []Snapshot, scores []PartitionScore) bool
}

// Notifier asks a partition's primary replica to start hotkey detection.
type Notifier interface {
	// NotifyReplica schedules a start command and never blocks.
	NotifyReplica(table string, partition int, direction hotkey.Direction)
}

// ControlClient sends hotkey control commands to a node.
type ControlClient interface {
	// DetectHotkey sends a hotkey detect request to the node at address.
	DetectHotkey(ctx context.Context, address string, req *hotkey.DetectRequest) (*hotkey.DetectResponse, error)
}

// TableStats is the QPS snapshot of every table, keyed by table name.
type TableStats map[string]Snapshot

// StatsSource collects per-partition QPS of every table.
type StatsSource interface {
	// Collect returns the current QPS of every partition of every table.
	Collect(ctx context.Context) (TableStats, error)
}
