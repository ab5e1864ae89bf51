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

// Package partition tracks the partitions served by a node, counts their
// requests and feeds request keys to their hotkey collectors.
package partition

import (
	"strconv"

	"github.com/m3db/m3hotspot/src/dbnode/rrdb"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ID identifies a partition of a table.
type ID struct {
	Table string
	Index int
}

// Partition is a replica of one table partition served by this node.
type Partition struct {
	id      ID
	primary *atomic.Bool

	readCollector  *hotkey.Collector
	writeCollector *hotkey.Collector

	readCount  *atomic.Uint64
	writeCount *atomic.Uint64
}

func newPartition(id ID, primary bool, opts hotkey.Options) (*Partition, error) {
	iOpts := opts.InstrumentOptions()
	scope := iOpts.MetricsScope().Tagged(map[string]string{
		"table":     id.Table,
		"partition": strconv.Itoa(id.Index),
	})
	opts = opts.SetInstrumentOptions(iOpts.
		SetMetricsScope(scope).
		SetLogger(iOpts.Logger().With(
			zap.String("table", id.Table),
			zap.Int("partition", id.Index))))

	readCollector, err := hotkey.NewCollector(hotkey.Read, opts)
	if err != nil {
		return nil, err
	}
	writeCollector, err := hotkey.NewCollector(hotkey.Write, opts)
	if err != nil {
		return nil, err
	}
	return &Partition{
		id:             id,
		primary:        atomic.NewBool(primary),
		readCollector:  readCollector,
		writeCollector: writeCollector,
		readCount:      atomic.NewUint64(0),
		writeCount:     atomic.NewUint64(0),
	}, nil
}

// ID returns the partition ID.
func (p *Partition) ID() ID {
	return p.id
}

// IsPrimary returns whether this replica is the partition primary.
func (p *Partition) IsPrimary() bool {
	return p.primary.Load()
}

// SetPrimary sets whether this replica is the partition primary.
func (p *Partition) SetPrimary(value bool) {
	p.primary.Store(value)
}

// Collector returns the hotkey collector for a traffic direction.
func (p *Partition) Collector(direction hotkey.Direction) *hotkey.Collector {
	if direction == hotkey.Read {
		return p.readCollector
	}
	return p.writeCollector
}

// OnWrite counts a write batch and captures the keys it touches.
func (p *Partition) OnWrite(requests []rrdb.WriteRequest) {
	p.writeCount.Add(uint64(len(requests)))
	for _, req := range requests {
		if hashKey, weight, ok := hotkey.WriteKey(req); ok {
			p.writeCollector.Capture(hashKey, weight)
		}
	}
}

// OnRead counts a read and captures its key.
func (p *Partition) OnRead(req rrdb.ReadRequest) {
	p.readCount.Inc()
	if hashKey, ok := hotkey.ReadKey(req); ok {
		p.readCollector.Capture(hashKey, 1)
	}
}

// Stat returns the cumulative request counters of the partition.
func (p *Partition) Stat() Stat {
	return Stat{
		Table:      p.id.Table,
		Partition:  p.id.Index,
		Primary:    p.IsPrimary(),
		ReadCount:  p.readCount.Load(),
		WriteCount: p.writeCount.Load(),
	}
}

func (p *Partition) analyse() {
	p.readCollector.Analyse()
	p.writeCollector.Analyse()
}
