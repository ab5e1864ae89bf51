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
	"fmt"
	"strconv"

	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"

	"github.com/uber-go/tally/v4"
)

var (
	errInvalidPartitionCount = errors.New("snapshot partition count does not match table")
	errNoPartitions          = errors.New("table must have at least one partition")
)

type calculatorMetrics struct {
	readScores    []tally.Gauge
	writeScores   []tally.Gauge
	notifications tally.Counter
	skipped       tally.Counter
}

func newCalculatorMetrics(scope tally.Scope, table string, partitionCount int) calculatorMetrics {
	tableScope := scope.Tagged(map[string]string{"table": table})
	m := calculatorMetrics{
		readScores:    make([]tally.Gauge, partitionCount),
		writeScores:   make([]tally.Gauge, partitionCount),
		notifications: tableScope.Counter("notifications"),
		skipped:       tableScope.Counter("analysis-skipped"),
	}
	for p := 0; p < partitionCount; p++ {
		partitionScope := tableScope.Tagged(map[string]string{"partition": strconv.Itoa(p)})
		m.readScores[p] = partitionScope.Gauge("read-score")
		m.writeScores[p] = partitionScope.Gauge("write-score")
	}
	return m
}

// Calculator keeps the QPS history of one table, scores its partitions on
// every tick and notifies the primary of partitions that stay hot. It is
// driven by a single goroutine and is not safe for concurrent use.
type Calculator struct {
	table          string
	partitionCount int
	opts           Options
	notifier       Notifier
	metrics        calculatorMetrics

	history            []Snapshot
	scores             []PartitionScore
	overThresholdRead  []int
	overThresholdWrite []int
}

// NewCalculator returns a calculator for a table with a fixed partition count.
func NewCalculator(
	table string,
	partitionCount int,
	notifier Notifier,
	opts Options,
) (*Calculator, error) {
	if partitionCount <= 0 {
		return nil, errNoPartitions
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	scope := opts.InstrumentOptions().MetricsScope().SubScope("hotspot")
	return &Calculator{
		table:              table,
		partitionCount:     partitionCount,
		opts:               opts,
		notifier:           notifier,
		metrics:            newCalculatorMetrics(scope, table, partitionCount),
		history:            make([]Snapshot, 0, opts.HistorySize()),
		scores:             make([]PartitionScore, partitionCount),
		overThresholdRead:  make([]int, partitionCount),
		overThresholdWrite: make([]int, partitionCount),
	}, nil
}

// PartitionCount returns the number of partitions of the table.
func (c *Calculator) PartitionCount() int {
	return c.partitionCount
}

// Aggregate appends a snapshot to the history, evicting the oldest snapshot
// when the history is full.
func (c *Calculator) Aggregate(snapshot Snapshot) error {
	if len(snapshot) != c.partitionCount {
		return fmt.Errorf("%v: table %s has %d partitions, snapshot has %d",
			errInvalidPartitionCount, c.table, c.partitionCount, len(snapshot))
	}
	if len(c.history) == c.opts.HistorySize() {
		copy(c.history, c.history[1:])
		c.history = c.history[:len(c.history)-1]
	}
	c.history = append(c.history, append(Snapshot(nil), snapshot...))
	return nil
}

// StartAlg scores every partition and notifies the primary of a partition
// once it has been hot for more than the occurrence threshold of
// consecutive ticks.
func (c *Calculator) StartAlg() {
	for p := range c.scores {
		c.scores[p] = PartitionScore{}
	}
	if policy := c.opts.Policy(); policy == nil || !policy.Analysis(c.history, c.scores) {
		c.metrics.skipped.Inc(1)
	}

	for p, score := range c.scores {
		c.metrics.readScores[p].Update(float64(score.Read))
		c.metrics.writeScores[p].Update(float64(score.Write))
		if !c.opts.HotkeyAutoDetect() {
			continue
		}
		c.overThresholdRead[p] = c.checkHot(p, hotkey.Read, score.Read, c.overThresholdRead[p])
		c.overThresholdWrite[p] = c.checkHot(p, hotkey.Write, score.Write, c.overThresholdWrite[p])
	}
}

// checkHot returns the updated consecutive hot tick count of a partition.
func (c *Calculator) checkHot(
	partition int,
	direction hotkey.Direction,
	score int64,
	count int,
) int {
	if score < c.opts.HotPartitionThreshold() {
		return 0
	}
	count++
	if count <= c.opts.OccurrenceThreshold() {
		return count
	}
	c.notifier.NotifyReplica(c.table, partition, direction)
	c.metrics.notifications.Inc(1)
	return 0
}

// Scores returns a copy of the scores of the last tick.
func (c *Calculator) Scores() []PartitionScore {
	return append([]PartitionScore(nil), c.scores...)
}

// HistoryLen returns the number of snapshots held.
func (c *Calculator) HistoryLen() int {
	return len(c.history)
}
