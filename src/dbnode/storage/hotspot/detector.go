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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

type detectorState int

const (
	detectorNotOpen detectorState = iota
	detectorOpen
	detectorClosed
)

var (
	errDetectorAlreadyOpen = errors.New("hotspot detector is already open")
	errDetectorNotOpen     = errors.New("hotspot detector is not open")
)

type detectorMetrics struct {
	scope         tally.Scope
	tables        tally.Gauge
	ticks         tally.Counter
	collectErrors tally.Counter
	aggregateErrs tally.Counter
	tickDuration  tally.Timer
}

func newDetectorMetrics(scope tally.Scope) detectorMetrics {
	return detectorMetrics{
		scope:         scope,
		tables:        scope.Gauge("tables"),
		ticks:         scope.Counter("ticks"),
		collectErrors: scope.Counter("collect-errors"),
		aggregateErrs: scope.Counter("aggregate-errors"),
		tickDuration:  scope.Timer("tick-duration"),
	}
}

func (m detectorMetrics) reportTableQPS(table string, snapshot Snapshot) {
	var read, write float64
	for _, qps := range snapshot {
		read += qps.ReadQPS
		write += qps.WriteQPS
	}
	tableScope := m.scope.Tagged(map[string]string{"table": table})
	tableScope.Gauge("read-qps").Update(read)
	tableScope.Gauge("write-qps").Update(write)
}

// Detector runs the stat tick: it collects the QPS of every table and feeds
// one Calculator per table.
type Detector struct {
	sync.Mutex

	source   StatsSource
	notifier Notifier
	opts     Options
	logger   *zap.Logger
	metrics  detectorMetrics

	calcLock    sync.RWMutex
	calculators map[string]*Calculator

	state    detectorState
	cancelFn context.CancelFunc
	wg       sync.WaitGroup
}

// NewDetector returns a detector reading QPS from source.
func NewDetector(source StatsSource, notifier Notifier, opts Options) (*Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	iOpts := opts.InstrumentOptions()
	logger := iOpts.Logger()
	if opts.Policy() == nil {
		logger.Warn("no hotspot policy configured, hotspot detection is disabled")
	}
	return &Detector{
		source:      source,
		notifier:    notifier,
		opts:        opts,
		logger:      logger,
		metrics:     newDetectorMetrics(iOpts.MetricsScope().SubScope("hotspot")),
		calculators: make(map[string]*Calculator),
	}, nil
}

// Open starts the stat tick loop.
func (d *Detector) Open() error {
	d.Lock()
	defer d.Unlock()

	if d.state != detectorNotOpen {
		return errDetectorAlreadyOpen
	}
	d.state = detectorOpen

	ctx, cancel := context.WithCancel(context.Background())
	d.cancelFn = cancel
	d.wg.Add(1)
	go d.tickLoop(ctx)
	return nil
}

// Close stops the stat tick loop.
func (d *Detector) Close() error {
	d.Lock()
	if d.state != detectorOpen {
		d.Unlock()
		return errDetectorNotOpen
	}
	d.state = detectorClosed
	d.cancelFn()
	d.Unlock()

	d.wg.Wait()
	return nil
}

func (d *Detector) tickLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.opts.StatInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick collects the QPS of every table and runs one calculator pass per
// table. Errors are logged and never returned.
func (d *Detector) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		d.metrics.tickDuration.Record(time.Since(start))
	}()
	d.metrics.ticks.Inc(1)

	stats, err := d.source.Collect(ctx)
	if err != nil {
		d.metrics.collectErrors.Inc(1)
		d.logger.Error("could not collect partition stats", zap.Error(err))
		return
	}

	d.calcLock.Lock()
	defer d.calcLock.Unlock()

	for table, snapshot := range stats {
		d.metrics.reportTableQPS(table, snapshot)
		calc, err := d.calculator(table, len(snapshot))
		if err != nil {
			d.logger.Error("could not create hotspot calculator",
				zap.String("table", table), zap.Error(err))
			continue
		}
		if err := calc.Aggregate(snapshot); err != nil {
			d.metrics.aggregateErrs.Inc(1)
			d.logger.Error("could not aggregate partition stats",
				zap.String("table", table), zap.Error(err))
			continue
		}
		calc.StartAlg()
	}

	for table := range d.calculators {
		if _, ok := stats[table]; !ok {
			d.logger.Info("table no longer reported, dropping hotspot calculator",
				zap.String("table", table))
			delete(d.calculators, table)
		}
	}
	d.metrics.tables.Update(float64(len(d.calculators)))
}

// calculator returns the calculator of a table, replacing it when the
// partition count of the table changed. It must be called with calcLock held.
func (d *Detector) calculator(table string, partitionCount int) (*Calculator, error) {
	if calc, ok := d.calculators[table]; ok {
		if calc.PartitionCount() == partitionCount {
			return calc, nil
		}
		d.logger.Info("table partition count changed, resetting hotspot history",
			zap.String("table", table),
			zap.Int("from", calc.PartitionCount()),
			zap.Int("to", partitionCount))
		delete(d.calculators, table)
	}
	calc, err := NewCalculator(table, partitionCount, d.notifier, d.opts)
	if err != nil {
		return nil, err
	}
	d.calculators[table] = calc
	return calc, nil
}

// TableStatus is the hotspot state of one table.
type TableStatus struct {
	PartitionCount int
	HistoryLen     int
	Scores         []PartitionScore
}

// Table returns the hotspot state of a table, if it is tracked.
func (d *Detector) Table(table string) (TableStatus, bool) {
	d.calcLock.RLock()
	defer d.calcLock.RUnlock()

	calc, ok := d.calculators[table]
	if !ok {
		return TableStatus{}, false
	}
	return TableStatus{
		PartitionCount: calc.PartitionCount(),
		HistoryLen:     calc.HistoryLen(),
		Scores:         calc.Scores(),
	}, true
}
