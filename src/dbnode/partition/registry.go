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
	"sort"
	"sync"
	"time"

	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
	"github.com/m3db/m3hotspot/src/x/clock"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

type registryState int

const (
	registryNotOpen registryState = iota
	registryOpen
	registryClosed
)

var (
	errRegistryAlreadyOpen   = errors.New("partition registry is already open")
	errRegistryNotOpen       = errors.New("partition registry is not open")
	errPartitionExists       = errors.New("partition already exists")
	errDetectRequestRequired = errors.New("detect hotkey request is required")
	errUnknownPartition      = errors.New("partition is not served by this node")
)

type registryMetrics struct {
	partitions      tally.Gauge
	analyseDuration tally.Timer
	detectRequests  tally.Counter
	unknownTargets  tally.Counter
	rejected        tally.Counter
}

func newRegistryMetrics(scope tally.Scope) registryMetrics {
	return registryMetrics{
		partitions:      scope.Gauge("partitions"),
		analyseDuration: scope.Timer("analyse-duration"),
		detectRequests:  scope.Counter("detect-requests"),
		unknownTargets:  scope.Counter("detect-unknown-partition"),
		rejected:        scope.Counter("rejected-requests"),
	}
}

// Registry holds the partitions served by a node and periodically analyses
// their hotkey collectors.
type Registry struct {
	sync.RWMutex

	opts       Options
	nowFn      clock.NowFn
	logger     *zap.Logger
	metrics    registryMetrics
	state      registryState
	partitions map[ID]*Partition
	closedCh   chan struct{}
	wg         sync.WaitGroup
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options) (*Registry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	iOpts := opts.InstrumentOptions()
	return &Registry{
		opts:       opts,
		nowFn:      opts.HotkeyOptions().ClockOptions().NowFn(),
		logger:     iOpts.Logger(),
		metrics:    newRegistryMetrics(iOpts.MetricsScope().SubScope("partition-registry")),
		partitions: make(map[ID]*Partition),
		closedCh:   make(chan struct{}),
	}, nil
}

// Add creates a partition replica and its collectors.
func (r *Registry) Add(table string, index int, primary bool) (*Partition, error) {
	id := ID{Table: table, Index: index}
	r.Lock()
	defer r.Unlock()

	if _, ok := r.partitions[id]; ok {
		return nil, fmt.Errorf("%v: %s.%d", errPartitionExists, table, index)
	}
	p, err := newPartition(id, primary, r.opts.HotkeyOptions())
	if err != nil {
		return nil, err
	}
	r.partitions[id] = p
	r.metrics.partitions.Update(float64(len(r.partitions)))
	return p, nil
}

// Remove drops a partition replica.
func (r *Registry) Remove(table string, index int) {
	r.Lock()
	delete(r.partitions, ID{Table: table, Index: index})
	r.metrics.partitions.Update(float64(len(r.partitions)))
	r.Unlock()
}

// Get returns the partition replica, if served.
func (r *Registry) Get(table string, index int) (*Partition, bool) {
	r.RLock()
	p, ok := r.partitions[ID{Table: table, Index: index}]
	r.RUnlock()
	return p, ok
}

// Open starts the analyse loop.
func (r *Registry) Open() error {
	r.Lock()
	defer r.Unlock()

	if r.state != registryNotOpen {
		return errRegistryAlreadyOpen
	}
	r.state = registryOpen
	r.wg.Add(1)
	go r.analyseLoop()
	return nil
}

// Close stops the analyse loop.
func (r *Registry) Close() error {
	r.Lock()
	if r.state != registryOpen {
		r.Unlock()
		return errRegistryNotOpen
	}
	r.state = registryClosed
	close(r.closedCh)
	r.Unlock()

	r.wg.Wait()
	return nil
}

func (r *Registry) analyseLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.opts.AnalyseInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.closedCh:
			return
		case <-ticker.C:
			r.Analyse()
		}
	}
}

// Analyse runs one analysis pass over every collector.
func (r *Registry) Analyse() {
	start := time.Now()
	for _, p := range r.snapshot() {
		p.analyse()
	}
	r.metrics.analyseDuration.Record(time.Since(start))
}

func (r *Registry) snapshot() []*Partition {
	r.RLock()
	partitions := make([]*Partition, 0, len(r.partitions))
	for _, p := range r.partitions {
		partitions = append(partitions, p)
	}
	r.RUnlock()
	return partitions
}

// DetectHotkey applies a hotkey control command to a partition collector.
func (r *Registry) DetectHotkey(
	ctx context.Context,
	req *hotkey.DetectRequest,
) (*hotkey.DetectResponse, error) {
	if req == nil {
		return nil, errDetectRequestRequired
	}
	r.metrics.detectRequests.Inc(1)

	direction, err := hotkey.ParseDirection(req.Type)
	if err != nil {
		return &hotkey.DetectResponse{
			ErrCode: hotkey.ErrCodeInvalidAction,
			ErrHint: err.Error(),
		}, nil
	}

	p, ok := r.Get(req.Table, req.Partition)
	if !ok {
		r.metrics.unknownTargets.Inc(1)
		return &hotkey.DetectResponse{
			ErrCode: hotkey.ErrCodeNotFound,
			ErrHint: fmt.Sprintf("partition %s.%d is not served by this node", req.Table, req.Partition),
		}, nil
	}

	resp := p.Collector(direction).Handle(req.Action)
	r.logger.Info("handled hotkey detect request",
		zap.String("table", req.Table),
		zap.Int("partition", req.Partition),
		zap.Stringer("type", direction),
		zap.String("action", string(req.Action)),
		zap.String("errCode", string(resp.ErrCode)))
	return &resp, nil
}

// PartitionStats returns the request counters of every partition replica.
func (r *Registry) PartitionStats(ctx context.Context) (*StatsResult, error) {
	partitions := r.snapshot()
	result := &StatsResult{
		TimestampNanos: r.nowFn().UnixNano(),
		Partitions:     make([]Stat, 0, len(partitions)),
	}
	for _, p := range partitions {
		result.Partitions = append(result.Partitions, p.Stat())
	}
	sort.Slice(result.Partitions, func(i, j int) bool {
		a, b := result.Partitions[i], result.Partitions[j]
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		return a.Partition < b.Partition
	})
	return result, nil
}
