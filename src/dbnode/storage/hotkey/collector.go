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

package hotkey

import (
	"fmt"
	"sync"
	"time"

	"github.com/m3db/m3hotspot/src/x/clock"
	xsync "github.com/m3db/m3hotspot/src/x/sync"

	"github.com/uber-go/tally/v4"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// collectorState is an immutable snapshot of a collector. At most one of
// coarse and fine is set, and result is non-empty iff state is finished.
type collectorState struct {
	state     State
	startedAt time.Time
	coarse    *coarseDetector
	fine      *fineDetector
	result    string
}

var stoppedState = &collectorState{state: StateStopped}

type collectorMetrics struct {
	starts         tally.Counter
	stops          tally.Counter
	alreadyRunning tally.Counter
	coarseHits     tally.Counter
	fineHits       tally.Counter
	fineDropped    tally.Counter
	timeouts       tally.Counter
}

func newCollectorMetrics(scope tally.Scope) collectorMetrics {
	return collectorMetrics{
		starts:         scope.Counter("starts"),
		stops:          scope.Counter("stops"),
		alreadyRunning: scope.Counter("already-running"),
		coarseHits:     scope.Counter("coarse-hits"),
		fineHits:       scope.Counter("fine-hits"),
		fineDropped:    scope.Counter("fine-dropped"),
		timeouts:       scope.Counter("timeouts"),
	}
}

// Collector detects the hot key of one partition for one traffic direction.
// Capture is safe for concurrent use and never blocks. Analyse, Start and
// Stop are serialized with each other.
type Collector struct {
	sync.Mutex

	direction Direction
	opts      Options
	nowFn     clock.NowFn
	coreFn    xsync.CoreFn
	logger    *zap.Logger
	metrics   collectorMetrics

	current *atomic.Pointer[collectorState]
}

// NewCollector returns a stopped collector.
func NewCollector(direction Direction, opts Options) (*Collector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	iOpts := opts.InstrumentOptions()
	scope := iOpts.MetricsScope().
		SubScope("hotkey").
		Tagged(map[string]string{"type": direction.String()})
	return &Collector{
		direction: direction,
		opts:      opts,
		nowFn:     opts.ClockOptions().NowFn(),
		coreFn:    xsync.RoundRobinCoreFn(opts.FineShardCount()),
		logger:    iOpts.Logger().With(zap.Stringer("type", direction)),
		metrics:   newCollectorMetrics(scope),
		current:   atomic.NewPointer(stoppedState),
	}, nil
}

// Direction returns the traffic direction of the collector.
func (c *Collector) Direction() Direction {
	return c.direction
}

// Capture records an access to hashKey. It is a no-op unless detecting.
func (c *Collector) Capture(hashKey []byte, weight uint64) {
	if len(hashKey) == 0 || weight == 0 {
		return
	}
	s := c.current.Load()
	switch s.state {
	case StateCoarseDetecting:
		s.coarse.Capture(hashKey, weight)
	case StateFineDetecting:
		shard := 0
		if c.direction == Read {
			shard = c.coreFn()
		}
		s.fine.Capture(hashKey, weight, shard)
	}
}

// Analyse advances detection by at most one state. Detection that has run
// for longer than the max work time is reset to stopped.
func (c *Collector) Analyse() {
	c.Lock()
	defer c.Unlock()

	s := c.current.Load()
	if s.state != StateCoarseDetecting && s.state != StateFineDetecting {
		return
	}

	if elapsed := c.nowFn().Sub(s.startedAt); elapsed >= c.opts.MaxWorkTime() {
		c.logger.Warn("hotkey detection timed out, resetting",
			zap.Stringer("state", s.state),
			zap.Duration("elapsed", elapsed),
			zap.Duration("maxWorkTime", c.opts.MaxWorkTime()))
		c.metrics.timeouts.Inc(1)
		c.current.Store(stoppedState)
		return
	}

	switch s.state {
	case StateCoarseDetecting:
		bucket, ok := s.coarse.Analyse()
		if !ok {
			return
		}
		c.metrics.coarseHits.Inc(1)
		c.logger.Info("hot bucket found, starting fine detection", zap.Int("bucket", bucket))
		c.current.Store(&collectorState{
			state:     StateFineDetecting,
			startedAt: s.startedAt,
			fine: newFineDetector(bucket, c.opts.CoarseBucketCount(), c.opts.FineThreshold(),
				c.opts.FineShardCount(), c.opts.FineShardCapacity(), c.metrics.fineDropped),
		})
	case StateFineDetecting:
		key, ok := s.fine.Analyse()
		if !ok {
			return
		}
		c.metrics.fineHits.Inc(1)
		c.logger.Info("hotkey found", zap.String("hotkey", key))
		c.current.Store(&collectorState{
			state:     StateFinished,
			startedAt: s.startedAt,
			result:    key,
		})
	}
}

// Start begins coarse detection. A finished collector is cleared and
// restarted, a detecting one returns ErrAlreadyRunning.
func (c *Collector) Start() error {
	c.Lock()
	defer c.Unlock()

	s := c.current.Load()
	if s.state == StateCoarseDetecting || s.state == StateFineDetecting {
		c.metrics.alreadyRunning.Inc(1)
		return ErrAlreadyRunning
	}

	c.current.Store(&collectorState{
		state:     StateCoarseDetecting,
		startedAt: c.nowFn(),
		coarse: newCoarseDetector(c.opts.CoarseBucketCount(),
			c.opts.CoarseThreshold(), c.opts.CoarseMinSampleCount()),
	})
	c.metrics.starts.Inc(1)
	c.logger.Info("hotkey detection started")
	return nil
}

// Stop resets the collector and clears any result.
func (c *Collector) Stop() {
	c.Lock()
	defer c.Unlock()

	if c.current.Load().state != StateStopped {
		c.logger.Info("hotkey detection stopped")
	}
	c.current.Store(stoppedState)
	c.metrics.stops.Inc(1)
}

// Status returns the current detection state.
func (c *Collector) Status() State {
	return c.current.Load().state
}

// Result returns the detected hot key, or ErrNotAvailable unless finished.
func (c *Collector) Result() (string, error) {
	s := c.current.Load()
	if s.state != StateFinished {
		return "", ErrNotAvailable
	}
	return s.result, nil
}

// Handle applies a control action and describes the outcome.
func (c *Collector) Handle(action Action) DetectResponse {
	switch action {
	case ActionStart:
		if err := c.Start(); err == ErrAlreadyRunning {
			return c.response(ErrCodeAlreadyRunning, "is already running")
		}
		return c.response(ErrCodeOK, "started")
	case ActionStop:
		c.Stop()
		return c.response(ErrCodeOK, "stopped")
	case ActionQuery:
		// Load once so the result and the hint describe the same state.
		s := c.current.Load()
		if s.state != StateFinished {
			return DetectResponse{
				ErrCode: ErrCodeNotAvailable,
				ErrHint: c.hint(s.state, "has no result yet"),
			}
		}
		return DetectResponse{
			ErrCode:      ErrCodeOK,
			ErrHint:      c.hint(s.state, "finished"),
			HotkeyResult: s.result,
		}
	}
	return c.response(ErrCodeInvalidAction, fmt.Sprintf("rejected unknown action %q", action))
}

func (c *Collector) response(code ErrCode, what string) DetectResponse {
	return DetectResponse{
		ErrCode: code,
		ErrHint: c.hint(c.Status(), what),
	}
}

func (c *Collector) hint(state State, what string) string {
	return fmt.Sprintf("%s hotkey detection %s, state: %s", c.direction, what, state)
}
