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
	"fmt"
	"net"
	"sync"

	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
	"github.com/m3db/m3hotspot/src/dbnode/topology"
	"github.com/m3db/m3hotspot/src/x/retry"
	xsync "github.com/m3db/m3hotspot/src/x/sync"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

var errRejectedByReplica = errors.New("hotkey detection rejected by replica")

type notifierMetrics struct {
	scheduled      tally.Counter
	dropped        tally.Counter
	success        tally.Counter
	alreadyRunning tally.Counter
	timeouts       tally.Counter
	failures       tally.Counter
}

func newNotifierMetrics(scope tally.Scope) notifierMetrics {
	return notifierMetrics{
		scheduled:      scope.Counter("scheduled"),
		dropped:        scope.Counter("dropped"),
		success:        scope.Counter("success"),
		alreadyRunning: scope.Counter("already-running"),
		timeouts:       scope.Counter("timeouts"),
		failures:       scope.Counter("failures"),
	}
}

// ReplicaNotifier sends start commands to partition primaries from a
// bounded worker pool.
type ReplicaNotifier struct {
	sync.RWMutex

	client   ControlClient
	resolver topology.Resolver
	opts     NotifierOptions
	pool     xsync.WorkerPool
	retrier  retry.Retrier
	logger   *zap.Logger
	metrics  notifierMetrics

	closed  bool
	ctx     context.Context
	closeFn context.CancelFunc
	wg      sync.WaitGroup
}

// NewReplicaNotifier returns a notifier sending commands through client to
// the primaries resolved by resolver.
func NewReplicaNotifier(
	client ControlClient,
	resolver topology.Resolver,
	opts NotifierOptions,
) (*ReplicaNotifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	scope := opts.InstrumentOptions().MetricsScope().SubScope("hotspot-notifier")
	retryOpts := opts.RetryOptions().
		SetMetricsScope(scope.SubScope("retry")).
		SetRetryableErrorFn(isTimeout)
	pool := xsync.NewWorkerPool(opts.Concurrency())
	pool.Init()
	ctx, closeFn := context.WithCancel(context.Background())
	return &ReplicaNotifier{
		client:   client,
		resolver: resolver,
		opts:     opts,
		pool:     pool,
		retrier:  retry.NewRetrier(retryOpts),
		logger:   opts.InstrumentOptions().Logger(),
		metrics:  newNotifierMetrics(scope),
		ctx:      ctx,
		closeFn:  closeFn,
	}, nil
}

// NotifyReplica implements Notifier. The command is dropped when every
// worker is busy, a later tick triggers it again.
func (n *ReplicaNotifier) NotifyReplica(table string, partition int, direction hotkey.Direction) {
	n.RLock()
	defer n.RUnlock()
	if n.closed {
		return
	}
	n.wg.Add(1)
	scheduled := n.pool.GoIfAvailable(func() {
		defer n.wg.Done()
		n.notify(table, partition, direction)
	})
	if !scheduled {
		n.wg.Done()
		n.metrics.dropped.Inc(1)
		n.logger.Warn("dropped hotkey detection notification, all workers busy",
			zap.String("table", table),
			zap.Int("partition", partition),
			zap.Stringer("type", direction))
		return
	}
	n.metrics.scheduled.Inc(1)
}

// Close cancels in-flight notifications, including those backing off
// between retries, and waits for them to return.
func (n *ReplicaNotifier) Close() {
	n.Lock()
	if n.closed {
		n.Unlock()
		return
	}
	n.closed = true
	n.closeFn()
	n.Unlock()

	n.wg.Wait()
}

func (n *ReplicaNotifier) notify(table string, partition int, direction hotkey.Direction) {
	logger := n.logger.With(
		zap.String("table", table),
		zap.Int("partition", partition),
		zap.Stringer("type", direction))

	req := &hotkey.DetectRequest{
		Table:     table,
		Partition: partition,
		Type:      direction.String(),
		Action:    hotkey.ActionStart,
	}
	var resp *hotkey.DetectResponse
	attemptFn := func() error {
		address, err := n.resolver.Primary(table, partition)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(n.ctx, n.opts.RequestTimeout())
		defer cancel()
		resp, err = n.client.DetectHotkey(ctx, address, req)
		if err != nil && isTimeout(err) {
			n.metrics.timeouts.Inc(1)
			logger.Warn("hotkey detection notification timed out, retrying",
				zap.String("address", address))
		}
		return err
	}
	if err := n.retrier.AttemptContext(n.ctx, attemptFn); err != nil {
		n.metrics.failures.Inc(1)
		if n.ctx.Err() != nil {
			logger.Info("notifier closed, abandoned hotkey detection notification", zap.Error(err))
			return
		}
		logger.Error("hotkey detection notification failed", zap.Error(err))
		return
	}

	switch resp.ErrCode {
	case hotkey.ErrCodeOK:
		n.metrics.success.Inc(1)
		logger.Info("started hotkey detection on primary replica")
	case hotkey.ErrCodeAlreadyRunning:
		n.metrics.alreadyRunning.Inc(1)
		logger.Info("hotkey detection already running on primary replica",
			zap.String("hint", resp.ErrHint))
	default:
		n.metrics.failures.Inc(1)
		logger.Error("hotkey detection notification failed",
			zap.Error(fmt.Errorf("%v: %s: %s", errRejectedByReplica, resp.ErrCode, resp.ErrHint)))
	}
}

// isTimeout returns whether err is a timed out request.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
