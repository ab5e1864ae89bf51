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
	"testing"
	"time"

	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
	"github.com/m3db/m3hotspot/src/x/instrument"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/goleak"
)

func TestDetectorTickTracksTables(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	source := NewMockStatsSource(ctrl)
	detector, err := NewDetector(source, NewMockNotifier(ctrl), NewOptions().
		SetInstrumentOptions(instrument.NewOptions().SetMetricsScope(scope)))
	require.NoError(t, err)

	ctx := context.Background()
	gomock.InOrder(
		source.EXPECT().Collect(ctx).Return(TableStats{"orders": uniformSnapshot(8, 100)}, nil),
		source.EXPECT().Collect(ctx).Return(TableStats{"orders": uniformSnapshot(8, 100)}, nil),
		source.EXPECT().Collect(ctx).Return(TableStats{"orders": uniformSnapshot(4, 100)}, nil),
		source.EXPECT().Collect(ctx).Return(TableStats{"users": uniformSnapshot(2, 10)}, nil),
	)

	detector.Tick(ctx)
	detector.Tick(ctx)
	status, ok := detector.Table("orders")
	require.True(t, ok)
	assert.Equal(t, 8, status.PartitionCount)
	assert.Equal(t, 2, status.HistoryLen)

	detector.Tick(ctx)
	status, ok = detector.Table("orders")
	require.True(t, ok)
	assert.Equal(t, 4, status.PartitionCount)
	assert.Equal(t, 1, status.HistoryLen)

	detector.Tick(ctx)
	_, ok = detector.Table("orders")
	assert.False(t, ok)
	_, ok = detector.Table("users")
	assert.True(t, ok)

	snapshot := scope.Snapshot()
	assert.Equal(t, 1.0, snapshot.Gauges()["hotspot.tables+"].Value())
	assert.Equal(t, 20.0, snapshot.Gauges()["hotspot.read-qps+table=users"].Value())
	assert.Equal(t, int64(4), snapshot.Counters()["hotspot.ticks+"].Value())
}

func TestDetectorTickNotifiesHotPartition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockStatsSource(ctrl)
	notifier := NewMockNotifier(ctrl)
	policy := &fixedPolicy{ok: true, scores: []PartitionScore{{}, {Write: 6}}}
	detector, err := NewDetector(source, notifier, NewOptions().
		SetPolicy(policy).
		SetOccurrenceThreshold(0))
	require.NoError(t, err)

	source.EXPECT().Collect(gomock.Any()).Return(TableStats{"orders": uniformSnapshot(2, 100)}, nil)
	notifier.EXPECT().NotifyReplica("orders", 1, hotkey.Write)

	detector.Tick(context.Background())
}

func TestDetectorTickCollectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scope := tally.NewTestScope("", nil)
	source := NewMockStatsSource(ctrl)
	detector, err := NewDetector(source, NewMockNotifier(ctrl), NewOptions().
		SetInstrumentOptions(instrument.NewOptions().SetMetricsScope(scope)))
	require.NoError(t, err)

	source.EXPECT().Collect(gomock.Any()).Return(nil, errors.New("node unreachable"))
	detector.Tick(context.Background())

	_, ok := detector.Table("orders")
	assert.False(t, ok)
	assert.Equal(t, int64(1), scope.Snapshot().Counters()["hotspot.collect-errors+"].Value())
}

func TestDetectorSkipsEmptyTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockStatsSource(ctrl)
	detector, err := NewDetector(source, NewMockNotifier(ctrl), NewOptions())
	require.NoError(t, err)

	source.EXPECT().Collect(gomock.Any()).Return(TableStats{"empty": nil}, nil)
	detector.Tick(context.Background())

	_, ok := detector.Table("empty")
	assert.False(t, ok)
}

func TestDetectorTableDuringTicks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockStatsSource(ctrl)
	detector, err := NewDetector(source, NewMockNotifier(ctrl), NewOptions().SetHistorySize(4))
	require.NoError(t, err)

	const ticks = 200
	var calls int
	source.EXPECT().Collect(gomock.Any()).DoAndReturn(func(context.Context) (TableStats, error) {
		calls++
		if calls%10 == 5 {
			return TableStats{"users": uniformSnapshot(2, 10)}, nil
		}
		return TableStats{"orders": uniformSnapshot(8, 100)}, nil
	}).Times(ticks)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < ticks; i++ {
			detector.Tick(context.Background())
		}
	}()

	for {
		select {
		case <-done:
			status, ok := detector.Table("orders")
			require.True(t, ok)
			assert.Equal(t, 8, status.PartitionCount)
			return
		default:
		}
		if status, ok := detector.Table("orders"); ok {
			require.Equal(t, 8, status.PartitionCount)
			require.True(t, status.HistoryLen <= 4)
		}
	}
}

func TestDetectorOpenClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockStatsSource(ctrl)
	detector, err := NewDetector(source, NewMockNotifier(ctrl), NewOptions().
		SetStatInterval(time.Millisecond))
	require.NoError(t, err)

	ticked := make(chan struct{}, 1)
	source.EXPECT().Collect(gomock.Any()).DoAndReturn(func(context.Context) (TableStats, error) {
		select {
		case ticked <- struct{}{}:
		default:
		}
		return TableStats{}, nil
	}).MinTimes(1)

	require.NoError(t, detector.Open())
	require.Equal(t, errDetectorAlreadyOpen, detector.Open())

	<-ticked
	require.NoError(t, detector.Close())
	require.Equal(t, errDetectorNotOpen, detector.Close())
}

func TestNewDetectorInvalidOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := NewDetector(NewMockStatsSource(ctrl), NewMockNotifier(ctrl), NewOptions().SetHistorySize(0))
	require.Equal(t, errHistorySizeNotPositive, err)
}
