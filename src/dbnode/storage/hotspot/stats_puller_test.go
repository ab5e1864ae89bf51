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

	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/topology"
	"github.com/m3db/m3hotspot/src/x/instrument"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHosts = []topology.Host{
	{ID: "node-a", Address: "node-a:9000"},
	{ID: "node-b", Address: "node-b:9000"},
}

func TestStatsPullerCollect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockNodeStatsClient(ctrl)
	topo := topology.NewMap(testHosts)
	puller := NewStatsPuller(client, topo, time.Millisecond, instrument.NewOptions())

	second := int64(time.Second)
	gomock.InOrder(
		client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").Return(&partition.StatsResult{
			TimestampNanos: 0,
			Partitions: []partition.Stat{
				{Table: "orders", Partition: 0, Primary: true, ReadCount: 100, WriteCount: 10},
				{Table: "orders", Partition: 1, ReadCount: 7},
			},
		}, nil),
		client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").Return(&partition.StatsResult{
			TimestampNanos: 2 * second,
			Partitions: []partition.Stat{
				{Table: "orders", Partition: 0, Primary: true, ReadCount: 500, WriteCount: 30},
				{Table: "orders", Partition: 1, ReadCount: 900},
			},
		}, nil),
	)
	gomock.InOrder(
		client.EXPECT().PartitionStats(gomock.Any(), "node-b:9000").Return(&partition.StatsResult{
			TimestampNanos: 5 * second,
			Partitions: []partition.Stat{
				{Table: "orders", Partition: 1, Primary: true, ReadCount: 0, WriteCount: 10},
				{Table: "orders", Partition: 3},
			},
		}, nil),
		client.EXPECT().PartitionStats(gomock.Any(), "node-b:9000").Return(&partition.StatsResult{
			TimestampNanos: 6 * second,
			Partitions: []partition.Stat{
				{Table: "orders", Partition: 1, Primary: true, ReadCount: 50, WriteCount: 5},
				{Table: "orders", Partition: 3},
			},
		}, nil),
	)

	stats, err := puller.Collect(context.Background())
	require.NoError(t, err)
	expected := TableStats{
		"orders": Snapshot{
			{ReadQPS: 200, WriteQPS: 10},
			{ReadQPS: 50, WriteQPS: 0},
			{},
			{},
		},
	}
	require.True(t, cmp.Equal(expected, stats), cmp.Diff(expected, stats))

	address, err := topo.Primary("orders", 0)
	require.NoError(t, err)
	assert.Equal(t, "node-a:9000", address)
	address, err = topo.Primary("orders", 1)
	require.NoError(t, err)
	assert.Equal(t, "node-b:9000", address)
	_, err = topo.Primary("orders", 3)
	assert.Error(t, err)
}

func TestStatsPullerKeepsPartitionCountWhenLastPartitionMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockNodeStatsClient(ctrl)
	topo := topology.NewMap(testHosts[:1])
	puller := NewStatsPuller(client, topo, time.Millisecond, instrument.NewOptions())

	second := int64(time.Second)
	full := func(ts int64, reads uint64) *partition.StatsResult {
		return &partition.StatsResult{
			TimestampNanos: ts,
			Partitions: []partition.Stat{
				{Table: "orders", Partition: 0, Primary: true, ReadCount: reads},
				{Table: "orders", Partition: 1, Primary: true, ReadCount: reads},
				{Table: "orders", Partition: 2, Primary: true, ReadCount: reads},
			},
		}
	}
	gomock.InOrder(
		client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").Return(full(0, 0), nil),
		client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").Return(full(second, 10), nil),
		client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").Return(full(2*second, 10), nil),
		client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").Return(&partition.StatsResult{
			TimestampNanos: 3 * second,
			Partitions: []partition.Stat{
				{Table: "orders", Partition: 0, Primary: true, ReadCount: 40},
			},
		}, nil),
	)

	stats, err := puller.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, stats["orders"], 3)
	assert.Equal(t, 3, topo.PartitionCount("orders"))

	stats, err = puller.Collect(context.Background())
	require.NoError(t, err)
	expected := TableStats{
		"orders": Snapshot{{ReadQPS: 30}, {}, {}},
	}
	require.True(t, cmp.Equal(expected, stats), cmp.Diff(expected, stats))
	assert.Equal(t, 3, topo.PartitionCount("orders"))
}

func TestStatsPullerCollectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockNodeStatsClient(ctrl)
	puller := NewStatsPuller(client, topology.NewMap(testHosts[:1]), time.Millisecond, instrument.NewOptions())

	client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").Return(nil, errors.New("connection refused"))

	_, err := puller.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pull partition stats from node-a:9000")
}

func TestStatsPullerNoHosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	puller := NewStatsPuller(NewMockNodeStatsClient(ctrl), topology.NewMap(nil), 0, instrument.NewOptions())
	_, err := puller.Collect(context.Background())
	require.Equal(t, errNoHosts, err)
}

func TestStatsPullerCollectCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := NewMockNodeStatsClient(ctrl)
	puller := NewStatsPuller(client, topology.NewMap(testHosts[:1]), time.Hour, instrument.NewOptions())

	ctx, cancel := context.WithCancel(context.Background())
	client.EXPECT().PartitionStats(gomock.Any(), "node-a:9000").
		DoAndReturn(func(context.Context, string) (*partition.StatsResult, error) {
			cancel()
			return &partition.StatsResult{}, nil
		})

	_, err := puller.Collect(ctx)
	require.Equal(t, context.Canceled, err)
}

func TestCounterDelta(t *testing.T) {
	assert.Equal(t, 5.0, counterDelta(10, 15))
	assert.Equal(t, 0.0, counterDelta(15, 10))
}
