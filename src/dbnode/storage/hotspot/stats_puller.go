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
	"time"

	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/topology"
	"github.com/m3db/m3hotspot/src/x/instrument"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultSampleInterval = time.Second

var errNoHosts = errors.New("no hosts to pull partition stats from")

// NodeStatsClient reads the partition counters of a node.
type NodeStatsClient interface {
	// PartitionStats returns the partition counters of the node at address.
	PartitionStats(ctx context.Context, address string) (*partition.StatsResult, error)
}

// StatsPuller is a StatsSource that derives partition QPS from two pulls of
// every node's cumulative request counters. Only the counters of primary
// replicas are used, and the primaries seen are recorded in the topology.
type StatsPuller struct {
	client         NodeStatsClient
	topology       *topology.Map
	sampleInterval time.Duration
	logger         *zap.Logger
}

// NewStatsPuller returns a puller of the hosts of topo. A zero sample
// interval uses the default.
func NewStatsPuller(
	client NodeStatsClient,
	topo *topology.Map,
	sampleInterval time.Duration,
	iOpts instrument.Options,
) *StatsPuller {
	if sampleInterval <= 0 {
		sampleInterval = defaultSampleInterval
	}
	return &StatsPuller{
		client:         client,
		topology:       topo,
		sampleInterval: sampleInterval,
		logger:         iOpts.Logger(),
	}
}

type nodeStats struct {
	host   topology.Host
	result *partition.StatsResult
}

// Collect implements StatsSource.
func (p *StatsPuller) Collect(ctx context.Context) (TableStats, error) {
	first, err := p.pull(ctx)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(p.sampleInterval)
	select {
	case <-ctx.Done():
		timer.Stop()
		return nil, ctx.Err()
	case <-timer.C:
	}

	second, err := p.pull(ctx)
	if err != nil {
		return nil, err
	}
	return p.qps(first, second), nil
}

func (p *StatsPuller) pull(ctx context.Context) ([]nodeStats, error) {
	hosts := p.topology.Hosts()
	if len(hosts) == 0 {
		return nil, errNoHosts
	}

	results := make([]nodeStats, len(hosts))
	g, gctx := errgroup.WithContext(ctx)
	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			result, err := p.client.PartitionStats(gctx, host.Address)
			if err != nil {
				return errors.Wrapf(err, "pull partition stats from %s", host.Address)
			}
			results[i] = nodeStats{host: host, result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type statKey struct {
	table     string
	partition int
}

func (p *StatsPuller) qps(first, second []nodeStats) TableStats {
	partitionCounts := make(map[string]int)
	stats := make(TableStats)
	for i, node := range second {
		elapsed := time.Duration(node.result.TimestampNanos - first[i].result.TimestampNanos).Seconds()
		if elapsed <= 0 {
			p.logger.Warn("partition stats timestamp did not advance",
				zap.String("address", node.host.Address))
			continue
		}

		previous := make(map[statKey]partition.Stat, len(first[i].result.Partitions))
		for _, s := range first[i].result.Partitions {
			previous[statKey{table: s.Table, partition: s.Partition}] = s
		}

		for _, s := range node.result.Partitions {
			if s.Partition+1 > partitionCounts[s.Table] {
				partitionCounts[s.Table] = s.Partition + 1
			}
			if !s.Primary {
				continue
			}
			p.topology.SetPrimary(s.Table, s.Partition, node.host.Address)

			prev, ok := previous[statKey{table: s.Table, partition: s.Partition}]
			if !ok {
				continue
			}
			snapshot := stats[s.Table]
			for len(snapshot) <= s.Partition {
				snapshot = append(snapshot, PartitionQPS{})
			}
			snapshot[s.Partition] = PartitionQPS{
				ReadQPS:  counterDelta(prev.ReadCount, s.ReadCount) / elapsed,
				WriteQPS: counterDelta(prev.WriteCount, s.WriteCount) / elapsed,
			}
			stats[s.Table] = snapshot
		}
	}

	for table, count := range partitionCounts {
		p.topology.GrowPartitionCount(table, count)
		snapshot := stats[table]
		for len(snapshot) < p.topology.PartitionCount(table) {
			snapshot = append(snapshot, PartitionQPS{})
		}
		stats[table] = snapshot
	}
	return stats
}

// counterDelta treats a counter that went backwards as reset.
func counterDelta(prev, curr uint64) float64 {
	if curr < prev {
		return 0
	}
	return float64(curr - prev)
}
