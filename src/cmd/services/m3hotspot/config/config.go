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

// Package config holds the configuration of the m3hotspot service.
package config

import (
	"errors"
	"time"

	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotspot"
	"github.com/m3db/m3hotspot/src/dbnode/topology"
	"github.com/m3db/m3hotspot/src/x/instrument"
	xlog "github.com/m3db/m3hotspot/src/x/log"
	"github.com/m3db/m3hotspot/src/x/retry"
)

var (
	errNoRole              = errors.New("one of node or collector must be configured")
	errPartitionOutOfRange = errors.New("primary partition out of range")
)

// Configuration is the top level configuration of a process running a
// storage node's hotkey detection, the cluster hotspot collector, or both.
type Configuration struct {
	// Logging configuration.
	Logging xlog.Configuration `yaml:"logging"`

	// Metrics configuration.
	Metrics instrument.MetricsConfiguration `yaml:"metrics"`

	// The HTTP host and port serving the node API and metrics.
	ListenAddress string `yaml:"listenAddress" validate:"nonzero"`

	// Node enables the partitions and hotkey collectors of a storage node.
	Node *NodeConfiguration `yaml:"node"`

	// Collector enables the cluster hotspot collector.
	Collector *CollectorConfiguration `yaml:"collector"`
}

// Validate validates the configuration beyond its field tags.
func (c Configuration) Validate() error {
	if c.Node == nil && c.Collector == nil {
		return errNoRole
	}
	if c.Node != nil {
		if err := c.Node.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NodeConfiguration is the configuration of a storage node.
type NodeConfiguration struct {
	// How often collectors analyse captured keys.
	AnalyseInterval time.Duration `yaml:"analyseInterval"`

	// Hotkey collector configuration.
	Hotkey HotkeyConfiguration `yaml:"hotkey"`

	// Tables and partitions served by the node.
	Tables []TableConfiguration `yaml:"tables" validate:"min=1"`
}

// Validate validates the node configuration.
func (c NodeConfiguration) Validate() error {
	for _, table := range c.Tables {
		for _, p := range table.Primaries {
			if p < 0 || p >= table.Partitions {
				return errPartitionOutOfRange
			}
		}
	}
	return nil
}

// NewOptions returns the partition registry options.
func (c NodeConfiguration) NewOptions(iOpts instrument.Options) partition.Options {
	opts := partition.NewOptions().
		SetInstrumentOptions(iOpts).
		SetHotkeyOptions(c.Hotkey.NewOptions(iOpts))
	if c.AnalyseInterval > 0 {
		opts = opts.SetAnalyseInterval(c.AnalyseInterval)
	}
	return opts
}

// NewRegistry returns a registry holding every configured partition.
func (c NodeConfiguration) NewRegistry(iOpts instrument.Options) (*partition.Registry, error) {
	registry, err := partition.NewRegistry(c.NewOptions(iOpts))
	if err != nil {
		return nil, err
	}
	for _, table := range c.Tables {
		primaries := make(map[int]bool, len(table.Primaries))
		for _, p := range table.Primaries {
			primaries[p] = true
		}
		for p := 0; p < table.Partitions; p++ {
			if _, err := registry.Add(table.Name, p, primaries[p]); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}

// TableConfiguration lists the replicas of one table served by a node.
type TableConfiguration struct {
	Name string `yaml:"name" validate:"nonzero"`

	// Number of partitions of the table.
	Partitions int `yaml:"partitions" validate:"min=1"`

	// Partitions whose primary replica is on this node.
	Primaries []int `yaml:"primaries"`
}

// HotkeyConfiguration configures hotkey collectors. Zero values keep the
// defaults.
type HotkeyConfiguration struct {
	CoarseBucketCount    int           `yaml:"coarseBucketCount"`
	CoarseThreshold      float64       `yaml:"coarseThreshold" validate:"min=0"`
	CoarseMinSampleCount uint64        `yaml:"coarseMinSampleCount"`
	FineThreshold        float64       `yaml:"fineThreshold" validate:"min=0"`
	FineShardCount       int           `yaml:"fineShardCount"`
	FineShardCapacity    int           `yaml:"fineShardCapacity"`
	MaxWorkTime          time.Duration `yaml:"maxWorkTime"`
}

// NewOptions returns the hotkey collector options.
func (c HotkeyConfiguration) NewOptions(iOpts instrument.Options) hotkey.Options {
	opts := hotkey.NewOptions().SetInstrumentOptions(iOpts)
	if c.CoarseBucketCount != 0 {
		opts = opts.SetCoarseBucketCount(c.CoarseBucketCount)
	}
	if c.CoarseThreshold != 0 {
		opts = opts.SetCoarseThreshold(c.CoarseThreshold)
	}
	if c.CoarseMinSampleCount != 0 {
		opts = opts.SetCoarseMinSampleCount(c.CoarseMinSampleCount)
	}
	if c.FineThreshold != 0 {
		opts = opts.SetFineThreshold(c.FineThreshold)
	}
	if c.FineShardCount != 0 {
		opts = opts.SetFineShardCount(c.FineShardCount)
	}
	if c.FineShardCapacity != 0 {
		opts = opts.SetFineShardCapacity(c.FineShardCapacity)
	}
	if c.MaxWorkTime != 0 {
		opts = opts.SetMaxWorkTime(c.MaxWorkTime)
	}
	return opts
}

// CollectorConfiguration is the configuration of the hotspot collector.
type CollectorConfiguration struct {
	// Scoring policy name, unset uses qps_variance and empty disables
	// detection.
	Policy *string `yaml:"policy"`

	// Score at which a partition is hot.
	HotPartitionThreshold int64 `yaml:"hotPartitionThreshold" validate:"min=0"`

	// Consecutive hot ticks that must be exceeded before notifying.
	OccurrenceThreshold *int `yaml:"occurrenceThreshold"`

	// Snapshots kept per table.
	HistorySize int `yaml:"historySize" validate:"min=0"`

	// Whether hot partitions start hotkey detection on their primary.
	HotkeyAutoDetect *bool `yaml:"hotkeyAutoDetect"`

	// Interval between stat ticks.
	StatInterval time.Duration `yaml:"statInterval"`

	// Interval between the two counter pulls of a tick.
	SampleInterval time.Duration `yaml:"sampleInterval"`

	// Timeout of requests to nodes.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// Replica notification configuration.
	Notify NotifyConfiguration `yaml:"notify"`

	// Cluster topology.
	Topology topology.Configuration `yaml:"topology"`
}

// NewOptions returns the hotspot detector options.
func (c CollectorConfiguration) NewOptions(iOpts instrument.Options) (hotspot.Options, error) {
	opts := hotspot.NewOptions().SetInstrumentOptions(iOpts)
	if c.Policy != nil {
		policy, err := hotspot.NewPolicy(*c.Policy)
		if err != nil {
			return nil, err
		}
		opts = opts.SetPolicy(policy)
	}
	if c.HotPartitionThreshold != 0 {
		opts = opts.SetHotPartitionThreshold(c.HotPartitionThreshold)
	}
	if c.OccurrenceThreshold != nil {
		opts = opts.SetOccurrenceThreshold(*c.OccurrenceThreshold)
	}
	if c.HistorySize != 0 {
		opts = opts.SetHistorySize(c.HistorySize)
	}
	if c.HotkeyAutoDetect != nil {
		opts = opts.SetHotkeyAutoDetect(*c.HotkeyAutoDetect)
	}
	if c.StatInterval != 0 {
		opts = opts.SetStatInterval(c.StatInterval)
	}
	return opts, opts.Validate()
}

// NotifyConfiguration configures replica notifications.
type NotifyConfiguration struct {
	// Notifications in flight at once.
	Concurrency int `yaml:"concurrency" validate:"min=0"`

	// Timeout of a single start command.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// Retry of timed out start commands.
	Retry *retry.Configuration `yaml:"retry"`
}

// NewOptions returns the replica notifier options.
func (c NotifyConfiguration) NewOptions(iOpts instrument.Options) hotspot.NotifierOptions {
	opts := hotspot.NewNotifierOptions().SetInstrumentOptions(iOpts)
	if c.Concurrency != 0 {
		opts = opts.SetConcurrency(c.Concurrency)
	}
	if c.RequestTimeout != 0 {
		opts = opts.SetRequestTimeout(c.RequestTimeout)
	}
	if c.Retry != nil {
		opts = opts.SetRetryOptions(c.Retry.NewOptions(iOpts.MetricsScope()))
	}
	return opts
}
