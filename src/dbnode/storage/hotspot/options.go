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
	"time"

	"github.com/m3db/m3hotspot/src/x/instrument"
)

const (
	defaultHotPartitionThreshold = 4
	defaultOccurrenceThreshold   = 1
	defaultHistorySize           = 100
	defaultHotkeyAutoDetect      = true
	defaultStatInterval          = 10 * time.Second
)

var (
	errHotPartitionThresholdNotPositive = errors.New("hot partition threshold must be positive")
	errOccurrenceThresholdNegative      = errors.New("occurrence threshold must not be negative")
	errHistorySizeNotPositive           = errors.New("history size must be positive")
	errStatIntervalNotPositive          = errors.New("stat interval must be positive")
)

// Options are the options for hotspot calculators and the detector that
// drives them.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options

	// SetPolicy sets the scoring policy, nil disables detection.
	SetPolicy(value Policy) Options

	// Policy returns the scoring policy.
	Policy() Policy

	// SetHotPartitionThreshold sets the score at which a partition is hot.
	SetHotPartitionThreshold(value int64) Options

	// HotPartitionThreshold returns the hot partition threshold.
	HotPartitionThreshold() int64

	// SetOccurrenceThreshold sets how many consecutive hot ticks must be
	// exceeded before the partition's primary is notified.
	SetOccurrenceThreshold(value int) Options

	// OccurrenceThreshold returns the occurrence threshold.
	OccurrenceThreshold() int

	// SetHistorySize sets the number of snapshots kept per table.
	SetHistorySize(value int) Options

	// HistorySize returns the history size.
	HistorySize() int

	// SetHotkeyAutoDetect sets whether hot partitions trigger hotkey detection.
	SetHotkeyAutoDetect(value bool) Options

	// HotkeyAutoDetect returns whether hot partitions trigger hotkey detection.
	HotkeyAutoDetect() bool

	// SetStatInterval sets the interval between stat ticks.
	SetStatInterval(value time.Duration) Options

	// StatInterval returns the interval between stat ticks.
	StatInterval() time.Duration
}

type options struct {
	iOpts                 instrument.Options
	policy                Policy
	hotPartitionThreshold int64
	occurrenceThreshold   int
	historySize           int
	hotkeyAutoDetect      bool
	statInterval          time.Duration
}

// NewOptions creates new hotspot options using the QPS variance policy.
func NewOptions() Options {
	return &options{
		iOpts:                 instrument.NewOptions(),
		policy:                NewQPSVariancePolicy(),
		hotPartitionThreshold: defaultHotPartitionThreshold,
		occurrenceThreshold:   defaultOccurrenceThreshold,
		historySize:           defaultHistorySize,
		hotkeyAutoDetect:      defaultHotkeyAutoDetect,
		statInterval:          defaultStatInterval,
	}
}

func (o *options) Validate() error {
	if o.hotPartitionThreshold <= 0 {
		return errHotPartitionThresholdNotPositive
	}
	if o.occurrenceThreshold < 0 {
		return errOccurrenceThresholdNegative
	}
	if o.historySize <= 0 {
		return errHistorySizeNotPositive
	}
	if o.statInterval <= 0 {
		return errStatIntervalNotPositive
	}
	return nil
}

func (o *options) SetInstrumentOptions(value instrument.Options) Options {
	opts := *o
	opts.iOpts = value
	return &opts
}

func (o *options) InstrumentOptions() instrument.Options {
	return o.iOpts
}

func (o *options) SetPolicy(value Policy) Options {
	opts := *o
	opts.policy = value
	return &opts
}

func (o *options) Policy() Policy {
	return o.policy
}

func (o *options) SetHotPartitionThreshold(value int64) Options {
	opts := *o
	opts.hotPartitionThreshold = value
	return &opts
}

func (o *options) HotPartitionThreshold() int64 {
	return o.hotPartitionThreshold
}

func (o *options) SetOccurrenceThreshold(value int) Options {
	opts := *o
	opts.occurrenceThreshold = value
	return &opts
}

func (o *options) OccurrenceThreshold() int {
	return o.occurrenceThreshold
}

func (o *options) SetHistorySize(value int) Options {
	opts := *o
	opts.historySize = value
	return &opts
}

func (o *options) HistorySize() int {
	return o.historySize
}

func (o *options) SetHotkeyAutoDetect(value bool) Options {
	opts := *o
	opts.hotkeyAutoDetect = value
	return &opts
}

func (o *options) HotkeyAutoDetect() bool {
	return o.hotkeyAutoDetect
}

func (o *options) SetStatInterval(value time.Duration) Options {
	opts := *o
	opts.statInterval = value
	return &opts
}

func (o *options) StatInterval() time.Duration {
	return o.statInterval
}
