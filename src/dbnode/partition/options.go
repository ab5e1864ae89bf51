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
	"errors"
	"time"

	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
	"github.com/m3db/m3hotspot/src/x/instrument"
)

const defaultAnalyseInterval = 10 * time.Second

var (
	errAnalyseIntervalNotPositive = errors.New("analyse interval must be positive")
	errNoHotkeyOptions            = errors.New("hotkey options not set")
)

// Options are the options for a partition registry.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetInstrumentOptions sets the instrument options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrument options.
	InstrumentOptions() instrument.Options

	// SetHotkeyOptions sets the options of every partition's collectors.
	SetHotkeyOptions(value hotkey.Options) Options

	// HotkeyOptions returns the collector options.
	HotkeyOptions() hotkey.Options

	// SetAnalyseInterval sets how often every collector is analysed.
	SetAnalyseInterval(value time.Duration) Options

	// AnalyseInterval returns the analyse interval.
	AnalyseInterval() time.Duration
}

type options struct {
	iOpts           instrument.Options
	hotkeyOpts      hotkey.Options
	analyseInterval time.Duration
}

// NewOptions creates new registry options.
func NewOptions() Options {
	iOpts := instrument.NewOptions()
	return &options{
		iOpts:           iOpts,
		hotkeyOpts:      hotkey.NewOptions().SetInstrumentOptions(iOpts),
		analyseInterval: defaultAnalyseInterval,
	}
}

func (o *options) Validate() error {
	if o.analyseInterval <= 0 {
		return errAnalyseIntervalNotPositive
	}
	if o.hotkeyOpts == nil {
		return errNoHotkeyOptions
	}
	return o.hotkeyOpts.Validate()
}

func (o *options) SetInstrumentOptions(value instrument.Options) Options {
	opts := *o
	opts.iOpts = value
	return &opts
}

func (o *options) InstrumentOptions() instrument.Options {
	return o.iOpts
}

func (o *options) SetHotkeyOptions(value hotkey.Options) Options {
	opts := *o
	opts.hotkeyOpts = value
	return &opts
}

func (o *options) HotkeyOptions() hotkey.Options {
	return o.hotkeyOpts
}

func (o *options) SetAnalyseInterval(value time.Duration) Options {
	opts := *o
	opts.analyseInterval = value
	return &opts
}

func (o *options) AnalyseInterval() time.Duration {
	return o.analyseInterval
}
