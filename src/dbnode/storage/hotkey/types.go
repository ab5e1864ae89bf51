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

// Package hotkey detects the single disproportionately accessed hash key of
// a partition. Each collector runs a cheap bucketed coarse pass to find a
// hot bucket and then an exact fine pass over the keys of that bucket.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyRunning is returned when starting a collector that is
	// already detecting.
	ErrAlreadyRunning = errors.New("hotkey detection is already running")

	// ErrNotAvailable is returned when querying a collector that has not
	// finished detecting.
	ErrNotAvailable = errors.New("hotkey result is not available")

	errInvalidDirection = errors.New("invalid hotkey detection type")
)

// Direction is the traffic direction a collector watches.
type Direction int

const (
	// Read traffic.
	Read Direction = iota
	// Write traffic.
	Write
)

func (d Direction) String() string {
	switch d {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(d))
}

// ParseDirection parses "READ" or "WRITE", ignoring case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "READ":
		return Read, nil
	case "WRITE":
		return Write, nil
	}
	return 0, fmt.Errorf("%v: %q", errInvalidDirection, s)
}

// State is the detection state of a collector.
type State int

const (
	// StateStopped is the idle state.
	StateStopped State = iota
	// StateCoarseDetecting searches for a hot bucket.
	StateCoarseDetecting
	// StateFineDetecting searches for the hot key within the hot bucket.
	StateFineDetecting
	// StateFinished holds a detected hot key.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateCoarseDetecting:
		return "COARSE_DETECTING"
	case StateFineDetecting:
		return "FINE_DETECTING"
	case StateFinished:
		return "FINISHED"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Action is a control command accepted by a collector.
type Action string

const (
	// ActionStart starts detection.
	ActionStart Action = "START"
	// ActionStop stops detection and clears any result.
	ActionStop Action = "STOP"
	// ActionQuery queries the detection result.
	ActionQuery Action = "QUERY"
)

// ErrCode is the result code of a control command.
type ErrCode string

const (
	// ErrCodeOK means the command succeeded.
	ErrCodeOK ErrCode = "OK"
	// ErrCodeAlreadyRunning means START was sent while detecting.
	ErrCodeAlreadyRunning ErrCode = "ALREADY_RUNNING"
	// ErrCodeNotAvailable means QUERY was sent before detection finished.
	ErrCodeNotAvailable ErrCode = "NOT_AVAILABLE"
	// ErrCodeInvalidAction means the action or type was not recognized.
	ErrCodeInvalidAction ErrCode = "INVALID_ACTION"
	// ErrCodeNotFound means the addressed partition is not served here.
	ErrCodeNotFound ErrCode = "OBJECT_NOT_FOUND"
)

// DetectRequest is a control command addressed to one collector.
type DetectRequest struct {
	Table     string `json:"table"`
	Partition int    `json:"partition"`
	Type      string `json:"type"`
	Action    Action `json:"action"`
}

// DetectResponse is the reply to a DetectRequest.
type DetectResponse struct {
	ErrCode      ErrCode `json:"errCode"`
	ErrHint      string  `json:"errHint"`
	HotkeyResult string  `json:"hotkeyResult,omitempty"`
}
