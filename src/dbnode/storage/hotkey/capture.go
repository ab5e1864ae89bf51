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
	"github.com/m3db/m3hotspot/src/dbnode/keys"
	"github.com/m3db/m3hotspot/src/dbnode/rrdb"
)

// WriteKey extracts the hash key of a write batch element and the weight it
// contributes. It returns false for requests whose key cannot be routed.
func WriteKey(req rrdb.WriteRequest) (hashKey []byte, weight uint64, ok bool) {
	weight = 1
	switch req.Op {
	case rrdb.OperationPut:
		if req.Put == nil {
			return nil, 0, false
		}
		hashKey, ok = keys.HashKey(req.Put.Key)
	case rrdb.OperationRemove:
		if req.Remove == nil {
			return nil, 0, false
		}
		hashKey, ok = keys.HashKey(req.Remove.Key)
	case rrdb.OperationIncr:
		if req.Incr == nil {
			return nil, 0, false
		}
		hashKey, ok = keys.HashKey(req.Incr.Key)
	case rrdb.OperationMultiPut:
		if req.MultiPut == nil {
			return nil, 0, false
		}
		hashKey, ok = req.MultiPut.HashKey, true
		weight = rowWeight(len(req.MultiPut.Kvs))
	case rrdb.OperationMultiRemove:
		if req.MultiRemove == nil {
			return nil, 0, false
		}
		hashKey, ok = req.MultiRemove.HashKey, true
		weight = rowWeight(len(req.MultiRemove.SortKeys))
	case rrdb.OperationCheckAndSet:
		if req.CheckAndSet == nil {
			return nil, 0, false
		}
		hashKey, ok = req.CheckAndSet.HashKey, true
	case rrdb.OperationCheckAndMutate:
		if req.CheckAndMutate == nil {
			return nil, 0, false
		}
		hashKey, ok = req.CheckAndMutate.HashKey, true
		weight = rowWeight(len(req.CheckAndMutate.Mutations))
	default:
		return nil, 0, false
	}
	if !ok || len(hashKey) == 0 {
		return nil, 0, false
	}
	return hashKey, weight, true
}

// ReadKey extracts the hash key of a read. Reads always weigh 1.
func ReadKey(req rrdb.ReadRequest) ([]byte, bool) {
	var (
		hashKey []byte
		ok      bool
	)
	switch req.Op {
	case rrdb.OperationGet, rrdb.OperationTTL:
		hashKey, ok = keys.HashKey(req.Key)
	case rrdb.OperationMultiGet, rrdb.OperationSortKeyCount:
		hashKey, ok = req.HashKey, true
	}
	if !ok || len(hashKey) == 0 {
		return nil, false
	}
	return hashKey, true
}

func rowWeight(rows int) uint64 {
	if rows < 1 {
		return 1
	}
	return uint64(rows)
}
