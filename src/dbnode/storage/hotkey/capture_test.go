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
	"testing"

	"github.com/m3db/m3hotspot/src/dbnode/keys"
	"github.com/m3db/m3hotspot/src/dbnode/rrdb"

	"github.com/stretchr/testify/assert"
)

func TestWriteKey(t *testing.T) {
	raw := keys.MustEncode([]byte("user-1"), []byte("name"))
	tests := []struct {
		name    string
		req     rrdb.WriteRequest
		hashKey string
		weight  uint64
		ok      bool
	}{
		{
			name:    "put",
			req:     rrdb.WriteRequest{Op: rrdb.OperationPut, Put: &rrdb.PutRequest{Key: raw}},
			hashKey: "user-1", weight: 1, ok: true,
		},
		{
			name:    "remove",
			req:     rrdb.WriteRequest{Op: rrdb.OperationRemove, Remove: &rrdb.RemoveRequest{Key: raw}},
			hashKey: "user-1", weight: 1, ok: true,
		},
		{
			name:    "incr",
			req:     rrdb.WriteRequest{Op: rrdb.OperationIncr, Incr: &rrdb.IncrRequest{Key: raw, Increment: 2}},
			hashKey: "user-1", weight: 1, ok: true,
		},
		{
			name: "multi-put",
			req: rrdb.WriteRequest{Op: rrdb.OperationMultiPut, MultiPut: &rrdb.MultiPutRequest{
				HashKey: []byte("user-2"),
				Kvs:     []rrdb.KeyValue{{SortKey: []byte("a")}, {SortKey: []byte("b")}, {SortKey: []byte("c")}},
			}},
			hashKey: "user-2", weight: 3, ok: true,
		},
		{
			name: "multi-remove without sort keys",
			req: rrdb.WriteRequest{Op: rrdb.OperationMultiRemove, MultiRemove: &rrdb.MultiRemoveRequest{
				HashKey: []byte("user-3"),
			}},
			hashKey: "user-3", weight: 1, ok: true,
		},
		{
			name: "check-and-set",
			req: rrdb.WriteRequest{Op: rrdb.OperationCheckAndSet, CheckAndSet: &rrdb.CheckAndSetRequest{
				HashKey: []byte("user-4"),
			}},
			hashKey: "user-4", weight: 1, ok: true,
		},
		{
			name: "check-and-mutate",
			req: rrdb.WriteRequest{Op: rrdb.OperationCheckAndMutate, CheckAndMutate: &rrdb.CheckAndMutateRequest{
				HashKey:   []byte("user-5"),
				Mutations: []rrdb.Mutation{{SortKey: []byte("a")}, {Remove: true, SortKey: []byte("b")}},
			}},
			hashKey: "user-5", weight: 2, ok: true,
		},
		{
			name: "raw key too short",
			req:  rrdb.WriteRequest{Op: rrdb.OperationPut, Put: &rrdb.PutRequest{Key: []byte{1}}},
		},
		{
			name: "raw key length overflows",
			req:  rrdb.WriteRequest{Op: rrdb.OperationPut, Put: &rrdb.PutRequest{Key: []byte{0, 9, 'a'}}},
		},
		{
			name: "empty hash key",
			req: rrdb.WriteRequest{Op: rrdb.OperationPut, Put: &rrdb.PutRequest{
				Key: keys.MustEncode(nil, []byte("sort")),
			}},
		},
		{
			name: "missing body",
			req:  rrdb.WriteRequest{Op: rrdb.OperationMultiPut},
		},
		{
			name: "read operation",
			req:  rrdb.WriteRequest{Op: rrdb.OperationGet},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashKey, weight, ok := WriteKey(tt.req)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.hashKey, string(hashKey))
				assert.Equal(t, tt.weight, weight)
			}
		})
	}
}

func TestReadKey(t *testing.T) {
	raw := keys.MustEncode([]byte("user-1"), []byte("name"))

	hashKey, ok := ReadKey(rrdb.ReadRequest{Op: rrdb.OperationGet, Key: raw})
	assert.True(t, ok)
	assert.Equal(t, "user-1", string(hashKey))

	hashKey, ok = ReadKey(rrdb.ReadRequest{Op: rrdb.OperationMultiGet, HashKey: []byte("user-2")})
	assert.True(t, ok)
	assert.Equal(t, "user-2", string(hashKey))

	hashKey, ok = ReadKey(rrdb.ReadRequest{Op: rrdb.OperationSortKeyCount, HashKey: []byte("user-3")})
	assert.True(t, ok)
	assert.Equal(t, "user-3", string(hashKey))

	_, ok = ReadKey(rrdb.ReadRequest{Op: rrdb.OperationTTL, Key: []byte{0}})
	assert.False(t, ok)

	_, ok = ReadKey(rrdb.ReadRequest{Op: rrdb.OperationMultiGet})
	assert.False(t, ok)

	_, ok = ReadKey(rrdb.ReadRequest{Op: rrdb.OperationPut, Key: raw})
	assert.False(t, ok)
}
